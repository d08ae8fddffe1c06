package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"

	"gitlab.com/codeprep.net/internal/adapter/catalog"
	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/adapter/judge0"
	"gitlab.com/codeprep.net/internal/adapter/llm"
	"gitlab.com/codeprep.net/internal/adapter/metrics"
	"gitlab.com/codeprep.net/internal/adapter/postgres/schema"
	"gitlab.com/codeprep.net/internal/adapter/postgres/sessionrepository"
	"gitlab.com/codeprep.net/internal/adapter/postgres/userrepository"
	"gitlab.com/codeprep.net/internal/adapter/rabbitmq/eventpublisher"
	"gitlab.com/codeprep.net/internal/adapter/redis/draftstore"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	auth2 "gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/core/services/evaluation"
	"gitlab.com/codeprep.net/internal/core/services/execution"
	"gitlab.com/codeprep.net/internal/core/services/interview"
	"gitlab.com/codeprep.net/internal/core/services/problem"
	logger2 "gitlab.com/codeprep.net/internal/global/logger"
	http2 "gitlab.com/codeprep.net/internal/http"
	"gitlab.com/codeprep.net/internal/schedulerengine"
)

func main() {
	env := pflag.String("env", "local", "name of the <env>.env file to load")
	problemsFile := pflag.String("problems", "", "problem catalog file, overrides PROBLEMS_FILE")
	migrate := pflag.Bool("migrate", true, "create database tables on startup")
	pflag.Parse()

	InitReader(*env)
	sysCfg := config.NewSystemConfig()
	if *problemsFile != "" {
		sysCfg.ProblemsFile = *problemsFile
	}

	logger2.SetLevel(sysCfg.LogLevel)
	logger := logger2.Logger
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting interview practice service", "port", sysCfg.HttpPort)
	if sysCfg.JwtConfig.Secret == "" {
		log.Fatalf("JWT_SECRET must be set")
	}

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, sysCfg.PostgresConfig)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()
	if *migrate {
		if err := schema.EnsureTablesExist(ctx, db, sysCfg.PostgresConfig.Schema, logger); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	problemCatalog, err := catalog.LoadFile(sysCfg.ProblemsFile)
	if err != nil {
		log.Fatalf("Failed to load problems: %v", err)
	}

	recorder := metrics.NewRecorder()

	// SECONDARY PORTS
	userPort := userrepository.New(db, logger, sysCfg.PostgresConfig.Schema)
	sessionRepo := sessionrepository.NewSessionRepository(db, sysCfg.PostgresConfig.Schema, logger)
	draftRepo := draftstore.NewDraftRepository(redisClient, sysCfg.RedisConfig.DraftTTL, logger)
	judgeClient := judge0.NewClient(sysCfg.JudgeConfig, logger.With("component", "judge0"))
	if !judgeClient.Configured() {
		logger.Warn("JUDGE_API_KEY is not set, code execution is disabled")
	}
	var completer secondary.ChatCompleter
	if llmClient := llm.NewClient(sysCfg.LLMConfig, logger.With("component", "llm")); llmClient.Configured() {
		completer = llmClient
	} else {
		logger.Warn("LLM_API_KEY is not set, interviewer chat is disabled and evaluations use default scores")
	}
	events, closeEvents := setupEvents(sysCfg.EventsConfig, logger.With("component", "events"))
	defer closeEvents()

	//primary ports
	jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)

	//services
	problemSvc := problem.NewProblemService(problemCatalog)
	poller := execution.NewPoller(judgeClient, sysCfg.JudgeConfig, logger, recorder)
	executionSvc := execution.NewExecutionService(poller, sysCfg.JudgeConfig, logger, recorder)
	evaluationSvc := evaluation.NewEvaluationService(completer, logger, recorder)
	interviewSvc := interview.NewInterviewService(interview.Dependencies{
		Sessions:   sessionRepo,
		Drafts:     draftRepo,
		Problems:   problemSvc,
		Execution:  executionSvc,
		Evaluation: evaluationSvc,
		LLM:        completer,
		Events:     events,
		Logger:     logger,
	})
	ggAuth := auth2.NewGoogleAuthService(userPort, jwtProvider, sysCfg.GGAuthConfig)
	localAuth := auth2.NewLocalAuthService(userPort, jwtProvider)
	serviceProvider := http2.NewServiceProvider(
		interviewSvc,
		problemSvc,
		executionSvc,
		evaluationSvc,
		ggAuth,
		localAuth,
		jwtProvider,
		sysCfg.GGAuthConfig,
	)

	//server
	httpServer := http2.NewServer(sysCfg.HttpPort, "codeprep", *serviceProvider, recorder, map[string]http2.HealthCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}, logger)
	if err := httpServer.Init(); err != nil {
		log.Fatalf("Failed to initialise http server: %v", err)
	}
	serverErr := make(chan error, 1)
	httpServer.Start(ctx, serverErr)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	schedulerSvc := schedulerengine.NewSchedulerEngine(sysCfg.DraftFlushInterval, interviewSvc, logger)
	if !sysCfg.DebugMode {
		schedulerSvc.StartDraftFlushEngine(schedulerCtx)
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error("Http server stopped unexpectedly", "error", err)
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	// drafts saved by in-flight requests are flushed by the final pass
	stopScheduler()
	schedulerSvc.Wait()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// setupEvents connects to RabbitMQ when configured. Without a broker, events
// are only logged.
func setupEvents(cfg *config.EventsConfig, logger primary.Logger) (secondary.EventPublisher, func()) {
	noop := eventpublisher.Noop{Logger: logger}
	if cfg.RabbitMQURL == "" {
		return noop, func() {}
	}
	publisher, err := eventpublisher.NewPublisher(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, events will only be logged", "error", err)
		return noop, func() {}
	}
	return publisher, func() { _ = publisher.Close() }
}

// InitReader loads <env>.env. A missing file is tolerated so the service can
// run from the process environment alone.
func InitReader(environment string) {
	err := godotenv.Load(environment + ".env")
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("No %s.env file found, using process environment", environment)
	default:
		log.Fatalf("Error loading %s.env file: %v", environment, err)
	}
}
