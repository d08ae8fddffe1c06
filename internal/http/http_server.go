package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/adapter/metrics"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	auth2 "gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/core/services/evaluation"
	"gitlab.com/codeprep.net/internal/core/services/execution"
	"gitlab.com/codeprep.net/internal/core/services/interview"
	"gitlab.com/codeprep.net/internal/core/services/problem"
	"gitlab.com/codeprep.net/internal/handlers"
	"gitlab.com/codeprep.net/internal/handlers/auth"
	"gitlab.com/codeprep.net/internal/handlers/evaluations"
	"gitlab.com/codeprep.net/internal/handlers/execute"
	"gitlab.com/codeprep.net/internal/handlers/problems"
	"gitlab.com/codeprep.net/internal/handlers/sessions"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type ServiceProvider struct {
	interviewService  interview.IInterviewService
	problemService    problem.IProblemService
	executionService  execution.IExecutionService
	evaluationService evaluation.IEvaluationService

	ggAuth     auth2.IAuthService
	localAuth  auth2.ILocalAuthService
	jwtService primary.JWTService
	ggAuthCfg  *config.GGAuthConfig
}

func NewServiceProvider(
	interviewService interview.IInterviewService,
	problemService problem.IProblemService,
	executionService execution.IExecutionService,
	evaluationService evaluation.IEvaluationService,
	ggAuth auth2.IAuthService,
	localAuth auth2.ILocalAuthService,
	jwtService primary.JWTService,
	ggAuthCfg *config.GGAuthConfig,
) *ServiceProvider {
	return &ServiceProvider{
		interviewService:  interviewService,
		problemService:    problemService,
		executionService:  executionService,
		evaluationService: evaluationService,
		ggAuth:            ggAuth,
		localAuth:         localAuth,
		jwtService:        jwtService,
		ggAuthCfg:         ggAuthCfg,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	metrics         *metrics.Recorder
	healthChecks    map[string]HealthCheck
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, recorder *metrics.Recorder, healthChecks map[string]HealthCheck, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		metrics:         recorder,
		healthChecks:    healthChecks,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider.jwtService == nil {
		return errors.New("jwt service is required")
	}
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/healthz", s.health).Methods("GET")

	auth.NewHandler(&auth.ServiceDependencies{
		GGAuthService:    s.ServiceProvider.ggAuth,
		LocalAuthService: s.ServiceProvider.localAuth,
	}, s.ServiceProvider.ggAuthCfg, s.logger).RegisterRoutes(r)

	api := r.NewRoute().Subrouter()
	api.Use(handlers.New(s.ServiceProvider.jwtService).JWTMiddleware)
	problems.NewProblemHandler(s.ServiceProvider.problemService, s.logger).RegisterRoutes(api)
	sessions.NewSessionHandler(s.ServiceProvider.interviewService, s.logger).RegisterRoutes(api)
	execute.NewExecuteHandler(s.ServiceProvider.executionService, s.logger).RegisterRoutes(api)
	evaluations.NewEvaluationHandler(s.ServiceProvider.evaluationService).RegisterRoutes(api)

	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, errCh chan<- error) {
	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	code := http.StatusOK
	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	handlers.ResponseWithJson(w, code, map[string]interface{}{
		"service":      s.ServiceName,
		"dependencies": status,
	})
}
