package config

import (
	"os"
	"time"
)

type AppConfig struct {
	DebugMode          bool
	HttpPort           int
	LogLevel           string
	ProblemsFile       string
	DraftFlushInterval time.Duration
	JudgeConfig        *JudgeConfig
	LLMConfig          *LLMConfig
	RedisConfig        *RedisConfig
	PostgresConfig     *PostgresConfig
	JwtConfig          *JwtConfig
	GGAuthConfig       *GGAuthConfig
	EventsConfig       *EventsConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:          os.Getenv("DEBUG_MODE") == "true",
		HttpPort:           getIntEnv("HTTP_PORT", 8082),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ProblemsFile:       getEnv("PROBLEMS_FILE", "problems.yaml"),
		DraftFlushInterval: getDurationEnv("DRAFT_FLUSH_INTERVAL_SEC", time.Second, 30*time.Second),
		JudgeConfig:        NewJudgeConfig(),
		LLMConfig:          NewLLMConfig(),
		RedisConfig:        NewRedisConfig(),
		PostgresConfig:     NewPostgresConfig(),
		JwtConfig:          NewJwtConfig(),
		GGAuthConfig:       NewGGAuthConfig(),
		EventsConfig:       NewEventsConfig(),
	}
}
