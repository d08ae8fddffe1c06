package config

import "time"

type RedisConfig struct {
	DB       int
	Url      string
	Password string
	DraftTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:       getIntEnv("REDIS_DB", 0),
		Url:      getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DraftTTL: getDurationEnv("DRAFT_TTL_HOURS", time.Hour, 24*time.Hour),
	}
}
