package config

import "time"

type JwtConfig struct {
	Secret   string
	TokenTTL time.Duration
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret:   getEnv("JWT_SECRET", ""),
		TokenTTL: getDurationEnv("JWT_TTL_MINUTES", time.Minute, 12*time.Hour),
	}
}
