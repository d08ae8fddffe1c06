package config

import "time"

type JudgeConfig struct {
	BaseURL         string
	APIKey          string
	APIHost         string
	PollInterval    time.Duration
	MaxPollAttempts int
	MaxParallel     int
	CPUTimeLimitSec float64
	MemoryLimitKB   int
	RequestTimeout  time.Duration
}

func NewJudgeConfig() *JudgeConfig {
	cfg := &JudgeConfig{
		BaseURL:         getEnv("JUDGE_BASE_URL", "https://judge0-ce.p.rapidapi.com"),
		APIKey:          getEnv("JUDGE_API_KEY", ""),
		APIHost:         getEnv("JUDGE_API_HOST", "judge0-ce.p.rapidapi.com"),
		PollInterval:    getDurationEnv("JUDGE_POLL_INTERVAL_MS", time.Millisecond, time.Second),
		MaxPollAttempts: getIntEnv("JUDGE_MAX_POLL_ATTEMPTS", 30),
		MaxParallel:     getIntEnv("JUDGE_MAX_PARALLEL", 1),
		CPUTimeLimitSec: getFloatEnv("JUDGE_CPU_TIME_LIMIT", 5),
		MemoryLimitKB:   getIntEnv("JUDGE_MEMORY_LIMIT_KB", 128000),
		RequestTimeout:  getDurationEnv("JUDGE_REQUEST_TIMEOUT_SEC", time.Second, 10*time.Second),
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 30
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return cfg
}
