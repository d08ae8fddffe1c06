package config

import "time"

type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration
}

func NewLLMConfig() *LLMConfig {
	return &LLMConfig{
		BaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		APIKey:         getEnv("LLM_API_KEY", ""),
		Model:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		Temperature:    getFloatEnv("LLM_TEMPERATURE", 0.7),
		MaxTokens:      getIntEnv("LLM_MAX_TOKENS", 1000),
		RequestTimeout: getDurationEnv("LLM_REQUEST_TIMEOUT_SEC", time.Second, 60*time.Second),
	}
}
