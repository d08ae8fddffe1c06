package execution

import (
	"context"
	"sync"
	"time"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type stubJudge struct {
	mu       sync.Mutex
	createFn func(ctx context.Context, req domain.ExecutionRequest) (domain.JobToken, error)
	getFn    func(token domain.JobToken, attempt int) (*domain.ExecutionResult, error)
	requests []domain.ExecutionRequest
	gets     map[domain.JobToken]int
}

func (s *stubJudge) CreateSubmission(ctx context.Context, req domain.ExecutionRequest) (domain.JobToken, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	n := len(s.requests)
	s.mu.Unlock()
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return domain.JobToken("token-" + string(rune('a'+n-1))), nil
}

func (s *stubJudge) GetSubmission(ctx context.Context, token domain.JobToken) (*domain.ExecutionResult, error) {
	s.mu.Lock()
	if s.gets == nil {
		s.gets = make(map[domain.JobToken]int)
	}
	s.gets[token]++
	attempt := s.gets[token]
	s.mu.Unlock()
	return s.getFn(token, attempt)
}

func (s *stubJudge) pollCount(token domain.JobToken) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[token]
}

func fastConfig(attempts int) *config.JudgeConfig {
	return &config.JudgeConfig{
		PollInterval:    time.Millisecond,
		MaxPollAttempts: attempts,
		MaxParallel:     1,
	}
}

func completed(stdout string) *domain.ExecutionResult {
	return &domain.ExecutionResult{Status: domain.ExecutionAccepted, Stdout: stdout}
}

func processing() *domain.ExecutionResult {
	return &domain.ExecutionResult{Status: domain.ExecutionProcessing}
}
