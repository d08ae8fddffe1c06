package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

const (
	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 30
)

// Poller submits programs to the judge and waits for a terminal status.
// It keeps no state between calls.
type Poller struct {
	judge       secondary.JudgeClient
	interval    time.Duration
	maxAttempts int
	logger      primary.Logger
	metrics     secondary.MetricsRecorder
}

// NewPoller creates a poller. A nil judge makes every Submit fail with
// errs.ErrServiceUnavailable.
func NewPoller(judge secondary.JudgeClient, cfg *config.JudgeConfig, logger primary.Logger, metrics secondary.MetricsRecorder) *Poller {
	p := &Poller{
		judge:       judge,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxPollAttempts,
		logger:      logger,
		metrics:     metrics,
	}
	if cfg != nil {
		if cfg.PollInterval > 0 {
			p.interval = cfg.PollInterval
		}
		if cfg.MaxPollAttempts > 0 {
			p.maxAttempts = cfg.MaxPollAttempts
		}
	}
	if p.metrics == nil {
		p.metrics = secondary.NopMetrics{}
	}
	return p
}

// Submit queues the request on the judge.
func (p *Poller) Submit(ctx context.Context, req domain.ExecutionRequest) (domain.JobToken, error) {
	if p.judge == nil {
		return "", errs.ErrServiceUnavailable
	}

	token, err := p.judge.CreateSubmission(ctx, req)
	if err != nil {
		p.metrics.ObserveSubmission("error")
		var subErr *errs.SubmissionError
		if errors.Is(err, errs.ErrServiceUnavailable) || errors.As(err, &subErr) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &errs.SubmissionError{Message: err.Error()}
	}

	p.metrics.ObserveSubmission("accepted")
	p.logger.Debug("Submission created", "token", token, "languageId", req.LanguageID)
	return token, nil
}

// AwaitResult polls the judge every interval until the submission leaves the
// queued/processing states. The first failed status query ends polling with a
// *errs.PollError; running out of attempts yields errs.ErrExecutionTimeout.
func (p *Poller) AwaitResult(ctx context.Context, token domain.JobToken) (*domain.ExecutionResult, error) {
	if p.judge == nil {
		return nil, errs.ErrServiceUnavailable
	}

	start := time.Now()
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := sleep(ctx, p.interval); err != nil {
			return nil, err
		}

		result, err := p.judge.GetSubmission(ctx, token)
		if err != nil {
			p.logger.Error("Failed to check submission status", "token", token, "attempt", attempt, "error", err)
			var pollErr *errs.PollError
			if errors.As(err, &pollErr) {
				return nil, err
			}
			return nil, &errs.PollError{Token: string(token), Err: err}
		}

		if !result.Status.Pending() {
			p.metrics.ObservePolling(result.Status, attempt, time.Since(start))
			p.logger.Debug("Submission finished", "token", token, "status", result.Status, "attempts", attempt)
			return result, nil
		}
	}

	p.metrics.ObservePolling(domain.ExecutionProcessing, p.maxAttempts, time.Since(start))
	p.logger.Warn("Submission did not finish in time", "token", token, "attempts", p.maxAttempts)
	return nil, fmt.Errorf("%w: no result after %d status checks", errs.ErrExecutionTimeout, p.maxAttempts)
}

// Run submits req and waits for its result.
func (p *Poller) Run(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	token, err := p.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.AwaitResult(ctx, token)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
