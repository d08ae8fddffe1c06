package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// JudgeClient talks to the remote sandboxed execution service.
type JudgeClient interface {
	// CreateSubmission queues a program run and returns its token.
	// Returns errs.ErrServiceUnavailable when the client is not configured
	// and *errs.SubmissionError when the judge rejects the request.
	CreateSubmission(ctx context.Context, req domain.ExecutionRequest) (domain.JobToken, error)

	// GetSubmission fetches the current state of a submission.
	// Returns *errs.PollError when the status query fails.
	GetSubmission(ctx context.Context, token domain.JobToken) (*domain.ExecutionResult, error)
}
