package errs

import (
	"errors"
	"fmt"
)

var (
	ErrServiceUnavailable  = errors.New("code execution service is not configured")
	ErrExecutionTimeout    = errors.New("execution timeout")
	ErrLLMUnavailable      = errors.New("language model service is not configured")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNotFound            = errors.New("not found")
	ErrSessionCompleted    = errors.New("interview session already completed")
	ErrInvalidInput        = errors.New("invalid input")
)

// SubmissionError is returned when the judge rejects a submission.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("submission failed: %s", e.Message)
	}
	return fmt.Sprintf("submission failed with status %d: %s", e.StatusCode, e.Message)
}

// PollError is returned when a status query against the judge fails.
// Polling stops at the first PollError.
type PollError struct {
	Token      string
	StatusCode int
	Err        error
}

func (e *PollError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status check for %s failed with status %d: %v", e.Token, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("status check for %s failed: %v", e.Token, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}
