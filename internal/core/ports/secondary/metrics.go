package secondary

import (
	"time"

	"gitlab.com/codeprep.net/internal/domain"
)

// MetricsRecorder receives execution and evaluation measurements.
type MetricsRecorder interface {
	ObserveSubmission(outcome string)
	ObservePolling(status domain.ExecutionStatus, attempts int, elapsed time.Duration)
	ObserveTestCase(pass bool)
	ObserveExtraction(tier string, grade domain.Grade)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveSubmission(string) {}

func (NopMetrics) ObservePolling(domain.ExecutionStatus, int, time.Duration) {}

func (NopMetrics) ObserveTestCase(bool) {}

func (NopMetrics) ObserveExtraction(string, domain.Grade) {}
