package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IExecutionService = (*ExecutionService)(nil)

const maxOutputPreview = 500

// ExecutionService grades programs using a Poller.
type ExecutionService struct {
	poller      *Poller
	maxParallel int
	logger      primary.Logger
	metrics     secondary.MetricsRecorder
}

// NewExecutionService creates a new execution service
func NewExecutionService(poller *Poller, cfg *config.JudgeConfig, logger primary.Logger, metrics secondary.MetricsRecorder) *ExecutionService {
	maxParallel := 1
	if cfg != nil && cfg.MaxParallel > 1 {
		maxParallel = cfg.MaxParallel
	}
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &ExecutionService{
		poller:      poller,
		maxParallel: maxParallel,
		logger:      logger,
		metrics:     metrics,
	}
}

// RunTestCase runs one program and compares its output with expected.
func (s *ExecutionService) RunTestCase(ctx context.Context, sourceCode string, languageID int, stdin string, expected domain.Value) (*domain.TestCaseOutcome, error) {
	result, err := s.poller.Run(ctx, domain.ExecutionRequest{
		SourceCode: sourceCode,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return nil, err
	}

	outcome := GradeResult(result, stdin, expected)
	s.metrics.ObserveTestCase(outcome.Pass)
	return &outcome, nil
}

// RunTestSuite runs test cases sequentially, or with up to maxParallel in
// flight. Outcomes keep the order of testCases.
func (s *ExecutionService) RunTestSuite(ctx context.Context, sourceCode string, language domain.Language, testCases []domain.TestCase) ([]domain.TestCaseOutcome, error) {
	languageID := language.JudgeID()
	if languageID == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedLanguage, language)
	}

	s.logger.Info("Running test suite", "language", language, "testCases", len(testCases), "parallel", s.maxParallel)

	outcomes := make([]domain.TestCaseOutcome, len(testCases))
	if s.maxParallel <= 1 || len(testCases) <= 1 {
		for i, tc := range testCases {
			outcome, err := s.runOne(ctx, sourceCode, languageID, tc)
			if err != nil {
				return nil, err
			}
			outcomes[i] = outcome
		}
		return outcomes, nil
	}

	workerSize := s.maxParallel
	if workerSize > len(testCases) {
		workerSize = len(testCases)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexCh := make(chan int, len(testCases))
	for i := range testCases {
		indexCh <- i
	}
	close(indexCh)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}
	wg.Add(workerSize)
	for w := 0; w < workerSize; w++ {
		go func() {
			defer wg.Done()
			for i := range indexCh {
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				outcome, err := s.runOne(ctx, sourceCode, languageID, testCases[i])
				if err != nil {
					fail(err)
					return
				}
				outcomes[i] = outcome
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return outcomes, nil
}

// runOne converts recoverable execution errors into failed outcomes.
func (s *ExecutionService) runOne(ctx context.Context, sourceCode string, languageID int, tc domain.TestCase) (domain.TestCaseOutcome, error) {
	stdin := tc.Stdin()
	outcome, err := s.RunTestCase(ctx, sourceCode, languageID, stdin, tc.Expected)
	if err == nil {
		outcome.Hidden = tc.Hidden
		return *outcome, nil
	}

	if errors.Is(err, errs.ErrServiceUnavailable) || ctx.Err() != nil {
		return domain.TestCaseOutcome{}, err
	}

	failed := domain.TestCaseOutcome{
		Pass:     false,
		Input:    stdin,
		Expected: tc.Expected,
		Hidden:   tc.Hidden,
	}

	var subErr *errs.SubmissionError
	var pollErr *errs.PollError
	switch {
	case errors.Is(err, errs.ErrExecutionTimeout):
		failed.Output = "Execution timeout"
	case errors.As(err, &subErr):
		failed.Output = fmt.Sprintf("Submission failed: %s", subErr.Message)
	case errors.As(err, &pollErr):
		failed.Output = "Failed to fetch execution result"
	default:
		failed.Output = fmt.Sprintf("Execution failed: %v", err)
	}

	s.logger.Warn("Test case could not be executed", "error", err)
	s.metrics.ObserveTestCase(false)
	return failed, nil
}

// GradeResult turns a terminal judge result into a test case outcome.
// Output that is not valid JSON fails the test case with the parse error.
func GradeResult(result *domain.ExecutionResult, stdin string, expected domain.Value) domain.TestCaseOutcome {
	outcome := domain.TestCaseOutcome{
		Input:    stdin,
		Expected: expected,
	}

	switch {
	case result.Status.Completed():
		stdout := strings.TrimSpace(result.Stdout)
		actual, err := domain.ParseValue([]byte(stdout))
		if err != nil {
			outcome.Output = fmt.Sprintf("Malformed output: %v (stdout: %q)", err, preview(stdout))
			return outcome
		}
		outcome.Actual = actual
		outcome.Pass = domain.StructurallyEqual(actual, expected)
		if outcome.Pass {
			outcome.Output = "Passed"
		} else {
			outcome.Output = fmt.Sprintf("Expected %s but got %s", expected, actual)
		}
	case result.Status == domain.ExecutionCompilationError:
		outcome.Output = "Compilation error: " + preview(firstNonEmpty(result.CompileOutput, result.Stderr, result.Description))
	case result.Status == domain.ExecutionTimeLimitExceeded:
		outcome.Output = "Time limit exceeded"
	case result.Status == domain.ExecutionRuntimeError:
		outcome.Output = "Runtime error: " + preview(firstNonEmpty(result.Stderr, result.Description))
	default:
		outcome.Output = "Execution failed: " + preview(firstNonEmpty(result.Stderr, result.CompileOutput, result.Description, string(result.Status)))
	}
	return outcome
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func preview(s string) string {
	if len(s) <= maxOutputPreview {
		return s
	}
	cut := maxOutputPreview
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
