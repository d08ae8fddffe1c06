package execution

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

func mustValue(t *testing.T, raw string) domain.Value {
	t.Helper()
	v, err := domain.ParseValue([]byte(raw))
	if err != nil {
		t.Fatalf("ParseValue(%q) returned error: %v", raw, err)
	}
	return v
}

func newService(judge *stubJudge, parallel int) *ExecutionService {
	cfg := fastConfig(30)
	cfg.MaxParallel = parallel
	return NewExecutionService(NewPoller(judge, cfg, nopLogger{}, nil), cfg, nopLogger{}, nil)
}

func TestRunTestCasePassesOnEqualOutput(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		getFn: func(domain.JobToken, int) (*domain.ExecutionResult, error) {
			return completed("[0,1]\n"), nil
		},
	}
	svc := newService(judge, 1)

	outcome, err := svc.RunTestCase(context.Background(), "print([0,1])", 71, `{"nums":[2,7],"target":9}`, mustValue(t, "[0,1]"))
	if err != nil {
		t.Fatalf("RunTestCase returned error: %v", err)
	}
	if !outcome.Pass {
		t.Fatalf("expected pass, got %+v", outcome)
	}
	if outcome.Input != `{"nums":[2,7],"target":9}` {
		t.Fatalf("unexpected input %q", outcome.Input)
	}
	if len(judge.requests) != 1 || judge.requests[0].LanguageID != 71 {
		t.Fatalf("unexpected requests: %+v", judge.requests)
	}
}

func TestRunTestCaseWrongAnswerStatusStillCompares(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		getFn: func(domain.JobToken, int) (*domain.ExecutionResult, error) {
			return &domain.ExecutionResult{Status: domain.ExecutionWrongAnswer, Stdout: `{"b":2,"a":1}`}, nil
		},
	}
	svc := newService(judge, 1)

	outcome, err := svc.RunTestCase(context.Background(), "src", 71, "", mustValue(t, `{"a":1,"b":2}`))
	if err != nil {
		t.Fatalf("RunTestCase returned error: %v", err)
	}
	if !outcome.Pass {
		t.Fatalf("expected pass for key-order-insensitive mapping, got %+v", outcome)
	}
}

func TestRunTestCaseMalformedOutputFails(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		getFn: func(domain.JobToken, int) (*domain.ExecutionResult, error) {
			return completed("not json"), nil
		},
	}
	svc := newService(judge, 1)

	outcome, err := svc.RunTestCase(context.Background(), "src", 71, "", mustValue(t, "1"))
	if err != nil {
		t.Fatalf("malformed output must not be an error, got %v", err)
	}
	if outcome.Pass {
		t.Fatalf("expected failure")
	}
	if !strings.HasPrefix(outcome.Output, "Malformed output") {
		t.Fatalf("expected malformed output message, got %q", outcome.Output)
	}
}

func TestGradeResultFailureStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		result *domain.ExecutionResult
		prefix string
	}{
		{&domain.ExecutionResult{Status: domain.ExecutionCompilationError, CompileOutput: "main.py:1 SyntaxError"}, "Compilation error: main.py:1 SyntaxError"},
		{&domain.ExecutionResult{Status: domain.ExecutionRuntimeError, Stderr: "IndexError"}, "Runtime error: IndexError"},
		{&domain.ExecutionResult{Status: domain.ExecutionTimeLimitExceeded}, "Time limit exceeded"},
		{&domain.ExecutionResult{Status: domain.ExecutionUnknown, Description: "Internal Error"}, "Execution failed: Internal Error"},
	}
	for _, tc := range cases {
		outcome := GradeResult(tc.result, "in", domain.Number(1))
		if outcome.Pass {
			t.Fatalf("%s: expected failure", tc.result.Status)
		}
		if outcome.Output != tc.prefix {
			t.Fatalf("%s: expected output %q, got %q", tc.result.Status, tc.prefix, outcome.Output)
		}
	}
}

func TestRunTestSuiteConvertsTimeoutToFailedOutcome(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		getFn: func(token domain.JobToken, _ int) (*domain.ExecutionResult, error) {
			if token == "token-a" {
				return processing(), nil
			}
			return completed("2"), nil
		},
	}
	svc := newService(judge, 1)

	cases := []domain.TestCase{
		{Input: domain.Number(1), Expected: domain.Number(1)},
		{Input: domain.Number(2), Expected: domain.Number(2), Hidden: true},
	}
	outcomes, err := svc.RunTestSuite(context.Background(), "src", domain.LanguagePython, cases)
	if err != nil {
		t.Fatalf("RunTestSuite returned error: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Pass || outcomes[0].Output != "Execution timeout" {
		t.Fatalf("expected timeout outcome, got %+v", outcomes[0])
	}
	if !outcomes[1].Pass || !outcomes[1].Hidden {
		t.Fatalf("expected hidden passing outcome, got %+v", outcomes[1])
	}
}

func TestRunTestSuiteAbortsWhenServiceUnavailable(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		createFn: func(context.Context, domain.ExecutionRequest) (domain.JobToken, error) {
			return "", errs.ErrServiceUnavailable
		},
	}
	svc := newService(judge, 1)

	_, err := svc.RunTestSuite(context.Background(), "src", domain.LanguagePython, []domain.TestCase{{}, {}})
	if !errors.Is(err, errs.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if len(judge.requests) != 1 {
		t.Fatalf("expected suite to stop after first submission, got %d", len(judge.requests))
	}
}

func TestRunTestSuiteRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()

	svc := newService(&stubJudge{}, 1)
	_, err := svc.RunTestSuite(context.Background(), "src", domain.Language("cobol"), nil)
	if !errors.Is(err, errs.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestRunTestSuiteParallelPreservesOrder(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight int32
	judge := &stubJudge{}
	judge.createFn = func(_ context.Context, req domain.ExecutionRequest) (domain.JobToken, error) {
		return domain.JobToken(req.Stdin), nil
	}
	judge.getFn = func(token domain.JobToken, _ int) (*domain.ExecutionResult, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		// later test cases finish first
		if token == "1" {
			time.Sleep(20 * time.Millisecond)
		}
		atomic.AddInt32(&inFlight, -1)
		return completed(string(token)), nil
	}
	svc := newService(judge, 2)

	var cases []domain.TestCase
	for i := 1; i <= 5; i++ {
		cases = append(cases, domain.TestCase{Input: domain.Number(float64(i)), Expected: domain.Number(float64(i))})
	}

	outcomes, err := svc.RunTestSuite(context.Background(), "src", domain.LanguageGo, cases)
	if err != nil {
		t.Fatalf("RunTestSuite returned error: %v", err)
	}
	for i, o := range outcomes {
		if !o.Pass {
			t.Fatalf("outcome %d failed: %+v", i, o)
		}
		if want := cases[i].Stdin(); o.Input != want {
			t.Fatalf("outcome %d has input %q, want %q", i, o.Input, want)
		}
	}
	if got := atomic.LoadInt32(&maxInFlight); got > 2 {
		t.Fatalf("expected at most 2 concurrent polls, got %d", got)
	}
}

func TestRunTestSuiteParallelReturnsContextError(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{
		getFn: func(domain.JobToken, int) (*domain.ExecutionResult, error) {
			return completed("1"), nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []domain.TestCase{
		{Input: domain.Number(1), Expected: domain.Number(1)},
		{Input: domain.Number(1), Expected: domain.Number(1)},
	}
	for _, parallel := range []int{1, 4} {
		outcomes, err := newService(judge, parallel).RunTestSuite(ctx, "src", domain.LanguagePython, cases)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("parallel=%d: expected context.Canceled, got %v", parallel, err)
		}
		if outcomes != nil {
			t.Fatalf("parallel=%d: expected no outcomes, got %+v", parallel, outcomes)
		}
	}
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	// one ASCII byte shifts every 3-byte rune across the cut
	s := "x" + strings.Repeat("界", maxOutputPreview)
	got := preview(s)
	if !utf8.ValidString(got) {
		t.Fatalf("preview produced invalid UTF-8: %q", got[len(got)-8:])
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated preview to end with ..., got %q", got[len(got)-8:])
	}
	if len(got)-len("...") > maxOutputPreview {
		t.Fatalf("preview is %d bytes, want at most %d", len(got)-len("..."), maxOutputPreview)
	}
	if short := "héllo"; preview(short) != short {
		t.Fatalf("expected short text unchanged, got %q", preview(short))
	}
}
