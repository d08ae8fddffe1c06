package execute

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type stubExecution struct {
	err        error
	languageID int
	expected   domain.Value
}

func (s *stubExecution) RunTestCase(_ context.Context, _ string, languageID int, stdin string, expected domain.Value) (*domain.TestCaseOutcome, error) {
	s.languageID, s.expected = languageID, expected
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TestCaseOutcome{Pass: true, Input: stdin, Expected: expected, Actual: expected, Output: "Passed"}, nil
}

func (s *stubExecution) RunTestSuite(context.Context, string, domain.Language, []domain.TestCase) ([]domain.TestCaseOutcome, error) {
	return nil, nil
}

func execute(svc *stubExecution, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	NewExecuteHandler(svc, nopLogger{}).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExecuteResolvesLanguageName(t *testing.T) {
	t.Parallel()

	svc := &stubExecution{}
	rec := execute(svc, `{"sourceCode":"print(1)","language":"python","stdin":"","expected":{"a":[1,2]}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.languageID != 71 {
		t.Fatalf("expected python judge id 71, got %d", svc.languageID)
	}
	if !svc.expected.Equal(domain.Mapping(map[string]domain.Value{"a": domain.Sequence(domain.Number(1), domain.Number(2))})) {
		t.Fatalf("expected value not decoded: %s", svc.expected)
	}
}

func TestExecuteValidation(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"language":"python"}`,
		`{"sourceCode":"x","language":"cobol"}`,
		`{"sourceCode":"x"}`,
	} {
		if rec := execute(&stubExecution{}, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestExecuteMapsJudgeErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
	}{
		{errs.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{&errs.SubmissionError{StatusCode: 422, Message: "bad language"}, http.StatusBadGateway},
		{errs.ErrExecutionTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		rec := execute(&stubExecution{err: tc.err}, `{"sourceCode":"x","languageId":62}`)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}
