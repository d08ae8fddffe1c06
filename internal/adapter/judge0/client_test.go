package judge0

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newTestClient(baseURL string) *Client {
	return NewClient(&config.JudgeConfig{
		BaseURL:         baseURL,
		APIKey:          "key",
		APIHost:         "judge.test",
		CPUTimeLimitSec: 5,
		MemoryLimitKB:   128000,
		RequestTimeout:  time.Second,
	}, nopLogger{})
}

func TestCreateSubmission(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submissions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "false" || r.URL.Query().Get("base64_encoded") != "false" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-RapidAPI-Key") != "key" || r.Header.Get("X-RapidAPI-Host") != "judge.test" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		var body submissionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		if body.LanguageID != 71 || body.SourceCode != "print(1)" || body.Stdin != "[1]" || body.MemoryLimit != 128000 {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"abc-123"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).CreateSubmission(context.Background(), domain.ExecutionRequest{
		SourceCode: "print(1)",
		LanguageID: 71,
		Stdin:      "[1]",
	})
	if err != nil {
		t.Fatalf("CreateSubmission returned error: %v", err)
	}
	if token != "abc-123" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestCreateSubmissionRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"language_id":["language with id 999 doesn't exist"]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateSubmission(context.Background(), domain.ExecutionRequest{LanguageID: 999})
	var subErr *errs.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status code %d", subErr.StatusCode)
	}
}

func TestCreateSubmissionWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.JudgeConfig{BaseURL: "http://judge.invalid"}, nopLogger{})
	_, err := client.CreateSubmission(context.Background(), domain.ExecutionRequest{})
	if !errors.Is(err, errs.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestGetSubmission(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/abc-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") != resultFields {
			t.Errorf("unexpected fields %q", r.URL.Query().Get("fields"))
		}
		_, _ = w.Write([]byte(`{"stdout":"[0,1]\n","stderr":null,"compile_output":null,"message":null,"status":{"id":3,"description":"Accepted"}}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).GetSubmission(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("GetSubmission returned error: %v", err)
	}
	if result.Status != domain.ExecutionAccepted || result.Stdout != "[0,1]\n" || result.Description != "Accepted" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGetSubmissionRuntimeErrorUsesMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stdout":null,"stderr":null,"message":"Exited with error status 1","status":{"id":11,"description":"Runtime Error (NZEC)"}}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).GetSubmission(context.Background(), "t")
	if err != nil {
		t.Fatalf("GetSubmission returned error: %v", err)
	}
	if result.Status != domain.ExecutionRuntimeError || result.Stderr != "Exited with error status 1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGetSubmissionFailureIsPollError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetSubmission(context.Background(), "t")
	var pollErr *errs.PollError
	if !errors.As(err, &pollErr) {
		t.Fatalf("expected PollError, got %v", err)
	}
	if pollErr.StatusCode != http.StatusTooManyRequests || pollErr.Token != "t" {
		t.Fatalf("unexpected poll error: %+v", pollErr)
	}
}
