package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/handlers/response"
	"gitlab.com/codeprep.net/internal/static/errs"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad", errs.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: cobol", errs.ErrUnsupportedLanguage), http.StatusBadRequest},
		{errs.InvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("session x: %w", errs.ErrNotFound), http.StatusNotFound},
		{errs.ErrSessionCompleted, http.StatusConflict},
		{errs.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{errs.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("run: %w", &errs.SubmissionError{StatusCode: 422, Message: "bad"}), http.StatusBadGateway},
		{errs.ErrExecutionTimeout, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.code {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.code)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func TestWriteServiceErrorHidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteServiceError(rec, nopLogger{}, "Failed to save", errors.New("pq: connection refused"))

	var body response.ErrorMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Message != "Failed to save" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestJWTMiddleware(t *testing.T) {
	t.Parallel()

	jwtService := crypto.NewJWTService(&config.JwtConfig{Secret: "test-secret"})
	userID := uuid.New()
	token, err := jwtService.GenerateTokenHMAC(context.Background(), jwt.SigningMethodHS256.Name, map[string]interface{}{
		"sub":      userID.String(),
		"username": "ada",
	})
	if err != nil {
		t.Fatalf("GenerateTokenHMAC returned error: %v", err)
	}

	var seen uuid.UUID
	handler := New(jwtService).JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
	}
	if seen != userID {
		t.Fatalf("expected user id %s in context, got %s", userID, seen)
	}
}
