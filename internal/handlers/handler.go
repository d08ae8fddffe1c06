package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/handlers/response"
	"gitlab.com/codeprep.net/internal/static/errs"
)

const maxRequestBody = 1 << 20

var validate = validator.New()

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func ResponseError(w http.ResponseWriter, message string, code int) {
	response.WriteError(w, response.ErrorMessage{
		Message:    message,
		StatusCode: code,
	})
}

// DecodeJSON reads a JSON body into dst and validates its `validate` tags.
// Errors are already wrapped in errs.ErrInvalidInput.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", errs.ErrInvalidInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errs.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	return nil
}

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	var subErr *errs.SubmissionError
	switch {
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, errs.InvalidCredentials), errors.Is(err, errs.DomainNotAllowed):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrSessionCompleted), errors.Is(err, errs.UserNameTaken):
		return http.StatusConflict
	case errors.Is(err, errs.ErrServiceUnavailable), errors.Is(err, errs.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrExecutionTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs server side failures and writes the mapped status.
// Internal error details are not exposed to the client.
func WriteServiceError(w http.ResponseWriter, logger primary.Logger, msg string, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
	}
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = msg
	}
	ResponseError(w, message, code)
}
