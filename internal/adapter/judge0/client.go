package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ secondary.JudgeClient = (*Client)(nil)

const (
	resultFields    = "stdout,stderr,status,compile_output,message"
	maxErrorBodyLen = 1024
)

type submissionRequest struct {
	SourceCode   string  `json:"source_code"`
	LanguageID   int     `json:"language_id"`
	Stdin        string  `json:"stdin"`
	CPUTimeLimit float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimit  int     `json:"memory_limit,omitempty"`
}

type submissionResponse struct {
	Token string `json:"token"`
}

type status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type submissionDetails struct {
	Status        status  `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
}

// Client is a Judge0 REST client using RapidAPI-style authentication.
type Client struct {
	baseURL      string
	apiKey       string
	apiHost      string
	cpuTimeLimit float64
	memoryLimit  int
	httpClient   *http.Client
	logger       primary.Logger
}

// NewClient creates a judge client. Without a base URL or API key every
// submission fails with errs.ErrServiceUnavailable.
func NewClient(cfg *config.JudgeConfig, logger primary.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		apiHost:      cfg.APIHost,
		cpuTimeLimit: cfg.CPUTimeLimitSec,
		memoryLimit:  cfg.MemoryLimitKB,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:       logger,
	}
}

// Configured reports whether the client has credentials to reach the judge.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) CreateSubmission(ctx context.Context, req domain.ExecutionRequest) (domain.JobToken, error) {
	if !c.Configured() {
		return "", errs.ErrServiceUnavailable
	}

	body, err := json.Marshal(submissionRequest{
		SourceCode:   req.SourceCode,
		LanguageID:   req.LanguageID,
		Stdin:        req.Stdin,
		CPUTimeLimit: c.cpuTimeLimit,
		MemoryLimit:  c.memoryLimit,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}

	endpoint := c.baseURL + "/submissions?base64_encoded=false&wait=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &errs.SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &errs.SubmissionError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}

	var created submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &errs.SubmissionError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	if created.Token == "" {
		return "", &errs.SubmissionError{StatusCode: resp.StatusCode, Message: "response did not contain a token"}
	}

	c.logger.Debug("Submission created", "token", created.Token, "languageId", req.LanguageID)
	return domain.JobToken(created.Token), nil
}

func (c *Client) GetSubmission(ctx context.Context, token domain.JobToken) (*domain.ExecutionResult, error) {
	endpoint := fmt.Sprintf("%s/submissions/%s?base64_encoded=false&fields=%s",
		c.baseURL, url.PathEscape(string(token)), url.QueryEscape(resultFields))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &errs.PollError{Token: string(token), Err: err}
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &errs.PollError{Token: string(token), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.PollError{
			Token:      string(token),
			StatusCode: resp.StatusCode,
			Err:        errors.New(readErrorBody(resp.Body)),
		}
	}

	var details submissionDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, &errs.PollError{Token: string(token), StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
	}

	return &domain.ExecutionResult{
		Status:        domain.StatusFromJudgeID(details.Status.ID),
		Description:   details.Status.Description,
		Stdout:        deref(details.Stdout),
		Stderr:        firstNonNil(details.Stderr, details.Message),
		CompileOutput: deref(details.CompileOutput),
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyLen))
	if err != nil {
		return err.Error()
	}
	return strings.TrimSpace(string(data))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonNil(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
