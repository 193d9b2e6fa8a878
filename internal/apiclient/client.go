// Package apiclient talks to a codecraft server on behalf of the terminal
// client: saving runs, sharing snippets and reading the caller's profile.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/model"
)

// Client is an authenticated HTTP client for the /api routes.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the server at baseURL. A non-empty token is sent
// as a bearer token on every request; without one only public routes work.
func New(baseURL, token string, timeout time.Duration) *Client {
	httpClient := &http.Client{}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	httpClient.Timeout = timeout

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// APIError is a non-2xx response. It unwraps to the apperror sentinel that
// matches Code, so callers can use errors.Is(err, apperror.ErrEntitlement).
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error":
		return apperror.ErrValidation
	case "unauthorized":
		return apperror.ErrUnauthorized
	case "not_found":
		return apperror.ErrNotFound
	case "pro_required":
		return apperror.ErrEntitlement
	case "forbidden":
		return apperror.ErrForbidden
	}
	return nil
}

// Me returns the caller's user record.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveExecution records a finished run in the caller's history. Exactly
// one of output and errMsg should be non-nil.
func (c *Client) SaveExecution(ctx context.Context, language, code string, output, errMsg *string) (*model.ExecutionRecord, error) {
	body := map[string]any{"language": language, "code": code, "output": output, "error": errMsg}
	var rec model.ExecutionRecord
	if err := c.do(ctx, http.MethodPost, "/api/executions", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Executions lists the caller's saved runs, newest first.
func (c *Client) Executions(ctx context.Context) ([]model.ExecutionRecord, error) {
	var recs []model.ExecutionRecord
	if err := c.do(ctx, http.MethodGet, "/api/executions", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CreateSnippet shares code publicly.
func (c *Client) CreateSnippet(ctx context.Context, title, language, code string) (*model.Snippet, error) {
	body := map[string]string{"title": title, "language": language, "code": code}
	var s model.Snippet
	if err := c.do(ctx, http.MethodPost, "/api/snippets", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Snippets lists all shared snippets, newest first.
func (c *Client) Snippets(ctx context.Context) ([]model.Snippet, error) {
	var list []model.Snippet
	if err := c.do(ctx, http.MethodGet, "/api/snippets", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Star toggles the caller's star on a snippet.
func (c *Client) Star(ctx context.Context, snippetID string) (*model.StarStatus, error) {
	var st model.StarStatus
	if err := c.do(ctx, http.MethodPost, "/api/snippets/"+snippetID+"/star", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Non-JSON error bodies still produce an APIError with the status.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// IsUnauthorized reports whether err means the token is missing or bad.
func IsUnauthorized(err error) bool {
	return errors.Is(err, apperror.ErrUnauthorized)
}
