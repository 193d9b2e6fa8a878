// Package piston implements executor.Gateway against a Piston-compatible
// HTTP API (https://github.com/engineer-man/piston).
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/codecraft/internal/executor"
)

// compile-time check
var _ executor.Gateway = (*Client)(nil)

// Client POSTs execution requests to a Piston instance.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. When cfg.APIKey is set, every request carries it as
// a bearer token through an oauth2 static token source.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultConfig().MaxResponseBytes
	}

	httpClient := &http.Client{}
	if cfg.APIKey != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		config: cfg,
		http:   httpClient,
		logger: logger,
	}
}

// Execute sends one request to {BaseURL}/execute.
//
// Non-2xx replies are still decoded: Piston reports bad requests (unknown
// runtime, missing files) as {"message": "..."} with a 400 status, and that
// message is what the user should see.
func (c *Client) Execute(ctx context.Context, req executor.Request) (*executor.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("piston: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("piston: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("gateway request failed",
			slog.String("language", req.Language),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("piston: sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("piston: reading response: %w", err)
	}

	var out executor.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("piston: decoding response (status %d): %w", resp.StatusCode, err)
	}

	c.logger.Debug("gateway request completed",
		slog.String("language", req.Language),
		slog.String("version", req.Version),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return &out, nil
}
