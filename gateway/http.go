package gateway

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

	"github.com/cenkalti/backoff/v5"

	"github.com/recipeshare/authcore/session"
)

// ErrGatewayUnavailable wraps transport-level failures after retries are
// exhausted.
var ErrGatewayUnavailable = errors.New("auth gateway unavailable")

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"

	maxResponseBytes = 1 << 20
)

// HTTPConfig tunes the HTTP gateway client.
type HTTPConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	// MaxTries bounds retry of transient failures (5xx, network errors).
	// 1 disables retry.
	MaxTries uint
}

// HTTPGateway is a JSON-over-HTTP [Gateway] client. Transient failures
// are retried with exponential backoff before being reported; 4xx
// responses are never retried.
type HTTPGateway struct {
	config HTTPConfig
	client *http.Client
}

// NewHTTPGateway creates an HTTP gateway client. httpClient may be nil,
// in which case a client with the configured timeout is used.
func NewHTTPGateway(cfg HTTPConfig, httpClient *http.Client) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base URL required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &HTTPGateway{config: cfg, client: httpClient}, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Login(ctx context.Context, email, password string) (*Result, error) {
	return g.post(ctx, loginPath, map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *HTTPGateway) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	return g.post(ctx, registerPath, map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"password":  req.Password,
	})
}

type wireResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    *session.Identity `json:"user"`
	Token   string            `json:"token"`
}

func (g *HTTPGateway) post(ctx context.Context, path string, body map[string]string) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	operation := func() (*Result, error) {
		return g.doOnce(ctx, path, payload)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(g.config.MaxTries),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *HTTPGateway) doOnce(ctx context.Context, path string, payload []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrGatewayUnavailable, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// Network-level failure: retryable.
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode))
	}

	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: malformed payload: %v", ErrGatewayUnavailable, err))
	}

	return &Result{
		Success: wire.Success,
		Message: wire.Message,
		User:    wire.User,
		Token:   wire.Token,
	}, nil
}
