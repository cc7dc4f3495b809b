// Package backend is the typed HTTP client for the seedbot REST API. The
// backend owns all durable state; this client only shapes requests, carries
// the bearer token, and translates failures into the console's error
// envelope. Calls are guarded by a circuit breaker and a bounded retry with
// exponential backoff.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/model"
)

// maxResponseBytes bounds how much of a backend response body is read.
const maxResponseBytes = 10 << 20

// Client talks to the seedbot backend.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *Breaker
	retry   config.RetryConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New creates a Client from backend configuration. Metrics may be nil when
// metrics collection is disabled.
func New(cfg config.BackendConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := cfg.CircuitBreaker
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: NewBreaker(cb.FailureThreshold, cb.SuccessThreshold, cb.Timeout),
		retry:   cfg.Retry,
		logger:  logger,
		metrics: metrics,
	}
}

// HealthCheck probes the backend's health endpoint. It bypasses the retry
// loop so that readiness reflects the current state, not a lucky retry.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("backend: build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: health check: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend: health check returned status %d", resp.StatusCode)
	}
	return nil
}

// do executes one JSON request against the backend. A non-empty token is
// sent as a bearer Authorization header. On 2xx the response body, if any,
// is decoded into out. Failures come back as *model.ErrorEnvelope.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal body: %w", err)
		}
	}

	maxAttempts := c.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	canRetry := isIdempotentMethod(method) || !c.retry.IdempotentOnly

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.NewBackendTimeoutError()
			case <-time.After(c.backoff(attempt)):
			}
		}

		retryable, err := c.doOnce(ctx, method, path, token, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !canRetry || !retryable {
			return err
		}
		if c.metrics != nil {
			c.metrics.BackendRetriesTotal.Inc()
		}
		c.logger.Debug("backend retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return lastErr
}

// doOnce performs a single request. The bool result reports whether the
// failure is worth retrying.
func (c *Client) doOnce(ctx context.Context, method, path, token string, payload []byte, out any) (bool, error) {
	if err := c.breaker.Allow(); err != nil {
		return false, model.NewBackendUnavailableError()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	observability.InjectTraceHeaders(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		c.observe(method, path, 0, start)
		if ctx.Err() != nil {
			return false, model.NewBackendTimeoutError()
		}
		if isConnectionError(err) {
			return true, model.NewBackendUnavailableError()
		}
		return true, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure()
		return true, fmt.Errorf("backend: read response: %w", err)
	}
	c.observe(method, path, resp.StatusCode, start)

	if resp.StatusCode >= 500 {
		c.recordFailure()
		return true, translateError(resp.StatusCode, respBody)
	}
	if resp.StatusCode >= 400 {
		// Client errors are not infrastructure failures; the breaker
		// stays untouched and the call is not retried.
		return false, translateError(resp.StatusCode, respBody)
	}

	c.recordSuccess()

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return false, fmt.Errorf("backend: decode response: %w", err)
		}
	}
	return false, nil
}

// errorBody is the backend's failure envelope: an error or message field.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// translateError maps a non-2xx backend response to an error envelope,
// preferring the backend's own message when one is present.
func translateError(status int, body []byte) *model.ErrorEnvelope {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return model.NewAuthError(msg)
	case status == http.StatusNotFound:
		return model.NewNotFoundError(msg)
	case status >= 500:
		return model.NewBackendUnavailableError()
	default:
		return model.NewBadRequestError(msg)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	initial := c.retry.BackoffInitial
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	multiplier := c.retry.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	max := c.retry.BackoffMax
	if max <= 0 {
		max = 2 * time.Second
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)
		if delay > max {
			return max
		}
	}
	return delay
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete,
		http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordBackendRequest(method, path, status, time.Since(start))
}

func (c *Client) recordSuccess() {
	c.breaker.RecordSuccess()
	c.publishBreakerState()
}

func (c *Client) recordFailure() {
	c.breaker.RecordFailure()
	c.publishBreakerState()
}

func (c *Client) publishBreakerState() {
	if c.metrics == nil {
		return
	}
	var v float64
	switch c.breaker.State() {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	c.metrics.BackendCircuitBreakerState.Set(v)
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
