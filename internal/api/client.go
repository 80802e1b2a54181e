// Package api is the JSON gateway client for the skills platform backend.
//
// Every call returns either a typed payload or an *Error carrying the failure
// kind, so callers branch explicitly instead of trusting an always-parsed
// body. Non-2xx statuses are errors; a 2xx body that fails to decode is a
// decode error.
package api

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

	"github.com/google/uuid"

	"github.com/okian/mahara/pkg/logger"
	"github.com/okian/mahara/pkg/metrics"
)

// Default client configuration.
const (
	defaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 15 * time.Second
)

// Client issues JSON HTTP requests against the backend base URL.
type Client struct {
	base    string
	hc      *http.Client
	headers map[string]string
	logger  logger.Logger
}

// New creates a Client with default configuration.
func New(opts ...Option) *Client {
	c := &Client{
		base:    defaultBaseURL,
		hc:      &http.Client{Timeout: defaultTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// do issues one JSON request and decodes a 2xx body into out (when non-nil).
// The endpoint name labels metrics only; it never reaches the wire.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out)
	durationMs := float64(time.Since(start).Milliseconds())

	metrics.RecordAPIRequestDuration(endpoint, durationMs)
	metrics.RecordAPIRequest(endpoint, outcomeOf(err))

	if err != nil {
		c.logger.Debug(ctx, "api request failed",
			logger.String("endpoint", endpoint),
			logger.String("method", method),
			logger.Error(err))
		return err
	}
	c.logger.Debug(ctx, "api request completed",
		logger.String("endpoint", endpoint),
		logger.String("method", method),
		logger.Float64("duration_ms", durationMs))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("build request: %v", err)}
	}

	// JSON content type always; caller-supplied headers merge on top.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: err.Error()}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: err.Error()}
		}
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{Kind: KindValidation, Status: resp.StatusCode, Message: serverMessage(raw, resp.StatusCode)}
	default:
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: serverMessage(raw, resp.StatusCode)}
	}
}

// serverMessage pulls a human-readable message out of an error body.
// Backends answer with {code,message}, {error} or {message}; fall back to
// the status text when nothing decodes.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Err != "":
			return body.Err
		}
	}
	return http.StatusText(status)
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindValidation:
			return metrics.OutcomeValidation
		case KindServer:
			return metrics.OutcomeServer
		case KindDecode:
			return metrics.OutcomeDecode
		}
	}
	return metrics.OutcomeNetwork
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.base, "/")
}
