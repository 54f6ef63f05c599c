// Package client talks to the sales REST backend.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// RequestIDHeader carries the correlation id of every request.
const RequestIDHeader = "X-Request-ID"

// Config describes how to reach the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient is a thin wrapper over Resty bound to one base URL.
type HTTPClient struct {
	rc     *resty.Client
	logger *zap.Logger
}

// NewHTTPClient creates an HTTPClient. A nil logger disables logging.
func NewHTTPClient(cfg Config, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &HTTPClient{rc: rc, logger: logger}
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	return c.rc.Close()
}

// errorBody is the shape of backend error responses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do sends one request. build may set query, path params and body; out, when
// non-nil, receives the decoded JSON of a successful response.
func (c *HTTPClient) Do(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	requestID := uuid.NewString()
	req := c.rc.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID)
	if build != nil {
		build(req)
	}
	if out != nil {
		req.SetResult(out)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}

	c.logger.Debug("request done",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.IsError() {
		serr := &ServerError{StatusCode: resp.StatusCode(), RequestID: requestID}
		var body errorBody
		if json.Unmarshal([]byte(resp.String()), &body) == nil {
			serr.Message = body.Error
			if serr.Message == "" {
				serr.Message = body.Message
			}
		}
		return fmt.Errorf("%s %s: %w", method, path, serr)
	}

	return nil
}
