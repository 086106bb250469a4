// Package qa talks to the remote summarization and question-answering service.
package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 2 * time.Minute

	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 5
)

const (
	pathIngest    = "/api/v1/qa/ingest"
	pathAsk       = "/api/v1/qa/ask"
	pathFollowUp  = "/api/v1/qa/follow-up"
	pathSummarize = "/api/v1/summarize"
)

// Config describes how to build a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Retry      RetryPolicy
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues retry-guarded calls to the service. Every failure comes back
// as one of the typed errors in this package.
type Client struct {
	http    *resty.Client
	baseURL string
	timeout time.Duration
	retry   RetryPolicy
	logger  *zap.Logger
}

// New builds a Client, filling in defaults for zero fields.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    resty.NewWithClient(pickHTTPClient(cfg.HTTPClient, timeout)).SetBaseURL(base),
		baseURL: base,
		timeout: timeout,
		retry:   retry,
		logger:  logger,
	}
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	// Summaries of long papers routinely take longer than a minute.
	return &http.Client{Timeout: timeout}
}

// BaseURL reports the service root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload, out any) error {
	return c.do(ctx, op, path, func(req *resty.Request) {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}, out)
}

// do runs one logical call under the retry policy. prepare is invoked for
// every attempt so request bodies are rebuilt from scratch.
func (c *Client) do(ctx context.Context, op, path string, prepare func(*resty.Request), out any) error {
	var (
		attempt int
		lastErr error
	)
	started := time.Now()

	operation := func() error {
		attempt++
		req := c.http.R().SetContext(ctx)
		prepare(req)
		res, err := req.Post(path)
		switch {
		case err != nil:
			lastErr = c.classifyTransport(op, path, err)
		case !res.IsSuccess():
			lastErr = &ServiceError{Status: res.StatusCode(), Body: strings.TrimSpace(res.String())}
		default:
			if err := json.Unmarshal(res.Body(), out); err != nil {
				lastErr = &ServiceError{Status: res.StatusCode(), Body: fmt.Sprintf("malformed response: %v", err)}
				return backoff.Permanent(lastErr)
			}
			lastErr = nil
			return nil
		}
		if !Retryable(lastErr) {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("qa request failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, c.retry.backOff(ctx), notify)
	if err == nil {
		c.logger.Debug("qa request finished",
			zap.String("op", op),
			zap.Int("attempts", attempt),
			zap.Duration("elapsed", time.Since(started)),
		)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		lastErr = c.classifyTransport(op, path, ctxErr)
	}
	if lastErr == nil {
		lastErr = c.classifyTransport(op, path, err)
	}
	c.logger.Error("qa request failed",
		zap.String("op", op),
		zap.Int("attempts", attempt),
		zap.Error(lastErr),
	)
	return lastErr
}

func (c *Client) classifyTransport(op, path string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s canceled: %w", op, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Op: op, After: c.timeout, Err: err}
	}
	return &NetworkError{URL: c.baseURL + path, Err: err}
}
