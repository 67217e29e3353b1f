// Package httpclient issues JSON requests against remote catalog APIs with
// client-side pacing and bounded rate-limit retries.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes   = 4 << 20
	maxLoggedBytes = 512
)

// Config holds transport and retry settings
type Config struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       int
	DefaultRetryAfter time.Duration
	MaxDelay          time.Duration
}

// Request describes one logical request. It is rebuilt for every attempt.
type Request struct {
	Method string
	URL    string
	Token  string
	Form   url.Values
	Header http.Header
}

// StatusError reports a non-success, non-429 upstream status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status %d", domain.ErrRequestFailed, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrRequestFailed
}

// Client wraps net/http with pacing, 429 backoff and JSON validation
type Client struct {
	httpClient        *http.Client
	rateLimiter       *rate.Limiter
	userAgent         string
	maxAttempts       int
	defaultRetryAfter time.Duration
	maxDelay          time.Duration
	logger            *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates a resilient client. Zero config values fall back to defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "SongLens/1.0"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.DefaultRetryAfter <= 0 {
		cfg.DefaultRetryAfter = 2 * time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 60 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient:        &http.Client{Timeout: cfg.Timeout},
		rateLimiter:       rate.NewLimiter(limit, burst),
		userAgent:         cfg.UserAgent,
		maxAttempts:       cfg.MaxAttempts,
		defaultRetryAfter: cfg.DefaultRetryAfter,
		maxDelay:          cfg.MaxDelay,
		logger:            logging.OrNop(logger).Named("http"),
		sleep:             SleepContext,
		now:               time.Now,
	}
}

// Get issues a GET, attaching the bearer token when one is given
func (c *Client) Get(ctx context.Context, reqURL, token string) (gjson.Result, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: reqURL, Token: token})
}

// PostForm issues a form-encoded POST with extra headers
func (c *Client) PostForm(ctx context.Context, reqURL string, form url.Values, header http.Header) (gjson.Result, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, URL: reqURL, Form: form, Header: header})
}

// Do executes the request. A 429 is retried after Retry-After (or an
// exponential default) until MaxAttempts is reached, then ErrRateLimited is
// returned. Other failures are returned at once:
// *StatusError for non-success statuses, ErrRequestFailed for transport
// errors and ErrMalformedResponse for bodies that are not JSON.
func (c *Client) Do(ctx context.Context, r Request) (gjson.Result, error) {
	for attempt := 1; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return gjson.Result{}, fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := c.newRequest(ctx, r)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return gjson.Result{}, ctxErr
			}
			c.logger.Warn("request error", zap.String("url", r.URL), zap.Error(err))
			return gjson.Result{}, fmt.Errorf("%w: %v", domain.ErrRequestFailed, err)
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= c.maxAttempts {
				c.logger.Warn("rate limit retries exhausted",
					zap.String("url", r.URL), zap.Int("attempts", attempt))
				return gjson.Result{}, fmt.Errorf("%w after %d attempts", domain.ErrRateLimited, attempt)
			}
			wait := c.retryDelay(resp.Header.Get("Retry-After"), attempt)
			c.logger.Warn("rate limited, backing off",
				zap.String("url", r.URL), zap.Int("attempt", attempt), zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return gjson.Result{}, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: excerpt(body)}
			c.logger.Warn("upstream error",
				zap.String("url", r.URL), zap.Int("status", resp.StatusCode), zap.String("body", statusErr.Body))
			return gjson.Result{}, statusErr
		}

		if readErr != nil {
			c.logger.Warn("read body failed", zap.String("url", r.URL), zap.Error(readErr))
			return gjson.Result{}, fmt.Errorf("%w: read body: %v", domain.ErrMalformedResponse, readErr)
		}

		if !gjson.ValidBytes(body) {
			c.logger.Warn("malformed response body",
				zap.String("url", r.URL), zap.String("body", excerpt(body)))
			return gjson.Result{}, fmt.Errorf("%w: invalid JSON from %s", domain.ErrMalformedResponse, r.URL)
		}

		return gjson.ParseBytes(body), nil
	}
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	return req, nil
}

// retryDelay picks the wait before re-issuing a rate-limited request
func (c *Client) retryDelay(retryAfter string, attempt int) time.Duration {
	wait, ok := parseRetryAfter(retryAfter, c.now())
	if !ok {
		wait = exponentialBackoff(c.defaultRetryAfter, attempt)
	}
	if wait > c.maxDelay {
		wait = c.maxDelay
	}
	return wait
}

// parseRetryAfter accepts delta-seconds or an HTTP-date
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// exponentialBackoff doubles base for every attempt after the first
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	return base << (attempt - 1)
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func excerpt(body []byte) string {
	if len(body) > maxLoggedBytes {
		return string(body[:maxLoggedBytes]) + "..."
	}
	return string(body)
}

// SleepContext pauses for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
