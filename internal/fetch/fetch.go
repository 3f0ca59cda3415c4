// Package fetch wraps HTTP GET with bounded retries, backoff and request
// pacing. It is the single entry point for all outbound page and image
// requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/akikodev/deals-scraper/internal/headers"
	"github.com/akikodev/deals-scraper/internal/ratelimit"
)

// TransportError is a failed fetch. Transient failures (network errors,
// rate-limit and server statuses) are worth retrying; everything else is
// fatal for that URL only.
type TransportError struct {
	URL       string
	Status    int
	Transient bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

var transientStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	// Limiter applies the courtesy delay before each call. Nil disables
	// pacing, which only makes sense in tests and the image worker.
	Limiter ratelimit.Limiter
	Rotator *headers.Rotator
}

type Client struct {
	http       *http.Client
	rotator    *headers.Rotator
	limiter    ratelimit.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Rotator == nil {
		opts.Rotator = headers.NewRotator(nil)
	}
	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		rotator:    opts.Rotator,
		limiter:    opts.Limiter,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     logger.With("component", "fetcher"),
	}
}

// Fetch GETs the URL and returns the body. Transient failures are retried up
// to the retry bound with backoff growing per attempt; non-transient HTTP
// statuses fail immediately. The courtesy delay applies once per call,
// before the first attempt, whether or not the previous call failed.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr *TransportError
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		body, terr := c.doRequest(ctx, url)
		if terr == nil {
			return body, nil
		}
		if !terr.Transient {
			return nil, terr
		}

		c.logger.Warn("transient fetch failure",
			"url", url, "attempt", attempt, "max_retries", c.maxRetries,
			"status", terr.Status, "error", terr.Err)
		lastErr = terr
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, *TransportError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	for k, v := range c.rotator.Next() {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are always worth another attempt.
		return nil, &TransportError{URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			URL:       url,
			Status:    resp.StatusCode,
			Transient: transientStatuses[resp.StatusCode],
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Transient: true, Err: err}
	}
	return body, nil
}

// backoff sleeps retryDelay x attempt plus up to one base delay of jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.retryDelay*time.Duration(attempt) + time.Duration(rand.Int63n(int64(c.retryDelay)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
