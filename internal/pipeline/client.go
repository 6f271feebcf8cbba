// Package pipeline orchestrates fetching, extraction, and cache fallback
// for the profile data sources.
package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outcome classifies the result of a fetch attempt.
type Outcome int

const (
	// Success means a response in the 200-399 range with a readable body.
	Success Outcome = iota
	// HTTPError means the upstream answered with a 400+ status.
	HTTPError
	// NetworkError means the request never produced a usable response.
	NetworkError
)

// ClientOptions configures the upstream HTTP client.
type ClientOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	RateLimiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the default per-host rate limiters.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"www.linkedin.com": rate.NewLimiter(1, 2),
		"medium.com":       rate.NewLimiter(2, 4),
	}
}

// Client fetches upstream documents with per-host rate limiting and a
// bounded response body. It never retries; callers fall back to cached
// data instead.
type Client struct {
	http     *http.Client
	opts     ClientOptions
	limiters map[string]*rate.Limiter
	breakers *hostBreakers
}

// NewClient creates a new upstream client with the given options.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; profile-api/1.0)"
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		limiters: limiters,
		breakers: newHostBreakers(),
	}
}

// FetchResult is the classified result of a single fetch.
type FetchResult struct {
	Outcome    Outcome
	StatusCode int
	Body       []byte
}

// Fetch downloads the URL once. Network failures and bad statuses are
// reported through the Outcome rather than retried.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers map[string]string) (FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FetchResult{Outcome: NetworkError}, eris.Wrapf(err, "pipeline: parse url %s", rawURL)
	}

	breaker := c.breakers.get(u.Host)
	if !breaker.allow() {
		zap.L().Warn("skipping fetch, host suspended", zap.String("host", u.Host))
		return FetchResult{Outcome: NetworkError}, ErrHostSuspended
	}

	if limiter, ok := c.limiters[u.Host]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return FetchResult{Outcome: NetworkError}, eris.Wrap(err, "pipeline: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{Outcome: NetworkError}, eris.Wrap(err, "pipeline: build request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	breaker.record(err != nil)
	if err != nil {
		zap.L().Warn("upstream fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return FetchResult{Outcome: NetworkError}, eris.Wrapf(err, "pipeline: fetch %s", u.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		zap.L().Warn("upstream returned error status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return FetchResult{Outcome: HTTPError, StatusCode: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return FetchResult{Outcome: NetworkError, StatusCode: resp.StatusCode}, eris.Wrap(err, "pipeline: read body")
	}

	zap.L().Debug("upstream fetch complete",
		zap.String("host", u.Host),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return FetchResult{Outcome: Success, StatusCode: resp.StatusCode, Body: body}, nil
}
