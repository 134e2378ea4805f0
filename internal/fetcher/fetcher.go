// Package fetcher retrieves match pages over HTTP with retry, backoff, and
// rate limiting.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ErrNotFound marks a permanent HTTP client error (4xx); the page does not
// exist or is gone, so retrying is pointless.
var ErrNotFound = errors.New("page not found")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Code)
}

// Retryable reports whether the status indicates a transient server-side
// condition.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

func (e *StatusError) Unwrap() error {
	if e.Code >= 400 && e.Code < 500 && e.Code != http.StatusTooManyRequests {
		return ErrNotFound
	}
	return nil
}

// Config holds the fetcher's network knobs.
type Config struct {
	UserAgent      string
	Concurrency    int
	RequestTimeout time.Duration
	MinDelay       time.Duration
}

// CollyFetcher implements page retrieval using the Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	policy        RetryPolicy
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based fetcher.
func NewCollyFetcher(cfg Config, policy RetryPolicy, logger *zap.Logger) (*CollyFetcher, error) {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true // retries re-request the same URL
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Concurrency,
		Delay:       cfg.MinDelay,
	}); err != nil {
		return nil, fmt.Errorf("set collector limits: %w", err)
	}

	return &CollyFetcher{
		baseCollector: base,
		policy:        policy,
		logger:        logger,
	}, nil
}

// Fetch retrieves the page at rawURL, retrying transient failures per the
// configured policy, and returns the raw HTML body.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := f.fetchOnce(rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !f.policy.ShouldRetry(err, attempt) {
			return nil, lastErr
		}
		delay := f.policy.Backoff(attempt)
		f.logger.Warn("Retrying fetch",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (f *CollyFetcher) fetchOnce(rawURL string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			send(fetchResult{err: &StatusError{URL: rawURL, Code: r.StatusCode}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		return res.body, res.err
	default:
		return nil, errors.New("colly fetch produced no result")
	}
}

type fetchResult struct {
	body []byte
	err  error
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
