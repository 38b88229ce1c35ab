package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the maximum number of attempt slots for a request.
	DefaultMaxRetries = 3
	// DefaultBackoffBase is the base of the exponential backoff, in seconds.
	DefaultBackoffBase = 2.0
	// DefaultPageSize is the default number of items per listing page.
	DefaultPageSize = 100

	rateLimitResetHeader = "X-RateLimit-Reset"
	errorBodyLimit       = 256
)

// RetryPolicy bounds the retry loop of BaseClient.
type RetryPolicy struct {
	// MaxRetries is the total number of attempt slots. A rate-limit wait
	// re-enters the loop and therefore consumes a slot, exactly like a
	// transient retry.
	MaxRetries int
	// BackoffBase is raised to (attempt-1) to compute the sleep, in seconds,
	// before the next attempt after a transient failure.
	BackoffBase float64
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = DefaultBackoffBase
	}
	return p
}

// BaseClient issues single HTTP requests with bounded retries on transient
// failures (connection errors, timeouts, 5xx) and rate-limit backoff.
// Non-retryable responses are returned to the caller for status inspection.
// Follows DRY principle: platform clients share this machinery instead of
// re-implementing it.
type BaseClient struct {
	httpClient HTTPClient
	policy     RetryPolicy
	logger     Logger

	// seams for deterministic tests
	sleep func(time.Duration)
	now   func() time.Time
}

// NewBaseClient creates a new base client with retry handling.
func NewBaseClient(httpClient HTTPClient, policy RetryPolicy, logger Logger) *BaseClient {
	return &BaseClient{
		httpClient: httpClient,
		policy:     policy.withDefaults(),
		logger:     logger,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// DoWithRetry builds a fresh request per attempt and issues it until a
// non-retryable outcome is reached or the attempt slots run out, at which
// point the last encountered error surfaces.
//
// A 403 whose body mentions "rate limit" triggers a sleep until the epoch
// second in X-RateLimit-Reset plus one, then retries; the wait consumes an
// attempt slot and skips the exponential backoff. A 403 without a usable
// reset header is returned as-is.
func (c *BaseClient) DoWithRetry(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxRetries; attempt++ {
		req, err := c.newRequest(ctx, method, url, body, header)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			switch {
			case resp.StatusCode == http.StatusForbidden:
				var retryAfterReset bool
				var out *http.Response
				retryAfterReset, out, err = c.handleForbidden(resp)
				if err == nil {
					if retryAfterReset {
						continue
					}
					return out, nil
				}
				// A failed body read counts as a transport error and takes
				// the retry path below.
			case resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode < 600:
				err = c.drainToStatusError(resp, url)
			default:
				return resp, nil
			}
		}

		lastErr = err
		if attempt == c.policy.MaxRetries {
			break
		}

		backoff := c.backoffFor(attempt)
		c.logger.Warnf("transient error (%v); retry %d/%d in %.1fs", err, attempt, c.policy.MaxRetries-1, backoff.Seconds())
		c.sleep(backoff)
	}

	if lastErr == nil {
		// Only reachable when every attempt slot was spent waiting out rate
		// limits. Deliberately not a StatusError: nothing non-retryable came
		// back, so this surfaces as a generic failure.
		return nil, fmt.Errorf("%s %s: rate limit retries exhausted after %d attempts", method, url, c.policy.MaxRetries)
	}
	return nil, lastErr
}

// newRequest constructs one attempt's request with the caller's headers.
func (c *BaseClient) newRequest(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

// handleForbidden inspects a 403 for rate limiting. It returns either
// retryAfterReset=true after sleeping until the advertised reset time, or the
// response (body restored) when the 403 must surface to the caller.
func (c *BaseClient) handleForbidden(resp *http.Response) (retryAfterReset bool, out *http.Response, err error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return false, nil, err
	}

	if strings.Contains(strings.ToLower(string(bodyBytes)), "rate limit") {
		if reset, ok := parseEpochSeconds(resp.Header.Get(rateLimitResetHeader)); ok {
			wait := reset - c.now().Unix()
			if wait < 0 {
				wait = 0
			}
			wait++
			c.logger.Warnf("rate limited; sleeping %ds", wait)
			c.sleep(time.Duration(wait) * time.Second)
			return true, nil, nil
		}
	}

	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return false, resp, nil
}

// drainToStatusError converts a 5xx response into a retryable StatusError,
// keeping a short body excerpt for diagnostics.
func (c *BaseClient) drainToStatusError(resp *http.Response, url string) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	_ = resp.Body.Close()
	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        url,
		Body:       strings.TrimSpace(string(excerpt)),
	}
}

func (c *BaseClient) backoffFor(attempt int) time.Duration {
	seconds := math.Pow(c.policy.BackoffBase, float64(attempt-1))
	return time.Duration(seconds * float64(time.Second))
}

func parseEpochSeconds(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return epoch, true
}
