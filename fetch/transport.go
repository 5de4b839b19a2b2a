package fetch

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// retryTransport wraps an http.RoundTripper with retry logic for
// artifact downloads. It applies exponential backoff and respects
// Retry-After headers from the artifact host.
type retryTransport struct {
	base           http.RoundTripper
	logger         *slog.Logger
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RoundTrip implements http.RoundTripper with retry logic.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	var lastErr error
	var lastResp *http.Response

	backoff := t.initialBackoff
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff
			if lastResp != nil {
				if retryAfter := parseRetryAfter(lastResp); retryAfter > 0 {
					wait = retryAfter
				}
				// Drain so the connection can be reused.
				io.Copy(io.Discard, lastResp.Body)
				lastResp.Body.Close()
			}
			if wait > t.maxBackoff {
				wait = t.maxBackoff
			}

			t.logger.Debug("retrying artifact request",
				"url", safeURL(req.URL.String()),
				"attempt", attempt,
				"wait", wait)

			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(wait):
			}
			backoff *= 2
		}

		resp, err := base.RoundTrip(req.Clone(req.Context()))
		if err != nil {
			lastErr = err
			lastResp = nil
			continue
		}
		if !shouldRetry(resp.StatusCode) {
			return resp, nil
		}
		lastErr = nil
		lastResp = resp
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func parseRetryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
