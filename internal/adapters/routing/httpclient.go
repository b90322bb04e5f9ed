// Package routing implements ports.RoutingGateway against real road-network
// providers and a haversine fallback.
package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// httpStatusError wraps a non-2xx HTTP response so doWithRetry can decide
// whether the status is transient.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// retryingClient is a small HTTP client wrapper shared by every gateway
// provider: it carries the timeout, retry budget, and backoff policy.
type retryingClient struct {
	httpClient *http.Client
	maxRetries int
}

func newRetryingClient(timeout time.Duration, maxRetries int) *retryingClient {
	return &retryingClient{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

func (c *retryingClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx) with
// exponential backoff, honoring context cancellation between attempts.
func (c *retryingClient) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := 200 * time.Millisecond
	var lastErr error

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

// isUnavailable reports whether err should surface as
// domain.ErrProviderUnavailable rather than a request-shape error.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == 429
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
