package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

var (
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoHTTPClient = errors.New("http client not configured")
	ErrRateLimited  = errors.New("rate limited")
)

// StatusError is returned for any non-2xx response. RetryAfter is set when
// the response carried a Retry-After header in seconds.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) match a 429.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// RetryAfter reports the wait the upstream asked for when err is a 429.
func RetryAfter(err error) (time.Duration, bool) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests {
		return 0, false
	}
	return statusErr.RetryAfter, true
}

// NewBreaker returns the circuit breaker shared by all calls to one upstream.
// It opens after three consecutive failures and probes again after Timeout.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Do executes one request through the circuit breaker, bounded by timeout,
// and returns the response body. There is no retry: a transport error, an
// open circuit or a non-2xx status all fail the call.
func Do(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	timeout time.Duration,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if client == nil {
		return nil, ErrNoHTTPClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{
				Code:       resp.StatusCode,
				Body:       snippet(body),
				RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
			}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
