package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := Do(context.Background(), srv.Client(), NewBreaker("test"), time.Second, get(srv.URL))

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestDo_NonSuccessIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), srv.Client(), NewBreaker("test"), time.Second, get(srv.URL))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1.5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), srv.Client(), NewBreaker("test"), time.Second, get(srv.URL))

	wait, ok := RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, wait)

	_, ok = RetryAfter(&StatusError{Code: http.StatusBadGateway})
	assert.False(t, ok)
	_, ok = RetryAfter(errors.New("boom"))
	assert.False(t, ok)
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := Do(context.Background(), srv.Client(), NewBreaker("test"), 50*time.Millisecond, get(srv.URL))

	assert.Error(t, err)
}

func TestDo_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := NewBreaker("test")
	for i := 0; i < 3; i++ {
		_, err := Do(context.Background(), srv.Client(), cb, time.Second, get(srv.URL))
		require.Error(t, err)
	}

	_, err := Do(context.Background(), srv.Client(), cb, time.Second, get(srv.URL))
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestDo_NoClient(t *testing.T) {
	_, err := Do(context.Background(), nil, NewBreaker("test"), time.Second, get("http://example.invalid"))

	assert.ErrorIs(t, err, ErrNoHTTPClient)
}
