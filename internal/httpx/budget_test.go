package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBudget(t *testing.T) {
	fixedNow := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	newBudget := func(headers RateLimitHeaders, remaining int, reset time.Time) *RequestBudget {
		b := NewRequestBudget(headers)
		b.now = func() time.Time { return fixedNow }
		b.remaining = remaining
		b.reset = reset
		return b
	}

	t.Run("Acquire ok", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 5000, fixedNow.Add(time.Hour))
		require.NoError(t, b.Acquire(context.Background()))
		assert.Equal(t, 4999, b.Remaining())
	})

	t.Run("UpdateFromResponse reads GitHub headers", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 5000, fixedNow.Add(time.Hour))

		resp := &http.Response{Header: make(http.Header)}
		resp.Header.Set("X-RateLimit-Remaining", "10")
		resp.Header.Set("X-RateLimit-Reset", "1700000000")
		b.UpdateFromResponse(resp)

		assert.Equal(t, 10, b.Remaining())
		assert.True(t, b.reset.Equal(time.Unix(1700000000, 0)))
	})

	t.Run("UpdateFromResponse reads GitLab headers", func(t *testing.T) {
		b := newBudget(GitLabRateLimitHeaders, 5000, fixedNow.Add(time.Hour))

		resp := &http.Response{Header: make(http.Header)}
		resp.Header.Set("RateLimit-Remaining", "42")
		resp.Header.Set("X-RateLimit-Remaining", "7")
		b.UpdateFromResponse(resp)

		assert.Equal(t, 42, b.Remaining())
	})

	t.Run("Retry-After causes cooldown blocking", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 5000, fixedNow.Add(-time.Hour))

		resp := &http.Response{Header: make(http.Header)}
		resp.Header.Set("Retry-After", "60")
		b.UpdateFromResponse(resp)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, b.Acquire(ctx), context.DeadlineExceeded)
	})

	t.Run("UpdateFromResponse ignores invalid headers", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 7, time.Unix(123, 0))

		resp := &http.Response{Header: make(http.Header)}
		resp.Header.Set("X-RateLimit-Remaining", "nope")
		resp.Header.Set("X-RateLimit-Reset", "not-a-time")
		b.UpdateFromResponse(resp)

		assert.Equal(t, 7, b.Remaining())
		assert.True(t, b.reset.Equal(time.Unix(123, 0)))
	})

	t.Run("Exhausted before reset blocks", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 0, fixedNow.Add(time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, b.Acquire(ctx))
	})

	t.Run("After reset only allows one probe until update", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 0, fixedNow.Add(-time.Second))

		require.NoError(t, b.Acquire(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, b.Acquire(ctx))
	})

	t.Run("UpdateFromResponse wakes waiters", func(t *testing.T) {
		b := newBudget(GitHubRateLimitHeaders, 0, fixedNow.Add(time.Hour))

		errCh := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			errCh <- b.Acquire(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		resp := &http.Response{Header: make(http.Header)}
		resp.Header.Set("X-RateLimit-Remaining", "1")
		b.UpdateFromResponse(resp)

		assert.NoError(t, <-errCh)
	})

	t.Run("nil context fails fast", func(t *testing.T) {
		var nilCtx context.Context
		b := NewRequestBudget(GitHubRateLimitHeaders)
		assert.Error(t, b.Acquire(nilCtx))
	})
}

func TestBudgetRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("RateLimit-Remaining", "3")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	budget := NewRequestBudget(GitLabRateLimitHeaders)
	client := &http.Client{Transport: &BudgetRoundTripper{Budget: budget}}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, 3, budget.Remaining())
}
