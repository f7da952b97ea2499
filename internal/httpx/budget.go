// Package httpx holds the HTTP plumbing shared by the hosted-API clients:
// verbose request logging and a rate-limit aware request budget.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitHeaders names the response headers a hosting API uses to report
// its remaining request allowance and the reset time (unix seconds).
type RateLimitHeaders struct {
	Remaining string
	Reset     string
}

var (
	GitHubRateLimitHeaders = RateLimitHeaders{Remaining: "X-RateLimit-Remaining", Reset: "X-RateLimit-Reset"}
	GitLabRateLimitHeaders = RateLimitHeaders{Remaining: "RateLimit-Remaining", Reset: "RateLimit-Reset"}
)

type RequestBudget struct {
	mu        sync.Mutex
	headers   RateLimitHeaders
	remaining int
	reset     time.Time
	now       func() time.Time
	probed    bool
	cooldown  time.Time
	notifyCh  chan struct{}
}

func NewRequestBudget(headers RateLimitHeaders) *RequestBudget {
	return &RequestBudget{
		headers:   headers,
		remaining: 5000, // Default conservative start
		reset:     time.Now().Add(1 * time.Hour),
		now:       time.Now,
		notifyCh:  make(chan struct{}),
	}
}

func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

func (b *RequestBudget) Acquire(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("Acquire: nil context")
	}
	if b == nil {
		return fmt.Errorf("Acquire: nil RequestBudget")
	}
	if b.now == nil || b.notifyCh == nil {
		return fmt.Errorf("Acquire: RequestBudget not initialized (use NewRequestBudget)")
	}

	for {
		b.mu.Lock()
		now := b.now()

		if now.Before(b.cooldown) {
			wait := b.cooldown.Sub(now)
			ch := b.notifyCh
			b.mu.Unlock()
			if err := waitFor(ctx, ch, wait); err != nil {
				return err
			}
			continue
		}

		if b.remaining > 0 {
			b.remaining--
			b.mu.Unlock()
			return nil
		}

		// Reset has passed but no refreshed budget was observed yet: allow a
		// single probe request, then block until UpdateFromResponse.
		if !now.Before(b.reset) {
			if !b.probed {
				b.probed = true
				b.mu.Unlock()
				return nil
			}
			ch := b.notifyCh
			b.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
				continue
			}
		}

		wait := b.reset.Sub(now)
		ch := b.notifyCh
		b.mu.Unlock()
		if err := waitFor(ctx, ch, wait); err != nil {
			return err
		}
	}
}

func waitFor(ctx context.Context, ch <-chan struct{}, wait time.Duration) error {
	if wait < 0 {
		wait = 0
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	case <-timer.C:
		return nil
	}
}

func (b *RequestBudget) signalLocked() {
	close(b.notifyCh)
	b.notifyCh = make(chan struct{})
}

func (b *RequestBudget) UpdateFromResponse(resp *http.Response) {
	if resp == nil || b == nil || b.now == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false

	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			until := b.now().Add(time.Duration(seconds) * time.Second)
			if until.After(b.cooldown) {
				b.cooldown = until
				changed = true
			}
		}
	}

	if remaining := resp.Header.Get(b.headers.Remaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil && val >= 0 && b.remaining != val {
			b.remaining = val
			changed = true
		}
	}

	if reset := resp.Header.Get(b.headers.Reset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil && val > 0 {
			newReset := time.Unix(val, 0)
			if !b.reset.Equal(newReset) {
				b.reset = newReset
				changed = true
			}
		}
	}

	if changed {
		b.probed = false
		b.signalLocked()
	}
}

// BudgetRoundTripper acquires one unit of budget before every request and
// feeds the response headers back into the budget.
type BudgetRoundTripper struct {
	Base   http.RoundTripper
	Budget *RequestBudget
}

func (t *BudgetRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Budget != nil {
		if err := t.Budget.Acquire(req.Context()); err != nil {
			return nil, err
		}
	}
	resp, err := base.RoundTrip(req)
	if t.Budget != nil {
		t.Budget.UpdateFromResponse(resp)
	}
	return resp, err
}
