package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	ctx := context.Background()
	tb := NewTokenBucket(3, 1000)

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("request %d must pass", i)
		}
	}
	if tb.Allow(ctx) {
		t.Fatalf("bucket must be empty")
	}

	// 等待补充后恢复。
	time.Sleep(20 * time.Millisecond)
	if !tb.Allow(ctx) {
		t.Fatalf("bucket must refill over time")
	}
}

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	sw := NewSlidingWindow(50*time.Millisecond, 2)

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatalf("first two requests must pass")
	}
	if sw.Allow(ctx) {
		t.Fatalf("third request in window must be rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow(ctx) {
		t.Fatalf("window must slide past old requests")
	}
}

func TestRateLimitHandler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimitHandler(NewSlidingWindow(time.Minute, 1), next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	ctx := context.Background()
	cb := NewCircuitBreaker("test", 2, 30*time.Millisecond)

	boom := fmt.Errorf("backend down")
	fail := func() error { return boom }
	ok := func() error { return nil }

	if err := cb.Call(ctx, fail); !errors.Is(err, boom) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if err := cb.Call(ctx, fail); !errors.Is(err, boom) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("breaker must open after max failures")
	}

	// 打开状态直接拒绝。
	if err := cb.Call(ctx, ok); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	// 超过重置时间后半开，成功则闭合。
	time.Sleep(40 * time.Millisecond)
	if err := cb.Call(ctx, ok); err != nil {
		t.Fatalf("half-open probe must pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("breaker must close after a successful probe")
	}
}
