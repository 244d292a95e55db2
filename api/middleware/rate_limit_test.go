package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
)

type fakeLimiter struct {
	counts map[string]int64
	fail   bool
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int64)}
}

func (f *fakeLimiter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.fail {
		return 0, errors.New("redis down")
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeLimiter) RateLimitKey(scope string) string {
	return "test:rate_limit:" + scope
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	limiter := newFakeLimiter()
	policy := NewRateLimitPolicy("order", time.Minute, 2)
	mw := RateLimit(policy, limiter, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp
	}

	for i := 0; i < 2; i++ {
		if resp := send(); resp.Code != http.StatusCreated {
			t.Fatalf("request %d should pass, got %d", i+1, resp.Code)
		}
	}

	resp := send()
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", resp.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("expected rate limit code, got %s", payload.Error.Code)
	}
}

func TestRateLimitSeparatesClients(t *testing.T) {
	limiter := newFakeLimiter()
	policy := NewRateLimitPolicy("payment", time.Minute, 1)
	mw := RateLimit(policy, limiter, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/create-intent", nil)
		req.Header.Set("X-Forwarded-For", ip)
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("ip %s should have its own budget, got %d", ip, resp.Code)
		}
	}
}

func TestRateLimitFailsOpenWhenStoreDown(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.fail = true
	policy := NewRateLimitPolicy("order", time.Minute, 1)
	mw := RateLimit(policy, limiter, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("store outage must not block traffic, got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicyIsNoop(t *testing.T) {
	limiter := newFakeLimiter()
	mw := RateLimit(NewRateLimitPolicy("order", 0, 0), limiter, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("disabled policy should never block, got %d", resp.Code)
		}
	}
	if len(limiter.counts) != 0 {
		t.Fatalf("disabled policy should not touch the store")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.9")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("unexpected client ip %q", got)
	}
}
