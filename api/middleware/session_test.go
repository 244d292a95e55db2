package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSessionPropagatesHeader(t *testing.T) {
	mw := Session(nil)
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Session-Id", "sess-123")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if seen != "sess-123" {
		t.Fatalf("expected session in context, got %q", seen)
	}
	if resp.Header().Get("X-Session-Id") != "sess-123" {
		t.Fatalf("session header should be echoed back")
	}
}

func TestSessionMintsWhenMissing(t *testing.T) {
	mw := Session(nil)
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if seen == "" {
		t.Fatalf("expected minted session id")
	}
	if resp.Header().Get("X-Session-Id") != seen {
		t.Fatalf("minted session must be returned to the client")
	}
}

func TestSessionRejectsOversizedID(t *testing.T) {
	mw := Session(nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Session-Id", strings.Repeat("x", maxSessionIDLen+1))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRequireSessionBlocksAnonymousMutation(t *testing.T) {
	mw := RequireSession(nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	with := httptest.NewRequest(http.MethodPost, "/api/cart/items", nil)
	with.Header.Set("X-Session-Id", "sess-1")
	ok := httptest.NewRecorder()
	mw(handler).ServeHTTP(ok, with)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", ok.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	mw := SecurityHeaders()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
	if resp.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if resp.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing CSP header")
	}
	if resp.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS should only be set on TLS requests")
	}
}
