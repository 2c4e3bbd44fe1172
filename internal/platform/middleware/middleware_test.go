package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimiddleware.GetReqID(r.Context())
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected request id in context")
	}
	if got := resp.Header().Get("X-Request-Id"); got != seen {
		t.Fatalf("header %q does not match context id %q", got, seen)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	h := RequestID()(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected reused id, got %q", got)
	}
}

func TestRequestIDRejectsUnsafeHeader(t *testing.T) {
	tests := map[string]string{
		"newline":   "abc\ndef",
		"too long":  strings.Repeat("a", maxRequestIDLength+1),
		"non-ascii": "id-\xff",
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			h := RequestID()(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-Id", id)
			resp := httptest.NewRecorder()
			h.ServeHTTP(resp, req)
			if got := resp.Header().Get("X-Request-Id"); got == id || got == "" {
				t.Fatalf("expected replacement id, got %q", got)
			}
		})
	}
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	h := CORS(nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Origin", "http://example.com")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected '*', got %q", got)
	}
}

func TestCORSRestrictsConfiguredOrigins(t *testing.T) {
	h := CORS([]string{"https://devconnector.example"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Origin", "https://devconnector.example")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://devconnector.example" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unknown origin, got %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodOptions, "/api/profile/experience", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if called {
		t.Fatal("preflight should not reach the handler")
	}
	if !strings.Contains(resp.Header().Get("Access-Control-Allow-Methods"), http.MethodPut) {
		t.Fatalf("expected PUT in allowed methods, got %q", resp.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestVaryAddsAccept(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	vals := resp.Header().Values("Vary")
	if len(vals) != 2 || vals[0] != "Accept" || vals[1] != "Origin" {
		t.Fatalf("unexpected Vary values %v", vals)
	}
}

func TestSecuritySetsHeaders(t *testing.T) {
	h := Security("/api-docs")(okHandler())
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	for _, kv := range securityHeaders {
		if got := resp.Header().Get(kv[0]); got != kv[1] {
			t.Fatalf("%s: expected %q, got %q", kv[0], kv[1], got)
		}
	}
}

func TestSecuritySkipsPrefixes(t *testing.T) {
	h := Security("/api-docs")(okHandler())
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	if got := resp.Header().Get("X-Frame-Options"); got != "" {
		t.Fatalf("expected no security headers on docs, got X-Frame-Options=%q", got)
	}
}
