package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/templui/filesmanager/internal/ctxkeys"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute, false)(ok)

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 200, 200, 429; got %v", codes)
	}

	// Other clients keep their own budget
	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for another IP, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	req.Header.Set("X-Real-IP", "5.6.7.8")

	if ip := clientIP(req, false); ip != "192.168.1.5" {
		t.Errorf("expected RemoteAddr host without trusted proxy, got %q", ip)
	}
	if ip := clientIP(req, true); ip != "1.2.3.4" {
		t.Errorf("expected first forwarded IP behind trusted proxy, got %q", ip)
	}

	req.Header.Del("X-Forwarded-For")
	if ip := clientIP(req, true); ip != "5.6.7.8" {
		t.Errorf("expected X-Real-IP behind trusted proxy, got %q", ip)
	}

	req.RemoteAddr = "[::1]:5000"
	if ip := clientIP(req, false); ip != "::1" {
		t.Errorf("expected IPv6 host, got %q", ip)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	h := RateLimit(2, time.Minute, false)(ok)

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected rotating X-Forwarded-For to stay limited, got %v", codes)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := &RateLimiter{attempts: map[string][]time.Time{}, limit: 5, window: time.Minute}
	now := time.Now()
	rl.attempts["idle"] = []time.Time{now.Add(-time.Hour)}
	rl.attempts["busy"] = []time.Time{now.Add(-time.Hour), now.Add(-time.Second), now}

	rl.sweep()

	if _, found := rl.attempts["idle"]; found {
		t.Error("expected idle client to be forgotten")
	}
	if got := len(rl.attempts["busy"]); got != 2 {
		t.Errorf("expected 2 recent attempts kept, got %d", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 21 || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected generated id echoed, got ctx %q header %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("expected caller id to be kept, got %q", seen)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestLogging, Recover)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
