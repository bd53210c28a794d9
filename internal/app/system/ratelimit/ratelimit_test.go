package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("expected first two requests to be allowed")
	}
	if l.Allow("k") {
		t.Error("expected third request to be limited")
	}
	if !l.Allow("other") {
		t.Error("expected a different key to be allowed")
	}

	l.Reset("k")
	if !l.Allow("k") || !l.Allow("k") {
		t.Error("expected a full window after reset")
	}
	if l.Allow("k") {
		t.Error("expected the limit to apply again after reset")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if !l.Allow("k") {
		t.Fatal("expected first request to be allowed")
	}
	clock = clock.Add(59 * time.Second)
	if l.Allow("k") {
		t.Fatal("expected request inside the window to be limited")
	}
	clock = clock.Add(time.Second)
	if !l.Allow("k") {
		t.Error("expected request at the window boundary to be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", nil, "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr without port", nil, "10.0.0.1", "10.0.0.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:1", "5.6.7.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			var got string
			middleware.RealIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			})).ServeHTTP(httptest.NewRecorder(), r)
			if got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	if ok, _ := ll.Check(r, "Keesun"); !ok {
		t.Fatal("first attempt should be allowed")
	}
	if ok, _ := ll.Check(r, " keesun "); !ok {
		t.Fatal("second attempt should be allowed")
	}
	ok, reason := ll.Check(r, "KEESUN")
	if ok {
		t.Fatal("third attempt for the same account should be limited")
	}
	if reason == "" {
		t.Error("expected a reason")
	}

	ll.ResetLogin("keesun")
	if ok, _ := ll.Check(r, "keesun"); !ok {
		t.Error("expected attempt after reset to be allowed")
	}
}

func TestLoginLimiter_IP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	if ok, _ := ll.Check(r, "a"); !ok {
		t.Fatal("first attempt should be allowed")
	}
	if ok, _ := ll.Check(r, "b"); ok {
		t.Error("second attempt from the same IP should be limited")
	}
}
