package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAdmitAllowsUpToMaxThenDenies(t *testing.T) {
	limiter := New(time.Minute, 3)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if ok, _ := limiter.Admit("user:1"); !ok {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}

	ok, retryAfter := limiter.Admit("user:1")
	if ok {
		t.Fatal("request above the window max should be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("expected retry-after within (0, window], got %v", retryAfter)
	}
}

func TestAdmitKeysAreIndependent(t *testing.T) {
	limiter := New(time.Minute, 1)
	defer limiter.Stop()

	limiter.Admit("user:1")
	if ok, _ := limiter.Admit("user:1"); ok {
		t.Fatal("expected second request for user:1 to be denied")
	}
	if ok, _ := limiter.Admit("user:2"); !ok {
		t.Error("a saturated key must not affect other keys")
	}
}

func TestAdmitWindowResets(t *testing.T) {
	limiter := New(25*time.Millisecond, 1)
	defer limiter.Stop()

	limiter.Admit("user:1")
	if ok, _ := limiter.Admit("user:1"); ok {
		t.Fatal("expected denial within the window")
	}

	time.Sleep(40 * time.Millisecond)

	if ok, _ := limiter.Admit("user:1"); !ok {
		t.Error("expected a fresh window after expiry")
	}
}

func TestMiddlewareDeniesWith429(t *testing.T) {
	limiter := New(time.Minute, 1)
	defer limiter.Stop()

	handler := Middleware(limiter, func(r *http.Request) string { return "shared" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}

	var body struct {
		Error             string `json:"error"`
		Code              string `json:"code"`
		RetryAfterSeconds int    `json:"retryAfterSeconds"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid denial body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("expected code RATE_LIMITED, got %q", body.Code)
	}
	if body.RetryAfterSeconds < 1 {
		t.Errorf("expected retryAfterSeconds >= 1, got %d", body.RetryAfterSeconds)
	}
}
