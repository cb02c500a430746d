package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window request counter per key. It is process-local
// and in-memory: good enough for a single instance, swap the backing map
// for a shared counter when scaling out.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*window

	windowLen time.Duration
	max       int

	stop chan struct{}
}

func New(windowLen time.Duration, max int) *Limiter {
	l := &Limiter{
		entries:   make(map[string]*window),
		windowLen: windowLen,
		max:       max,
		stop:      make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Admit reports whether the key may proceed. When denied it returns how
// long until the key's window resets.
func (l *Limiter) Admit(key string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.start) >= l.windowLen {
		l.entries[key] = &window{start: now, count: 1}
		return true, 0
	}

	if entry.count < l.max {
		entry.count++
		return true, 0
	}

	return false, l.windowLen - now.Sub(entry.start)
}

// sweep periodically evicts keys whose window already expired so the map
// does not grow with every client ever seen.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.windowLen)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for key, entry := range l.entries {
				if now.Sub(entry.start) >= l.windowLen {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) Stop() {
	close(l.stop)
}

// Middleware throttles requests keyed by keyFn, answering denials with a
// 429 JSON body and a Retry-After header.
func Middleware(limiter *Limiter, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.Admit(keyFn(r))
			if !ok {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":             "Too many requests, slow down",
					"code":              "RATE_LIMITED",
					"retryAfterSeconds": seconds,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
