// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	hits    map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

type bucket struct {
	n     int
	reset time.Time
}

// New returns a Limiter allowing limit hits per key every window and starts
// a sweeper that drops stale keys. Call Stop when done.
func New(limit int, window time.Duration) *Limiter {
	l := &Limiter{
		hits:   make(map[string]*bucket),
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go l.sweep(2 * window)
	return l
}

// Allow records a hit for key and reports whether it fits the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.hits[key]
	if !ok || !now.Before(b.reset) {
		l.hits[key] = &bucket{n: 1, reset: now.Add(l.window)}
		return true
	}
	if b.n >= l.limit {
		return false
	}
	b.n++
	return true
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
}

func (l *Limiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.mu.Lock()
			now := l.now()
			for k, b := range l.hits {
				if !now.Before(b.reset) {
					delete(l.hits, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the sweeper. Allow keeps working afterwards.
func (l *Limiter) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

// ClientIP returns the host part of r.RemoteAddr. The router runs
// middleware.RealIP first, so proxy headers are already folded in.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginLimiter throttles sign-in attempts per client IP and per login.
type LoginLimiter struct {
	byIP    *Limiter
	byLogin *Limiter
}

// NewLoginLimiterWithConfig builds a LoginLimiter from the two window settings.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, loginLimit int, loginWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipLimit, ipWindow),
		byLogin: New(loginLimit, loginWindow),
	}
}

// loginKey folds an email or nickname so both spellings share a window.
func loginKey(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// Check records an attempt for login from r. When the attempt is refused the
// second result is the message to show the client.
func (ll *LoginLimiter) Check(r *http.Request, login string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := loginKey(login); key != "" && !ll.byLogin.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetLogin clears the per-login window after a successful sign-in.
func (ll *LoginLimiter) ResetLogin(login string) {
	if key := loginKey(login); key != "" {
		ll.byLogin.Reset(key)
	}
}

// Stop ends both sweepers.
func (ll *LoginLimiter) Stop() {
	ll.byIP.Stop()
	ll.byLogin.Stop()
}
