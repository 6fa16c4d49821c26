package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRateLimitClients bounds how many client windows are tracked at once.
// The least recently seen client is evicted first.
const DefaultRateLimitClients = 4096

type window struct {
	start time.Time
	count int
}

// RateLimiter admits at most limit requests per client within each fixed window.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	clients *lru.Cache[string, *window]
	now     func() time.Time
}

// NewRateLimiter builds a limiter. A non-positive limit disables limiting.
func NewRateLimiter(limit int, period time.Duration, maxClients int) (*RateLimiter, error) {
	if maxClients <= 0 {
		maxClients = DefaultRateLimitClients
	}
	clients, err := lru.New[string, *window](maxClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{limit: limit, period: period, clients: clients, now: time.Now}, nil
}

// Allow records an attempt by key and reports whether it is within the limit,
// plus how long until the current window resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients.Get(key)
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.clients.Add(key, w)
	}
	w.count++
	retry := w.start.Add(l.period).Sub(now)
	return w.count <= l.limit, retry
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
// Mount it after chi's RealIP so proxies are accounted for.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second)/time.Second)))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
