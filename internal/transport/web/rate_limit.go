package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorIdleTTL     = 3 * time.Minute
	visitorSweepPeriod = 5 * time.Minute
	retryAfterSeconds  = 1
)

// RateLimiter keeps one token bucket per client / Garde un seau de jetons par client
type RateLimiter struct {
	visitors map[string]*visitor // keyed by hashed client IP
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
	cancel   context.CancelFunc
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its idle-visitor sweep / Crée un limiteur et démarre le nettoyage
//
// The sweep goroutine stops when ctx is done or Stop is called.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	sweepCtx, cancel := context.WithCancel(ctx)

	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		cancel:   cancel,
	}

	go rl.sweep(sweepCtx)

	return rl
}

// Stop ends the sweep goroutine / Arrête la goroutine de nettoyage
func (rl *RateLimiter) Stop() {
	rl.cancel()
}

// Allow reports whether key may make one more request now / Indique si key peut faire une requête
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(visitorSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.removeIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) removeIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorIdleTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// getIPWithTrustedProxies extracts the client IP with trusted proxy validation.
// Proxy headers are only honoured when RemoteAddr is in trustedProxies.
// X-Forwarded-For format is "client, proxy1, proxy2"; the first entry is the client.
func getIPWithTrustedProxies(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		remoteIP = r.RemoteAddr
	}

	if len(trustedProxies) == 0 || !slices.Contains(trustedProxies, remoteIP) {
		return remoteIP
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP, _, _ := strings.Cut(forwarded, ",")
		clientIP = strings.TrimSpace(clientIP)
		if net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}

	// X-Real-IP is set by nginx-style proxies
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if net.ParseIP(realIP) != nil {
			return realIP
		}
	}

	return remoteIP
}

// hashIP keeps raw client addresses out of memory / Évite de garder les adresses IP en clair
func hashIP(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])
}

// RateLimit applies the per-client limit to every request / Applique la limite par client à chaque requête
func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := getIPWithTrustedProxies(r, mw.conf.Security.TrustedProxies)
		if !mw.limiter.Allow(hashIP(ip)) {
			mw.metrics.RecordRateLimitHit(routeLabel(r))
			sendRateLimitError(w, "Too many requests. Please try again later.", retryAfterSeconds)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimitErrorResponse is the 429 body / Corps de la réponse 429
type RateLimitErrorResponse struct {
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	Code       int       `json:"code"`
	RetryAfter int       `json:"retry_after_seconds"`
	Timestamp  time.Time `json:"timestamp"`
}

func sendRateLimitError(w http.ResponseWriter, message string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(RateLimitErrorResponse{
		Error:      "rate_limit_exceeded",
		Message:    message,
		Code:       http.StatusTooManyRequests,
		RetryAfter: retryAfter,
		Timestamp:  time.Now().UTC(),
	})
}
