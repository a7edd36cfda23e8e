package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64       // Rate of token replenishment
	BurstSize         int           // Maximum burst size (bucket capacity)
	CleanupInterval   time.Duration // How often to clean up idle clients
	ClientExpiration  time.Duration // How long to keep inactive client limiters
	MaxClients        int           // Maximum number of tracked clients
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		CleanupInterval:   5 * time.Minute,
		ClientExpiration:  10 * time.Minute,
		MaxClients:        100000,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitStats is a point-in-time view of a RateLimiter
type RateLimitStats struct {
	ActiveClients     int     `json:"activeClients"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	BurstSize         int     `json:"burstSize"`
}

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	config   RateLimitConfig
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	logger   logging.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to release it.
func NewRateLimiter(config *RateLimitConfig, logger logging.Logger) *RateLimiter {
	cfg := *DefaultRateLimitConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = int(math.Ceil(cfg.RequestsPerSecond))
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	rl := &RateLimiter{
		config:   cfg,
		clients:  make(map[string]*clientLimiter),
		logger:   logger.With(logging.Component("ratelimit")),
		stopChan: make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Allow reports whether a request from clientID may proceed. New clients
// are denied once MaxClients limiters are tracked.
func (rl *RateLimiter) Allow(clientID string) bool {
	now := time.Now()
	cl := rl.getClient(clientID, now)
	if cl == nil {
		return false
	}
	return cl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) getClient(clientID string, now time.Time) *clientLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.clients[clientID]; ok {
		cl.lastSeen = now
		return cl
	}

	if rl.config.MaxClients > 0 && len(rl.clients) >= rl.config.MaxClients {
		rl.logger.Warn("rate limiter at capacity, rejecting new client",
			logging.Int("max_clients", rl.config.MaxClients),
			logging.String("client", clientID))
		return nil
	}

	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
		lastSeen: now,
	}
	rl.clients[clientID] = cl
	return cl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.cleanup(now)
		case <-rl.stopChan:
			return
		}
	}
}

// cleanup drops limiters idle for longer than ClientExpiration
func (rl *RateLimiter) cleanup(now time.Time) int {
	rl.mu.Lock()
	removed := 0
	for id, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.config.ClientExpiration {
			delete(rl.clients, id)
			removed++
		}
	}
	rl.mu.Unlock()

	if removed > 0 {
		rl.logger.Debug("rate limiter cleanup", logging.Count(removed))
	}
	return removed
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// Stats returns current rate limiter statistics
func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return RateLimitStats{
		ActiveClients:     len(rl.clients),
		RequestsPerSecond: rl.config.RequestsPerSecond,
		BurstSize:         rl.config.BurstSize,
	}
}

// retryAfter is the whole number of seconds until one token is available
func (rl *RateLimiter) retryAfter() int {
	if rl.config.RequestsPerSecond <= 0 {
		return 1
	}
	secs := int(math.Ceil(1 / rl.config.RequestsPerSecond))
	return max(secs, 1)
}

// ClientIDFunc is a function that extracts a client identifier from a request
type ClientIDFunc func(*http.Request) string

// RateLimit creates middleware that applies rate limiting per client.
// onLimited, when set, is called for every rejected request.
func RateLimit(limiter *RateLimiter, getClientID ClientIDFunc, onLimited func(r *http.Request, clientID string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := getClientID(r)

			if !limiter.Allow(clientID) {
				limiter.logger.Warn("rate limit exceeded",
					logging.String("client", clientID),
					logging.Path(r.URL.Path),
					logging.RequestID(GetRequestID(r)))

				if onLimited != nil {
					onLimited(r, clientID)
				}

				w.Header().Set("Retry-After", strconv.Itoa(limiter.retryAfter()))
				w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(limiter.config.RequestsPerSecond, 'f', -1, 64))
				WriteError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
