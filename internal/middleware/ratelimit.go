package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/atinyakov/apichallenges/internal/codec"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 30 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per challenger token. Requests without an
// X-CHALLENGER header are not limited.
type RateLimiter struct {
	rps       rate.Limit
	burst     int
	onLimited func()
	now       func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

// NewRateLimiter returns a limiter allowing rps requests per second with
// the given burst per token. It returns nil when rps or burst is not
// positive; a nil RateLimiter's Middleware lets everything through.
func NewRateLimiter(rps float64, burst int, onLimited func()) *RateLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		onLimited: onLimited,
		now:       time.Now,
		limiters:  make(map[string]*limiterEntry),
	}
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(ChallengerHeader)
		if token == "" || l.allow(token) {
			next.ServeHTTP(w, r)
			return
		}
		if l.onLimited != nil {
			l.onLimited()
		}
		w.Header().Set("Retry-After", "1")
		w.Header().Set("Content-Type", codec.MediaJSON)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write(codec.EncodeErrorsJSON(http.StatusText(http.StatusTooManyRequests)))
	})
}

func (l *RateLimiter) allow(token string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		for key, e := range l.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.limiters[token]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[token] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// tracked returns the number of tokens with a live limiter.
func (l *RateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
