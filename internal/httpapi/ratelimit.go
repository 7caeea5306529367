package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how fast commands reach the lamp. The limit is
// global rather than per client: the lamp's firmware drops writes when
// flooded no matter who sends them.
type RateLimitConfig struct {
	RequestsPerMin int `yaml:"requests_per_min"`
	Burst          int `yaml:"burst"`
}

type limiter struct {
	rl *rate.Limiter // nil when disabled
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.RequestsPerMin <= 0 {
		return &limiter{}
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	// requestsPerMin spread over 60 seconds
	return &limiter{rl: rate.NewLimiter(rate.Limit(cfg.RequestsPerMin)/60.0, burst)}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.rl != nil && !l.rl.Allow() {
			writeKind(w, kindRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
