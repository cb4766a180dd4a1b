package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type Options struct {
	TrustHeaders bool
	Interval     time.Duration
	MaxBurst     int
	CacheSize    int
	CacheTTL     time.Duration
}

type OptionFunc func(opts *Options)

func WithTrustHeaders(trust bool) OptionFunc {
	return func(opts *Options) {
		opts.TrustHeaders = trust
	}
}

// WithLimit allows one request per interval per client, with bursts of maxBurst requests.
func WithLimit(interval time.Duration, maxBurst int) OptionFunc {
	return func(opts *Options) {
		opts.Interval = interval
		opts.MaxBurst = maxBurst
	}
}

func WithCache(size int, ttl time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.CacheSize = size
		opts.CacheTTL = ttl
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		TrustHeaders: false,
		Interval:     100 * time.Millisecond,
		MaxBurst:     20,
		CacheSize:    1024,
		CacheTTL:     10 * time.Minute,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// Middleware throttles requests per client address.
func Middleware(funcs ...OptionFunc) func(http.Handler) http.Handler {
	opts := NewOptions(funcs...)

	limiters := expirable.NewLRU[string, *rate.Limiter](opts.CacheSize, nil, opts.CacheTTL)

	limiterFor := func(clientAddr string) *rate.Limiter {
		if limiter, exists := limiters.Get(clientAddr); exists {
			return limiter
		}

		limiter := rate.NewLimiter(rate.Every(opts.Interval), opts.MaxBurst)
		limiters.Add(clientAddr, limiter)

		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := limiterFor(clientAddress(r, opts.TrustHeaders))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(opts.MaxBurst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Floor(limiter.Tokens()))))

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddress(r *http.Request, trustHeaders bool) string {
	if trustHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}

		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
