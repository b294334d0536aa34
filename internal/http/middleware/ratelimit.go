package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
)

// NewLimiter builds an in-memory per-IP limiter allowing limit requests per period.
func NewLimiter(name string, limit int64, period time.Duration, trustForwardHeader bool) *limiter.Limiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "ratelimit:" + name,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})

	return limiter.New(store, limiter.Rate{Period: period, Limit: limit},
		limiter.WithTrustForwardHeader(trustForwardHeader))
}

// RateLimit rejects requests over the limiter's rate with 429. A nil limiter
// disables limiting.
func RateLimit(l *limiter.Limiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.GetIPKey(r)

			lctx, err := l.Get(r.Context(), key)
			if err != nil {
				slog.ErrorContext(r.Context(), "rate limit check failed", "ip", key, "error", err)
				respond.Error(w, http.StatusInternalServerError, "internal error")

				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				slog.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "path", r.URL.Path, "limit", lctx.Limit)
				respond.Error(w, http.StatusTooManyRequests, message)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
