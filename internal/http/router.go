package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"

	"github.com/MrJamesThe3rd/pocketbook/internal/http/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/matching"
	authmw "github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
)

// Handlers groups the versioned API handlers mounted under /api/v1.
type Handlers struct {
	Transactions *transaction.Handler
	Analytics    *analytics.Handler
	Import       *importcsv.Handler
	Rules        *matching.Handler
	Export       *export.Handler
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Options struct {
	Verifier       authmw.TokenVerifier
	AllowedOrigins []string

	// Nil limiters disable the corresponding limit.
	GlobalLimiter       *limiter.Limiter
	TransactionsLimiter *limiter.Limiter
	AnalyticsLimiter    *limiter.Limiter

	// Database failing makes /health return 503; Cache failing only marks
	// the service degraded since reads fall through to the ledger.
	Database Check
	Cache    Check
}

const healthTimeout = 2 * time.Second

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(authmw.RateLimit(opts.GlobalLimiter, "Too many requests from this IP, please try again later."))

	router.Get("/health", health(opts.Database, opts.Cache))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.Authenticate(opts.Verifier))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(authmw.RateLimit(opts.TransactionsLimiter, "Too many transaction requests, please try again later."))
			h.Transactions.Routes(r)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(authmw.RateLimit(opts.AnalyticsLimiter, "Too many analytics requests, please try again later."))
			h.Analytics.Routes(r)
		})

		r.Route("/categories", h.Transactions.CategoryRoutes)

		r.Route("/import", func(r chi.Router) {
			r.Use(authmw.RateLimit(opts.TransactionsLimiter, "Too many transaction requests, please try again later."))
			h.Import.Routes(r)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Rules.Routes(r)
		})

		r.Route("/export", h.Export.Routes)
	})

	return router
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func health(db, cache Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: probe(ctx, db), Cache: probe(ctx, cache)}
		status := http.StatusOK

		switch {
		case resp.Database == "down":
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		case resp.Cache == "down":
			resp.Status = "degraded"
		}

		respond.JSON(w, status, resp)
	}
}

func probe(ctx context.Context, check Check) string {
	if check == nil {
		return "disabled"
	}

	if err := check(ctx); err != nil {
		return "down"
	}

	return "ok"
}
