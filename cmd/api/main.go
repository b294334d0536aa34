package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/cache"
	"github.com/MrJamesThe3rd/pocketbook/internal/config"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	apiHttp "github.com/MrJamesThe3rd/pocketbook/internal/http"
	analyticsHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/analytics"
	exportHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	txHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pocketbook/internal/matching/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocketbook/internal/transaction/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(cfg.NewLogger(os.Stdout))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	db, err := database.New(ctx, cfg.ConnectionString(), database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	summaries, closeCache := cache.Open(ctx, cfg.Cache.Driver, cfg.Redis.URL, cfg.Redis.OpTimeout)
	defer closeCache()

	ledger := txStore.New(db)

	var (
		transactionService = transaction.NewService(ledger, summaries)
		analyticsService   = analytics.NewService(ledger, summaries, cfg.Cache.TTL)
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService()
		exportService      = export.NewService(ledger)
	)

	handlers := apiHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService),
		Analytics:    analyticsHandler.NewHandler(analyticsService),
		Import:       importHandler.NewHandler(importService, transactionService, matchingService, cfg.Server.MaxUploadBytes),
		Rules:        matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
	}

	opts := apiHttp.Options{
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Database:       db.PingContext,
		Cache:          summaries.Ping,
	}

	if cfg.RateLimit.Enabled {
		rl := cfg.RateLimit
		opts.GlobalLimiter = middleware.NewLimiter("global", rl.GlobalLimit, rl.GlobalPeriod, rl.TrustForwardHeader)
		opts.TransactionsLimiter = middleware.NewLimiter("transactions", rl.TransactionsLimit, rl.TransactionsPeriod, rl.TrustForwardHeader)
		opts.AnalyticsLimiter = middleware.NewLimiter("analytics", rl.AnalyticsLimit, rl.AnalyticsPeriod, rl.TrustForwardHeader)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      apiHttp.New(handlers, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr, "cache", cfg.Cache.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
