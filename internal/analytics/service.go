package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/cache"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=analytics
type Ledger interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	ledger Ledger
	cache  cache.SummaryCache
	ttl    time.Duration
}

// NewService builds the read-through summary service. A nil cache disables
// caching and a non-positive ttl falls back to cache.DefaultTTL.
func NewService(ledger Ledger, c cache.SummaryCache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Noop{}
	}

	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &Service{ledger: ledger, cache: c, ttl: ttl}
}

func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (Overview, error) {
	return readThrough(ctx, s, userID, cache.KindOverview, func(ctx context.Context) (Overview, error) {
		txs, err := s.ledger.ListTransactions(ctx, userID, transaction.ListFilter{})
		if err != nil {
			return Overview{}, fmt.Errorf("scanning ledger for overview: %w", err)
		}

		return ComputeOverview(txs), nil
	})
}

func (s *Service) CategoryBreakdown(ctx context.Context, userID uuid.UUID) ([]CategoryTotal, error) {
	return readThrough(ctx, s, userID, cache.KindCategory, func(ctx context.Context) ([]CategoryTotal, error) {
		filter := transaction.ListFilter{Type: new(transaction.TypeExpense)}

		txs, err := s.ledger.ListTransactions(ctx, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger for category breakdown: %w", err)
		}

		return ComputeCategoryBreakdown(txs), nil
	})
}

// MonthlyTrend is always computed from the ledger and never cached.
func (s *Service) MonthlyTrend(ctx context.Context, userID uuid.UUID) ([]MonthTotal, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, transaction.ListFilter{Order: transaction.OrderDateAsc})
	if err != nil {
		return nil, fmt.Errorf("scanning ledger for monthly trend: %w", err)
	}

	return ComputeMonthlyTrend(txs), nil
}

// readThrough serves kind from the cache, falling back to compute on a miss or
// an entry that no longer decodes. Only successful results are stored.
func readThrough[T any](ctx context.Context, s *Service, userID uuid.UUID, kind cache.Kind, compute func(context.Context) (T, error)) (T, error) {
	if b, ok := s.cache.Get(ctx, userID, kind); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}

		slog.WarnContext(ctx, "Discarding undecodable cache entry", "key", cache.Key(userID, kind))
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "Encoding summary for cache", "key", cache.Key(userID, kind), "error", err)
		return v, nil
	}

	s.cache.Set(ctx, userID, kind, b, s.ttl)

	return v, nil
}
