package transaction

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	Begin(ctx context.Context) (LedgerTx, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error)
	CountTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) (int, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*Category, error)
}

// LedgerTx groups category resolution and the transaction write into one
// database transaction.
type LedgerTx interface {
	FindOrCreateCategory(ctx context.Context, name string) (*Category, error)
	GetTransactionForUpdate(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	Commit() error
	Rollback() error
}

// Invalidator drops a user's cached summaries. Implementations must not fail
// the caller: the ledger is already committed when it runs.
type Invalidator interface {
	InvalidateAll(ctx context.Context, userID uuid.UUID)
}

type Service struct {
	repo  Repository
	cache Invalidator
	now   func() time.Time
}

func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

type CreateParams struct {
	Amount      decimal.Decimal `validate:"-"`
	Type        Type            `validate:"required,oneof=income expense"`
	Description string          `validate:"max=255"`
	Category    string          `validate:"required,max=100"`
	Date        time.Time // zero means now
}

// UpdateParams is a partial update: nil fields keep their stored value.
type UpdateParams struct {
	Amount      *decimal.Decimal
	Type        *Type
	Description *string
	Category    *string
	Date        *time.Time
}

func (p UpdateParams) apply(tx *Transaction) {
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.Type != nil {
		tx.Type = *p.Type
	}

	if p.Description != nil {
		tx.Description = *p.Description
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}
}

type Order int

const (
	OrderDateDesc Order = iota
	OrderDateAsc
)

type ListFilter struct {
	Type      *Type
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	Search    *string
	Order     Order
	Limit     int // 0 means no limit
	Offset    int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page struct {
	Total        int
	TotalPages   int
	CurrentPage  int
	Transactions []*Transaction
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	tx, err := s.insert(ctx, ltx, userID, params, nil)
	if err != nil {
		return nil, err
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	s.invalidate(ctx, userID)

	return tx, nil
}

// CreateBatch inserts every row in a single ledger transaction and
// invalidates the user's summaries once.
func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i, p := range params {
		if err := validateCreate(p); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	categories := make(map[string]*Category)
	txs := make([]*Transaction, 0, len(params))

	for _, p := range params {
		tx, err := s.insert(ctx, ltx, userID, p, categories)
		if err != nil {
			return nil, err
		}

		txs = append(txs, tx)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	s.invalidate(ctx, userID)

	return txs, nil
}

// insert resolves the category first, then writes the row referencing it.
// seen memoizes categories across a batch and may be nil.
func (s *Service) insert(ctx context.Context, ltx LedgerTx, userID uuid.UUID, p CreateParams, seen map[string]*Category) (*Transaction, error) {
	cat, ok := seen[p.Category]
	if !ok {
		var err error

		cat, err = ltx.FindOrCreateCategory(ctx, p.Category)
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", p.Category, err)
		}

		if seen != nil {
			seen[p.Category] = cat
		}
	}

	date := p.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := &Transaction{
		UserID:      userID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		CategoryID:  cat.ID,
		Category:    cat,
		Date:        date,
	}
	if err := ltx.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if err := validateUpdate(params); err != nil {
		return nil, err
	}

	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	tx, err := ltx.GetTransactionForUpdate(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}

	if params.Category != nil {
		cat, err := ltx.FindOrCreateCategory(ctx, *params.Category)
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", *params.Category, err)
		}

		tx.CategoryID = cat.ID
		tx.Category = cat
	}

	params.apply(tx)

	if err := ltx.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	s.invalidate(ctx, userID)

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.invalidate(ctx, userID)

	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// List returns one page of the user's transactions, newest first.
// page is 1-based; limit is clamped to [1, MaxPageSize].
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = DefaultPageSize
	}

	limit = min(limit, MaxPageSize)
	page = min(page, math.MaxInt/limit)

	filter.Order = OrderDateDesc
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := s.repo.CountTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	txs, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &Page{
		Total:        total,
		TotalPages:   (total + limit - 1) / limit,
		CurrentPage:  page,
		Transactions: txs,
	}, nil
}

func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}

	// The ledger is committed; a caller hanging up must not cancel the delete.
	s.cache.InvalidateAll(context.WithoutCancel(ctx), userID)
}
