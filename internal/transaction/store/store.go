package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a joined transaction row.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx      transaction.Transaction
		cat     transaction.Category
		typeStr string
	)

	if err := s.Scan(
		&tx.ID, &tx.UserID, &typeStr, &tx.Amount, &tx.Description, &tx.Date,
		&tx.CreatedAt, &tx.UpdatedAt,
		&cat.ID, &cat.Name, &cat.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.CategoryID = cat.ID
	tx.Category = &cat

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.user_id, t.type, t.amount, t.description, t.date, t.created_at, t.updated_at,
	c.id, c.name, c.created_at
`

const fromTransactions = `
	FROM transactions t
	JOIN categories c ON t.category_id = c.id
`

func getTransaction(ctx context.Context, q querier, userID, id uuid.UUID, suffix string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions +
		`WHERE t.id = $1 AND t.user_id = $2` + suffix

	tx, err := scanTransaction(q.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, s.db, userID, id, "")
}

// whereClause builds the shared filter for list and count queries.
func whereClause(userID uuid.UUID, filter transaction.ListFilter) (string, []any) {
	conds := []string{"t.user_id = $1"}
	args := []any{userID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != nil {
		add("t.type = $%d", string(*filter.Type))
	}

	if filter.Category != nil {
		add("c.name = $%d", *filter.Category)
	}

	if filter.StartDate != nil {
		add("t.date >= $%d", *filter.StartDate)
	}

	if filter.EndDate != nil {
		add("t.date <= $%d", *filter.EndDate)
	}

	if filter.Search != nil && *filter.Search != "" {
		add("t.description ILIKE $%d", "%"+escapeLike(*filter.Search)+"%")
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	where, args := whereClause(userID, filter)

	query := `SELECT ` + selectTransactionColumns + fromTransactions + where

	if filter.Order == transaction.OrderDateAsc {
		query += " ORDER BY t.date ASC, t.created_at ASC"
	} else {
		query += " ORDER BY t.date DESC, t.created_at DESC"
	}

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) CountTransactions(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) (int, error) {
	where, args := whereClause(userID, filter)

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+fromTransactions+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

// DeleteTransaction removes the row only when it belongs to userID.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*transaction.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*transaction.Category

	for rows.Next() {
		var c transaction.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cats, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (transaction.LedgerTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &ledgerTx{tx: dbTx}, nil
}

func (l *ledgerTx) Commit() error { return l.tx.Commit() }

// Rollback is a no-op after a successful Commit.
func (l *ledgerTx) Rollback() error {
	if err := l.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

// FindOrCreateCategory upserts by exact name so concurrent writers converge on one row.
func (l *ledgerTx) FindOrCreateCategory(ctx context.Context, name string) (*transaction.Category, error) {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`

	var c transaction.Category
	if err := l.tx.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("upserting category: %w", err)
	}

	return &c, nil
}

func (l *ledgerTx) GetTransactionForUpdate(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, l.tx, userID, id, " FOR UPDATE OF t")
}

func (l *ledgerTx) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, description, category_id, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := l.tx.QueryRowContext(ctx, query,
		tx.UserID,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		tx.CategoryID,
		tx.Date,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (l *ledgerTx) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, description = $3, category_id = $4, date = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at
	`

	err := l.tx.QueryRowContext(ctx, query,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		tx.CategoryID,
		tx.Date,
		tx.ID,
		tx.UserID,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}
