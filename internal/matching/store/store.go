package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// findMatchQuery treats patterns as literal text, so % and _ in a rule
// match only themselves.
const findMatchQuery = `
	SELECT category
	FROM category_rules
	WHERE user_id = $1 AND strpos(lower($2), lower(pattern)) > 0
	ORDER BY LENGTH(pattern) DESC, created_at DESC
	LIMIT 1
`

func (s *Store) FindMatch(ctx context.Context, userID uuid.UUID, description string) (string, error) {
	var category string

	err := s.db.QueryRowContext(ctx, findMatchQuery, userID, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

func (s *Store) CreateRule(ctx context.Context, rule *matching.Rule) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, rule.UserID, rule.Pattern, rule.Category).Scan(&rule.ID, &rule.CreatedAt); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context, userID uuid.UUID) ([]*matching.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, pattern, category, created_at
		FROM category_rules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule rows: %w", err)
	}

	return rules, nil
}
