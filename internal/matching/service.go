// Package matching learns which category a transaction description belongs to.
package matching

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const (
	maxPatternLen  = 255
	maxCategoryLen = 100
)

// Rule maps descriptions containing Pattern (case-insensitive) to Category.
type Rule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Pattern   string
	Category  string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, userID uuid.UUID, description string) (string, error)
	CreateRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest pattern matching description,
// or "" when no rule matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, userID, description)
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern, category string) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	switch {
	case pattern == "":
		return nil, &transaction.ValidationError{Field: "pattern", Reason: "is required"}
	case utf8.RuneCountInString(pattern) > maxPatternLen:
		return nil, &transaction.ValidationError{Field: "pattern", Reason: "must be at most 255 characters"}
	case category == "":
		return nil, &transaction.ValidationError{Field: "category", Reason: "is required"}
	case utf8.RuneCountInString(category) > maxCategoryLen:
		return nil, &transaction.ValidationError{Field: "category", Reason: "must be at most 100 characters"}
	}

	rule := &Rule{UserID: userID, Pattern: pattern, Category: category}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) Rules(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}

// Categorize replaces placeholder categories with learned ones in place and
// reports how many rows changed. Lookup failures leave the row untouched.
func (s *Service) Categorize(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams, placeholder string) int {
	var n int

	for i, p := range params {
		if p.Category != placeholder {
			continue
		}

		suggested, err := s.Suggest(ctx, userID, p.Description)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.WarnContext(ctx, "category suggestion failed", "description", p.Description, "error", err)
			}

			continue
		}

		if suggested == "" {
			continue
		}

		params[i].Category = suggested
		n++
	}

	return n
}
