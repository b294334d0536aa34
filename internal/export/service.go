// Package export writes a user's ledger in the layout the CSV importer reads.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// Header is the first CSV row; csvfile.Parser accepts it unchanged.
var Header = []string{"date", "type", "amount", "category", "description"}

type Ledger interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// WriteCSV streams the matching transactions oldest first and returns how
// many rows were written. Paging fields on filter are ignored.
func (s *Service) WriteCSV(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter, w io.Writer) (int, error) {
	filter.Order = transaction.OrderDateAsc
	filter.Limit = 0
	filter.Offset = 0

	txs, err := s.ledger.ListTransactions(ctx, userID, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		if err := cw.Write(record(tx)); err != nil {
			return 0, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(txs), nil
}

func record(tx *transaction.Transaction) []string {
	return []string{
		formatDate(tx.Date),
		string(tx.Type),
		tx.Amount.StringFixed(2),
		tx.CategoryName(),
		tx.Description,
	}
}

// formatDate keeps midnight UTC dates short.
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}

	return t.Format(time.RFC3339)
}
