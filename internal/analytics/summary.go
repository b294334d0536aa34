package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Overview struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthTotal holds the income and expense totals of one calendar month (UTC).
type MonthTotal struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Key formats the month as "2024-1", without zero padding.
func (m MonthTotal) Key() string {
	return fmt.Sprintf("%d-%d", m.Year, int(m.Month))
}
