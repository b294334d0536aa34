package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is shared by every transaction that references its name.
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Transaction represents a financial transaction owned by a single user.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Amount      decimal.Decimal
	Description string
	CategoryID  uuid.UUID
	Category    *Category // Loaded via JOIN
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CategoryName returns the joined category name, or "" when it was not loaded.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}

	return t.Category.Name
}
