package view

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// txFields are the huh bindings shared by the add and edit forms.
type txFields struct {
	Type        string
	Amount      string
	Category    string
	Description string
	Date        string
}

func newTxFields() *txFields {
	return &txFields{Type: string(transaction.TypeExpense), Date: FormatDate(time.Now())}
}

func fieldsFrom(tx *transaction.Transaction) *txFields {
	return &txFields{
		Type:        string(tx.Type),
		Amount:      FormatAmount(tx.Amount),
		Category:    tx.CategoryName(),
		Description: tx.Description,
		Date:        FormatDate(tx.Date),
	}
}

func (f *txFields) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&f.Type),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&f.Amount).
				Validate(func(s string) error {
					_, err := parseAmountInput(s)
					return err
				}),

			huh.NewInput().
				Title("Category").
				Value(&f.Category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Title("Description").
				Value(&f.Description),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.Date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, s)
					if err != nil {
						return errors.New("date must be YYYY-MM-DD")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func parseAmountInput(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")))
	if err != nil {
		return decimal.Zero, errors.New("amount must be a number")
	}

	if d.IsNegative() {
		return decimal.Zero, errors.New("amount cannot be negative")
	}

	return d, nil
}

// createParams assumes the form validators already passed.
func (f *txFields) createParams() transaction.CreateParams {
	amount, _ := parseAmountInput(f.Amount)
	date, _ := time.Parse(time.DateOnly, f.Date)

	return transaction.CreateParams{
		Amount:      amount,
		Type:        transaction.Type(f.Type),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Date:        date,
	}
}

// updateParams sends every field so the stored row matches the form exactly.
func (f *txFields) updateParams() transaction.UpdateParams {
	p := f.createParams()

	return transaction.UpdateParams{
		Amount:      &p.Amount,
		Type:        &p.Type,
		Description: &p.Description,
		Category:    &p.Category,
		Date:        &p.Date,
	}
}
