package analytics

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

func ComputeOverview(txs []*transaction.Transaction) Overview {
	var o Overview

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			o.Income = o.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			o.Expense = o.Expense.Add(tx.Amount)
		}
	}

	o.Balance = o.Income.Sub(o.Expense)

	return o
}

// ComputeCategoryBreakdown totals expenses per category, largest first.
// Ties are broken by category name so the order is stable.
func ComputeCategoryBreakdown(txs []*transaction.Transaction) []CategoryTotal {
	index := make(map[uuid.UUID]int)
	totals := make([]CategoryTotal, 0)

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense {
			continue
		}

		i, ok := index[tx.CategoryID]
		if !ok {
			i = len(totals)
			index[tx.CategoryID] = i
			totals = append(totals, CategoryTotal{Category: tx.CategoryName()})
		}

		totals[i].Amount = totals[i].Amount.Add(tx.Amount)
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return totals
}

// ComputeMonthlyTrend groups txs by calendar month in UTC. Only months with at
// least one transaction appear, in order of first occurrence; a date-ascending
// input therefore yields chronological output.
func ComputeMonthlyTrend(txs []*transaction.Transaction) []MonthTotal {
	type month struct {
		year  int
		month int
	}

	index := make(map[month]int)
	totals := make([]MonthTotal, 0)

	for _, tx := range txs {
		d := tx.Date.UTC()
		key := month{d.Year(), int(d.Month())}

		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, MonthTotal{
				Year:    d.Year(),
				Month:   d.Month(),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			})
		}

		switch tx.Type {
		case transaction.TypeIncome:
			totals[i].Income = totals[i].Income.Add(tx.Amount)
		case transaction.TypeExpense:
			totals[i].Expense = totals[i].Expense.Add(tx.Amount)
		}
	}

	return totals
}
