// Package report computes derived summaries over in-memory transaction
// lists. Every function is pure: inputs are never mutated and nothing
// is persisted.
package report

import (
	"sort"

	"github.com/hamaji/kakeibo/internal/model"
)

// FilterByMonth selects transactions whose date falls in the given
// calendar year and month, using the date's own calendar fields.
func FilterByMonth(txns []model.Transaction, year, month int) []model.Transaction {
	var out []model.Transaction
	for _, txn := range txns {
		if txn.Date.Year() == year && int(txn.Date.Month()) == month {
			out = append(out, txn)
		}
	}
	return out
}

// FilterByYear selects transactions whose date falls in the given
// calendar year.
func FilterByYear(txns []model.Transaction, year int) []model.Transaction {
	var out []model.Transaction
	for _, txn := range txns {
		if txn.Date.Year() == year {
			out = append(out, txn)
		}
	}
	return out
}

// totals sums income and expense amounts over a transaction list.
func totals(txns []model.Transaction) (income, expense int64) {
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			income += txn.Amount
		case model.TypeExpense:
			expense += txn.Amount
		}
	}
	return income, expense
}

// changePercentage computes the period-over-period balance change.
// Returns nil when the previous balance is zero to avoid division by
// zero.
func changePercentage(balance, previousBalance int64) *float64 {
	if previousBalance == 0 {
		return nil
	}
	prev := previousBalance
	if prev < 0 {
		prev = -prev
	}
	pct := float64(balance-previousBalance) / float64(prev) * 100
	return &pct
}

// MonthlySummary aggregates the given month. When previous is non-nil
// it is treated as the previous period's transaction list and the
// balance delta is computed from it.
func MonthlySummary(txns []model.Transaction, year, month int, previous []model.Transaction) model.MonthlySummary {
	income, expense := totals(FilterByMonth(txns, year, month))
	summary := model.MonthlySummary{
		Year:    year,
		Month:   month,
		Income:  income,
		Expense: expense,
		Balance: income - expense,
	}

	if previous != nil {
		prevIncome, prevExpense := totals(previous)
		prevBalance := prevIncome - prevExpense
		summary.PreviousBalance = &prevBalance
		summary.ChangePercentage = changePercentage(summary.Balance, prevBalance)
	}
	return summary
}

// YearlySummary aggregates the given year with the same shape and
// delta logic as MonthlySummary.
func YearlySummary(txns []model.Transaction, year int, previous []model.Transaction) model.YearlySummary {
	income, expense := totals(FilterByYear(txns, year))
	summary := model.YearlySummary{
		Year:    year,
		Income:  income,
		Expense: expense,
		Balance: income - expense,
	}

	if previous != nil {
		prevIncome, prevExpense := totals(previous)
		prevBalance := prevIncome - prevExpense
		summary.PreviousBalance = &prevBalance
		summary.ChangePercentage = changePercentage(summary.Balance, prevBalance)
	}
	return summary
}

// CategoryBreakdown computes the per-category share of the total for
// one transaction type, sorted by amount descending. Transactions with
// a missing or dangling category reference contribute to the total but
// are excluded from every slice, and categories whose transactions sum
// to zero are omitted. Returns an empty list when the total is zero.
func CategoryBreakdown(txns []model.Transaction, cats []model.Category, typ model.TransactionType) []model.CategoryExpense {
	byID := make(map[string]model.Category, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = cat
	}

	var total int64
	amounts := make(map[string]int64)
	for _, txn := range txns {
		if txn.Type != typ {
			continue
		}
		total += txn.Amount
		if _, ok := byID[txn.CategoryID]; ok {
			amounts[txn.CategoryID] += txn.Amount
		}
	}
	if total == 0 {
		return []model.CategoryExpense{}
	}

	out := make([]model.CategoryExpense, 0, len(amounts))
	for id, amount := range amounts {
		if amount == 0 {
			continue
		}
		cat := byID[id]
		out = append(out, model.CategoryExpense{
			CategoryID:    id,
			CategoryName:  cat.Name,
			CategoryIcon:  cat.Icon,
			CategoryColor: cat.Color,
			Amount:        amount,
			Percentage:    float64(amount) / float64(total) * 100,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

// MonthlyBalances computes the income, expense, and balance for each of
// the twelve calendar months of a year, in month order. The result
// always has exactly twelve entries regardless of data sparsity.
func MonthlyBalances(txns []model.Transaction, year int) []model.MonthlyBalance {
	out := make([]model.MonthlyBalance, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, txn := range txns {
		if txn.Date.Year() != year {
			continue
		}
		m := int(txn.Date.Month()) - 1
		switch txn.Type {
		case model.TypeIncome:
			out[m].Income += txn.Amount
		case model.TypeExpense:
			out[m].Expense += txn.Amount
		}
	}
	for i := range out {
		out[i].Balance = out[i].Income - out[i].Expense
	}
	return out
}
