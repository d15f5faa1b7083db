package model

// MonthlySummary holds the aggregated totals for one calendar month.
// PreviousBalance and ChangePercentage are nil when no previous period
// was supplied, and ChangePercentage is additionally nil when the
// previous balance is zero.
type MonthlySummary struct {
	PreviousBalance  *int64   `json:"previousBalance,omitempty"`
	ChangePercentage *float64 `json:"changePercentage,omitempty"`
	Year             int      `json:"year"`
	Month            int      `json:"month"`
	Income           int64    `json:"income"`
	Expense          int64    `json:"expense"`
	Balance          int64    `json:"balance"`
}

// YearlySummary holds the aggregated totals for one calendar year.
type YearlySummary struct {
	PreviousBalance  *int64   `json:"previousBalance,omitempty"`
	ChangePercentage *float64 `json:"changePercentage,omitempty"`
	Year             int      `json:"year"`
	Income           int64    `json:"income"`
	Expense          int64    `json:"expense"`
	Balance          int64    `json:"balance"`
}

// CategoryExpense is one slice of a per-category breakdown.
type CategoryExpense struct {
	CategoryID    string  `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	CategoryIcon  string  `json:"categoryIcon"`
	CategoryColor string  `json:"categoryColor"`
	Amount        int64   `json:"amount"`
	Percentage    float64 `json:"percentage"`
}

// MonthlyBalance is one point of a twelve-month time series.
type MonthlyBalance struct {
	Month   int   `json:"month"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}
