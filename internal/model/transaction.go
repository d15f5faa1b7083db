// Package model defines the domain entities for the kakeibo ledger.
package model

import "time"

// TransactionType indicates whether a transaction is money coming in or going out.
type TransactionType string

const (
	// TypeIncome represents money received.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money spent.
	TypeExpense TransactionType = "expense"
)

// IsValid reports whether the transaction type is a known value.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a single money movement in the ledger.
// Amounts are integer yen; there are no fractional amounts.
type Transaction struct {
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	ID         string          `json:"id"`
	Type       TransactionType `json:"type"`
	CategoryID string          `json:"categoryId,omitempty"`
	Memo       string          `json:"memo,omitempty"`
	Amount     int64           `json:"amount"`
}

// TransactionPatch carries the fields of a partial transaction update.
// Nil fields are left unchanged.
type TransactionPatch struct {
	Type       *TransactionType
	Amount     *int64
	CategoryID *string
	Date       *time.Time
	Memo       *string
}
