package model

import "time"

// Category is a named bucket for transactions, scoped to exactly one
// transaction type. The type is fixed at creation.
type Category struct {
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Icon       string          `json:"icon"`
	Color      string          `json:"color"`
	Type       TransactionType `json:"type"`
	CustomName string          `json:"customName,omitempty"`
	Order      int             `json:"order"`
	IsDefault  bool            `json:"isDefault"`
}

// CategoryPatch carries the fields of a partial category update.
// Nil fields are left unchanged. Type is deliberately absent: a
// category's type is immutable after creation.
type CategoryPatch struct {
	Name       *string
	Icon       *string
	Color      *string
	CustomName *string
	Order      *int
}

// CategoryOrder pairs a category ID with its new display order.
type CategoryOrder struct {
	ID    string
	Order int
}
