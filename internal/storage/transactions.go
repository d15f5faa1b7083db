package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/model"
)

const transactionColumns = `id, type, amount, category_id, date, memo, created_at, updated_at`

// scanTransaction reads one transaction row. category_id and memo are
// nullable in the schema and map to empty strings.
func scanTransaction(scan func(...any) error) (model.Transaction, error) {
	var (
		txn                    model.Transaction
		categoryID, memo       sql.NullString
		date, created, updated string
	)
	if err := scan(&txn.ID, &txn.Type, &txn.Amount, &categoryID, &date, &memo, &created, &updated); err != nil {
		return model.Transaction{}, err
	}
	txn.CategoryID = categoryID.String
	txn.Memo = memo.String
	txn.Date = parseTime(date)
	txn.CreatedAt = parseTime(created)
	txn.UpdatedAt = parseTime(updated)
	return txn, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetTransactions returns all transactions sorted by date descending.
func (s *SQLiteStore) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(txns))
	return txns, nil
}

// SaveTransaction inserts a new transaction with a generated id and
// timestamps.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, input TransactionInput) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	now := common.Now()
	txn := model.Transaction{
		ID:         common.NewID(),
		Type:       input.Type,
		Amount:     input.Amount,
		CategoryID: input.CategoryID,
		Date:       input.Date,
		Memo:       input.Memo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Type, txn.Amount, nullable(txn.CategoryID),
		formatTime(txn.Date), nullable(txn.Memo),
		formatTime(txn.CreatedAt), formatTime(txn.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	slog.Debug("saved transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return &txn, nil
}

// UpdateTransaction reads the current row, merges the patch, and writes
// the row back so omitted fields keep their previous value. Returns
// (nil, nil) when no transaction has the given id.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?`, id)
	txn, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}

	applyTransactionPatch(&txn, patch)
	txn.UpdatedAt = common.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount = ?, category_id = ?, date = ?, memo = ?, updated_at = ?
		WHERE id = ?`,
		txn.Type, txn.Amount, nullable(txn.CategoryID),
		formatTime(txn.Date), nullable(txn.Memo), formatTime(txn.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &txn, nil
}

// DeleteTransaction removes the row and reports whether anything was
// removed.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// RestoreTransaction upserts the record as-is, preserving its id and
// timestamps.
func (s *SQLiteStore) RestoreTransaction(ctx context.Context, txn model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			amount = excluded.amount,
			category_id = excluded.category_id,
			date = excluded.date,
			memo = excluded.memo,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		txn.ID, txn.Type, txn.Amount, nullable(txn.CategoryID),
		formatTime(txn.Date), nullable(txn.Memo),
		formatTime(txn.CreatedAt), formatTime(txn.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to restore transaction %s: %w", txn.ID, err)
	}
	return nil
}
