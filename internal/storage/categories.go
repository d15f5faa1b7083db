package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/model"
)

const categoryColumns = `id, name, icon, color, is_default, display_order, type, custom_name, created_at, updated_at`

// scanCategory reads one category row.
func scanCategory(scan func(...any) error) (model.Category, error) {
	var (
		cat              model.Category
		customName       sql.NullString
		created, updated string
	)
	if err := scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &cat.IsDefault,
		&cat.Order, &cat.Type, &customName, &created, &updated); err != nil {
		return model.Category{}, err
	}
	cat.CustomName = customName.String
	cat.CreatedAt = parseTime(created)
	cat.UpdatedAt = parseTime(updated)
	return cat, nil
}

// GetCategories returns all categories sorted by display order ascending.
func (s *SQLiteStore) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY display_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(cats))
	return cats, nil
}

// SaveCategory inserts a new category with a generated id and timestamps.
func (s *SQLiteStore) SaveCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	now := common.Now()
	cat := model.Category{
		ID:        common.NewID(),
		Name:      input.Name,
		Icon:      input.Icon,
		Color:     input.Color,
		Type:      input.Type,
		Order:     input.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Icon, cat.Color, cat.IsDefault, cat.Order,
		cat.Type, nullable(cat.CustomName), formatTime(cat.CreatedAt), formatTime(cat.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	slog.Debug("saved category", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return &cat, nil
}

// UpdateCategory reads the current row, merges the patch, and writes it
// back. The category type is immutable and never updated. Returns
// (nil, nil) when no category has the given id.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id)
	cat, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read category: %w", err)
	}

	applyCategoryPatch(&cat, patch)
	cat.UpdatedAt = common.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, icon = ?, color = ?, display_order = ?, custom_name = ?, updated_at = ?
		WHERE id = ?`,
		cat.Name, cat.Icon, cat.Color, cat.Order,
		nullable(cat.CustomName), formatTime(cat.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &cat, nil
}

// DeleteCategory removes the row and reports whether anything was
// removed. Default categories are refused with ErrDefaultCategory.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	var isDefault bool
	err := s.db.QueryRowContext(ctx, `SELECT is_default FROM categories WHERE id = ?`, id).Scan(&isDefault)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read category: %w", err)
	}
	if isDefault {
		return false, fmt.Errorf("%w: %s", ErrDefaultCategory, id)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReorderCategories applies new display orders to the matching rows,
// bumping updated_at only on rows actually touched.
func (s *SQLiteStore) ReorderCategories(ctx context.Context, orders []model.CategoryOrder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(common.Now())
	for _, o := range orders {
		if _, err := tx.ExecContext(ctx, `
			UPDATE categories
			SET display_order = ?, updated_at = ?
			WHERE id = ? AND display_order != ?`,
			o.Order, now, o.ID, o.Order); err != nil {
			return fmt.Errorf("failed to reorder category %s: %w", o.ID, err)
		}
	}

	return tx.Commit()
}

// RestoreCategory upserts the record as-is, preserving its id and
// timestamps.
func (s *SQLiteStore) RestoreCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(cat.ID, "id"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			is_default = excluded.is_default,
			display_order = excluded.display_order,
			type = excluded.type,
			custom_name = excluded.custom_name,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		cat.ID, cat.Name, cat.Icon, cat.Color, cat.IsDefault, cat.Order,
		cat.Type, nullable(cat.CustomName), formatTime(cat.CreatedAt), formatTime(cat.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to restore category %s: %w", cat.ID, err)
	}
	return nil
}
