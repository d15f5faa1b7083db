package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamaji/kakeibo/internal/model"
)

// createTestSQLiteStore creates a migrated, seeded store on a temp file.
func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Initialize(ctx))
	return store
}

func TestSQLiteStore_MigrateIsRepeatable(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	var version int
	err = store.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteStore_SchemaTables(t *testing.T) {
	store := createTestSQLiteStore(t)
	ctx := context.Background()

	for _, table := range []string{"schema_version", "categories", "transactions", "settings"} {
		var name string
		err := store.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	for _, index := range []string{
		"idx_transactions_date",
		"idx_transactions_type_date",
		"idx_transactions_category_id",
		"idx_categories_type",
		"idx_categories_display_order",
	} {
		var name string
		err := store.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, index).Scan(&name)
		require.NoError(t, err, "index %s should exist", index)
	}
}

func TestSQLiteStore_PartialUpdateKeepsOmittedFields(t *testing.T) {
	store := createTestSQLiteStore(t)
	ctx := context.Background()

	created, err := store.SaveTransaction(ctx, TransactionInput{
		Type:       model.TypeExpense,
		Amount:     1500,
		CategoryID: "cat_3",
		Date:       testDate(12),
		Memo:       "detergent",
	})
	require.NoError(t, err)

	memo := "soap"
	updated, err := store.UpdateTransaction(ctx, created.ID, model.TransactionPatch{Memo: &memo})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// Only the patched field changed; the row was read back first.
	assert.Equal(t, int64(1500), updated.Amount)
	assert.Equal(t, "cat_3", updated.CategoryID)
	assert.Equal(t, "soap", updated.Memo)
}

func TestSQLiteStore_NullColumnsScanAsEmpty(t *testing.T) {
	store := createTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.SaveTransaction(ctx, TransactionInput{
		Type:   model.TypeIncome,
		Amount: 250000,
		Date:   testDate(25),
	})
	require.NoError(t, err)

	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Empty(t, txns[0].CategoryID)
	assert.Empty(t, txns[0].Memo)
}

func TestSQLiteStore_InitializeSkipsNonEmptyTable(t *testing.T) {
	store := createTestSQLiteStore(t)
	ctx := context.Background()

	// Replace the defaults with a single imported category, then make
	// sure Initialize leaves it alone.
	require.NoError(t, store.ClearAll(ctx))
	require.NoError(t, store.RestoreCategory(ctx, model.Category{
		ID:        "cat_custom",
		Name:      "ペット",
		Type:      model.TypeExpense,
		Order:     1,
		CreatedAt: testDate(1),
		UpdatedAt: testDate(1),
	}))

	require.NoError(t, store.Initialize(ctx))

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "cat_custom", cats[0].ID)
}
