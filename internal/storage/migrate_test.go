package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamaji/kakeibo/internal/model"
)

func TestMigrateFromKV_TransfersAllData(t *testing.T) {
	ctx := context.Background()
	kv := createTestKVStore(t)

	created, err := kv.SaveTransaction(ctx, TransactionInput{
		Type:       model.TypeExpense,
		Amount:     50000,
		CategoryID: "cat_1",
		Date:       testDate(20),
	})
	require.NoError(t, err)
	require.NoError(t, kv.SetTheme(ctx, model.ThemePink))

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = dst.Close() }()
	require.NoError(t, dst.Migrate(ctx))

	require.NoError(t, MigrateFromKV(ctx, kv, dst))

	txns, err := dst.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, created.ID, txns[0].ID)
	assert.True(t, txns[0].CreatedAt.Equal(created.CreatedAt))

	cats, err := dst.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 11)

	mode, err := dst.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemePink, mode)
}

func TestMigrateFromKV_AtMostOnce(t *testing.T) {
	ctx := context.Background()
	kv := createTestKVStore(t)

	_, err := kv.SaveTransaction(ctx, TransactionInput{
		Type:   model.TypeIncome,
		Amount: 300000,
		Date:   testDate(15),
	})
	require.NoError(t, err)

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = dst.Close() }()
	require.NoError(t, dst.Migrate(ctx))

	require.NoError(t, MigrateFromKV(ctx, kv, dst))
	assert.True(t, kv.migrated())

	// Second run is a no-op: even new kv data is not transferred.
	_, err = kv.SaveTransaction(ctx, TransactionInput{
		Type:   model.TypeIncome,
		Amount: 9999,
		Date:   testDate(16),
	})
	require.NoError(t, err)
	require.NoError(t, MigrateFromKV(ctx, kv, dst))

	txns, err := dst.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestMigrateFromKV_ForcedRerunOverwritesNotDuplicates(t *testing.T) {
	ctx := context.Background()
	kv := createTestKVStore(t)

	_, err := kv.SaveTransaction(ctx, TransactionInput{
		Type:   model.TypeExpense,
		Amount: 700,
		Date:   testDate(2),
	})
	require.NoError(t, err)

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = dst.Close() }()
	require.NoError(t, dst.Migrate(ctx))

	require.NoError(t, MigrateFromKV(ctx, kv, dst))

	// Simulate a crash before the flag was set: rerun the transfer.
	kv.mu.Lock()
	delete(kv.data, kvKeyMigrated)
	kv.mu.Unlock()
	require.NoError(t, MigrateFromKV(ctx, kv, dst))

	txns, err := dst.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	cats, err := dst.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 11)
}

func TestOpen_MigrationRunsBeforeSeeding(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kvPath := filepath.Join(dir, "legacy.json")
	dbPath := filepath.Join(dir, "kakeibo.db")

	kv, err := NewKVStore(kvPath)
	require.NoError(t, err)
	require.NoError(t, kv.Initialize(ctx))

	// The legacy store has a renamed category; seeding after migration
	// must not overwrite it with defaults.
	name := "外食"
	_, err = kv.UpdateCategory(ctx, "cat_1", model.CategoryPatch{Name: &name})
	require.NoError(t, err)

	store, err := Open(ctx, Config{
		Type:         BackendSQLite,
		Path:         dbPath,
		LegacyKVPath: kvPath,
	})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 11)

	byID := make(map[string]model.Category, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = cat
	}
	assert.Equal(t, "外食", byID["cat_1"].Name)
}

func TestOpen_InvalidBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "cloud", Path: "x"})
	assert.ErrorIs(t, err, ErrInvalidBackend)
}
