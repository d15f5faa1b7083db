package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamaji/kakeibo/internal/model"
)

func createTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	store, err := NewKVStore(filepath.Join(t.TempDir(), "kakeibo.json"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func TestKVStore_CorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store, err := NewKVStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	mode, err := store.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeSystem, mode)
}

func TestKVStore_CorruptCollectionDegradesToEmpty(t *testing.T) {
	store := createTestKVStore(t)
	ctx := context.Background()

	// Corrupt just the transaction collection; categories stay intact.
	store.mu.Lock()
	store.data[kvKeyTransactions] = "not an array"
	store.mu.Unlock()

	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 11)
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.json")
	ctx := context.Background()

	store, err := NewKVStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Initialize(ctx))

	created, err := store.SaveTransaction(ctx, TransactionInput{
		Type:   model.TypeExpense,
		Amount: 980,
		Date:   testDate(7),
		Memo:   "coffee",
	})
	require.NoError(t, err)
	require.NoError(t, store.SetTheme(ctx, model.ThemeBlue))

	reopened, err := NewKVStore(path)
	require.NoError(t, err)

	// Initialize must be a no-op on the persisted flag.
	require.NoError(t, reopened.Initialize(ctx))

	txns, err := reopened.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, created.ID, txns[0].ID)
	assert.Equal(t, "coffee", txns[0].Memo)

	mode, err := reopened.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeBlue, mode)
}

func TestKVStore_FileLayoutIsNamespacedKeyMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.json")

	store, err := NewKVStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var data map[string]string
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Contains(t, data, kvKeyTransactions)
	assert.Contains(t, data, kvKeyCategories)
	assert.Equal(t, "true", data[kvKeyInitialized])

	// Each collection value is itself a serialized JSON array.
	var cats []model.Category
	require.NoError(t, json.Unmarshal([]byte(data[kvKeyCategories]), &cats))
	assert.Len(t, cats, 11)
}

func TestKVStore_ClearAllRemovesAllKeys(t *testing.T) {
	store := createTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTheme(ctx, model.ThemeDark))
	require.NoError(t, store.ClearAll(ctx))

	raw, err := os.ReadFile(store.path)
	require.NoError(t, err)

	var data map[string]string
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Empty(t, data)
}

func TestKVStore_FailedWriteRevertsMemory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.json")

	// A directory at the data path makes the atomic rename fail.
	require.NoError(t, os.Mkdir(path, 0750))

	store, err := NewKVStore(path)
	require.NoError(t, err)
	require.Error(t, store.Initialize(ctx))

	// The failed seeding left nothing behind in memory.
	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	// Once the path is writable again, Initialize must seed: the failed
	// attempt must not have set the initialized flag in memory.
	require.NoError(t, os.Remove(path))
	require.NoError(t, store.Initialize(ctx))

	cats, err = store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 11)
}

func TestKVStore_NoTempFileLeftBehind(t *testing.T) {
	store := createTestKVStore(t)

	_, err := os.Stat(store.path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
