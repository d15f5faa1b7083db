package export

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/storage"
)

func createTestStore(t *testing.T) storage.Store {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{
		Type: storage.BackendSQLite,
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := createTestStore(t)

	created, err := src.SaveTransaction(ctx, storage.TransactionInput{
		Type:       model.TypeExpense,
		Amount:     50000,
		CategoryID: "cat_1",
		Date:       time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		Memo:       "groceries",
	})
	require.NoError(t, err)
	require.NoError(t, src.SetTheme(ctx, model.ThemeDark))

	doc, err := Export(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, SupportedVersion, doc.Version)
	assert.False(t, doc.ExportedAt.IsZero())

	raw, err := doc.Marshal()
	require.NoError(t, err)

	dst := createTestStore(t)
	stats, err := Import(ctx, dst, raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Transactions)
	assert.Equal(t, 11, stats.Categories)

	txns, err := dst.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, created.ID, txns[0].ID)
	assert.True(t, txns[0].CreatedAt.Equal(created.CreatedAt))
	assert.Equal(t, "groceries", txns[0].Memo)

	mode, err := dst.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, mode)
}

func TestImport_RejectsNewerVersion(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	created, err := store.SaveTransaction(ctx, storage.TransactionInput{
		Type:   model.TypeIncome,
		Amount: 100,
		Date:   time.Now(),
	})
	require.NoError(t, err)

	raw := []byte(`{"version": 2, "exportedAt": "2026-08-30T00:00:00Z", "data": {"transactions": [], "categories": [], "themeMode": "system"}}`)
	_, err = Import(ctx, store, raw, nil)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	// The rejection happened before any mutation.
	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, created.ID, txns[0].ID)
}

func TestImport_RejectsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{broken`},
		{name: "missing version", raw: `{"data": {"transactions": [], "categories": []}}`},
		{name: "missing data", raw: `{"version": 1}`},
		{name: "transactions not array", raw: `{"version": 1, "data": {"transactions": 5, "categories": []}}`},
		{name: "categories missing", raw: `{"version": 1, "data": {"transactions": []}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(ctx, store, []byte(tt.raw), nil)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestImport_MissingTimestampsFallBackToNow(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	doc := map[string]any{
		"version":    1,
		"exportedAt": "2026-08-30T00:00:00Z",
		"data": map[string]any{
			"transactions": []map[string]any{
				{
					"id":     "txn-legacy-1",
					"type":   "expense",
					"amount": 980,
					"date":   "2026-03-01T00:00:00Z",
				},
			},
			"categories": []map[string]any{
				{
					"id":    "cat_legacy",
					"name":  "レガシー",
					"type":  "expense",
					"order": 1,
				},
			},
			"themeMode": "light",
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	stats, err := Import(ctx, store, raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Transactions)
	assert.Equal(t, 1, stats.Categories)

	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.False(t, txns[0].CreatedAt.IsZero())
	assert.False(t, txns[0].UpdatedAt.IsZero())
}

func TestImport_ProgressCallback(t *testing.T) {
	ctx := context.Background()
	src := createTestStore(t)

	doc, err := Export(ctx, src)
	require.NoError(t, err)
	raw, err := doc.Marshal()
	require.NoError(t, err)

	dst := createTestStore(t)
	var calls, lastDone, lastTotal int
	_, err = Import(ctx, dst, raw, func(done, total int) {
		calls++
		lastDone = done
		lastTotal = total
	})
	require.NoError(t, err)

	// 11 seeded categories, no transactions.
	assert.Equal(t, 11, calls)
	assert.Equal(t, 11, lastDone)
	assert.Equal(t, 11, lastTotal)
}

func TestParse_AcceptsOlderVersionDocuments(t *testing.T) {
	raw := []byte(`{"version": 0, "exportedAt": "2025-01-01T00:00:00Z", "data": {"transactions": [], "categories": [], "themeMode": "system"}}`)
	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Version)
}
