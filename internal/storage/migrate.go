package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hamaji/kakeibo/internal/model"
)

// MigrateFromKV performs the one-time transfer of data written under
// the key-value backend into the SQLite backend.
//
// The persisted migrated flag in the kv namespace makes the procedure
// at-most-once: a completed migration is skipped entirely. The flag is
// set only after every record has been transferred, so a crash
// mid-migration retries on the next open; upsert semantics mean a
// retry overwrites rather than duplicates.
func MigrateFromKV(ctx context.Context, kv *KVStore, dst *SQLiteStore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if kv.migrated() {
		slog.Debug("kv migration already completed, skipping")
		return nil
	}

	kv.mu.Lock()
	cats := kv.readCategories()
	txns := kv.readTransactions()
	kv.mu.Unlock()

	for _, cat := range cats {
		if err := dst.RestoreCategory(ctx, cat); err != nil {
			return fmt.Errorf("failed to migrate category %s: %w", cat.ID, err)
		}
	}
	for _, txn := range txns {
		if err := dst.RestoreTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to migrate transaction %s: %w", txn.ID, err)
		}
	}

	if raw, ok := kv.rawTheme(); ok {
		mode := model.ThemeMode(raw)
		if mode.IsValid() {
			if err := dst.SetTheme(ctx, mode); err != nil {
				return fmt.Errorf("failed to migrate theme: %w", err)
			}
		} else {
			slog.Warn("skipping invalid stored theme during migration", "value", raw)
		}
	}

	if err := kv.markMigrated(); err != nil {
		return fmt.Errorf("failed to set migrated flag: %w", err)
	}

	slog.Info("migrated kv data to sqlite",
		"categories", len(cats),
		"transactions", len(txns))
	return nil
}
