// Package storage provides the data persistence layer for the kakeibo ledger.
//
// Two backends implement the same Store contract: a key-value store that
// keeps each collection as one serialized JSON blob, and an embedded
// SQLite store with a migrated relational schema. Callers choose a
// backend once via Open and never see backend-specific types.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamaji/kakeibo/internal/model"
)

// Store is the unified storage contract consumed by the rest of the
// application. Both backends guarantee the same pre/post-conditions:
// transactions are returned sorted by date descending, categories by
// display order ascending.
type Store interface {
	// Initialize seeds default categories on first run. It is a no-op
	// after the first successful call.
	Initialize(ctx context.Context) error

	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	SaveTransaction(ctx context.Context, input TransactionInput) (*model.Transaction, error)
	// UpdateTransaction returns (nil, nil) when no transaction has the
	// given id.
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error)
	// DeleteTransaction reports whether a record was actually removed.
	DeleteTransaction(ctx context.Context, id string) (bool, error)

	GetCategories(ctx context.Context) ([]model.Category, error)
	SaveCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
	ReorderCategories(ctx context.Context, orders []model.CategoryOrder) error

	// GetTheme defaults to ThemeSystem when no theme has been saved or
	// the stored value cannot be read.
	GetTheme(ctx context.Context) (model.ThemeMode, error)
	SetTheme(ctx context.Context, mode model.ThemeMode) error

	// RestoreTransaction and RestoreCategory insert a record preserving
	// its original id and timestamps, overwriting any existing record
	// with the same id. Used by import and the backend migration.
	RestoreTransaction(ctx context.Context, txn model.Transaction) error
	RestoreCategory(ctx context.Context, cat model.Category) error

	// ClearAll removes all transactions, categories, and settings.
	ClearAll(ctx context.Context) error

	Close() error
}

// TransactionInput is the payload for creating a transaction. ID and
// timestamps are generated by the store.
type TransactionInput struct {
	Date       time.Time
	Type       model.TransactionType
	CategoryID string
	Memo       string
	Amount     int64
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name  string
	Icon  string
	Color string
	Type  model.TransactionType
	Order int
}

// BackendType selects one of the two storage backends.
type BackendType string

const (
	// BackendKV is the serialized key-value backend.
	BackendKV BackendType = "kv"
	// BackendSQLite is the embedded relational backend.
	BackendSQLite BackendType = "sqlite"
)

// IsValid reports whether the backend type is a known value.
func (b BackendType) IsValid() bool {
	return b == BackendKV || b == BackendSQLite
}

// Config holds the options for opening a store.
type Config struct {
	// Type selects the backend.
	Type BackendType
	// Path is the data file: a JSON blob for the kv backend, a SQLite
	// database file for the sqlite backend.
	Path string
	// LegacyKVPath points at a kv data file whose contents are migrated
	// into the sqlite backend once, on first open. Ignored by the kv
	// backend.
	LegacyKVPath string
}

// Open creates the configured backend, runs schema migrations and the
// one-time kv migration where applicable, and seeds default data.
//
// The kv-to-sqlite migration is best-effort: its failure is logged and
// never blocks opening the store, and the migrated flag is only set
// after full success so an interrupted migration retries next open.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown backend type %q", ErrInvalidBackend, cfg.Type)
	}
	if err := validateString(cfg.Path, "path"); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case BackendKV:
		store, err := NewKVStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := store.Initialize(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil

	case BackendSQLite:
		store, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run schema migrations: %w", err)
		}

		// The legacy migration must complete (or be skipped) before
		// default seeding, or seeding would plant defaults over data
		// about to be migrated.
		if cfg.LegacyKVPath != "" {
			if kv, kvErr := NewKVStore(cfg.LegacyKVPath); kvErr != nil {
				slog.Warn("could not open legacy kv store, skipping migration",
					"path", cfg.LegacyKVPath, "error", kvErr)
			} else if migErr := MigrateFromKV(ctx, kv, store); migErr != nil {
				slog.Error("legacy kv migration failed, will retry on next open",
					"error", migErr)
			}
		}

		if err := store.Initialize(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Type)
}
