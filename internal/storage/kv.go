package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/model"
)

// Namespaced keys of the key-value backend. Each collection lives under
// one key as a single serialized JSON value.
const (
	kvKeyTransactions = "kakeibo_transactions"
	kvKeyCategories   = "kakeibo_categories"
	kvKeyTheme        = "kakeibo_theme"
	kvKeyInitialized  = "kakeibo_initialized"
	kvKeyMigrated     = "kakeibo_migrated"
)

// KVStore implements Store over a single JSON file holding a key-value
// map. Every mutation is a read-modify-write of the whole collection
// followed by an atomic write-temp-then-rename of the full blob, so the
// file is never partially written.
//
// Failure policy: reads degrade to an empty or default value and log a
// warning; writes propagate the underlying error to the caller.
type KVStore struct {
	data map[string]string
	path string
	mu   sync.Mutex
}

// NewKVStore opens (or creates) a key-value store at path. A missing or
// unreadable data file yields an empty store rather than an error.
func NewKVStore(path string) (*KVStore, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &KVStore{
		path: path,
		data: make(map[string]string),
	}
	s.load()
	return s, nil
}

// load reads the data file into memory. Read failures degrade to an
// empty map and a warning.
func (s *KVStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read kv data file, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("failed to parse kv data file, starting empty", "path", s.path, "error", err)
		return
	}
	s.data = data
}

// flush writes the whole map atomically. On failure the in-memory map
// is reverted to the last state that reached disk, so a caller retrying
// after an error starts from persisted state rather than from mutations
// that were never written. Callers must hold the mutex.
func (s *KVStore) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.revert()
		return fmt.Errorf("failed to serialize kv data: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		s.revert()
		return fmt.Errorf("failed to write kv data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.revert()
		return fmt.Errorf("failed to replace kv data file: %w", err)
	}
	return nil
}

// revert discards unflushed mutations by reloading the data file.
// Callers must hold the mutex.
func (s *KVStore) revert() {
	s.data = make(map[string]string)
	s.load()
}

// Close is a no-op; every mutation is already flushed to disk.
func (s *KVStore) Close() error {
	return nil
}

// Initialize seeds default categories and an empty transaction list on
// first run. No-op if the initialized flag is already set.
func (s *KVStore) Initialize(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[kvKeyInitialized] == "true" {
		return nil
	}

	cats := DefaultCategories(common.Now())
	if err := s.setCollection(kvKeyCategories, cats); err != nil {
		return err
	}
	if err := s.setCollection(kvKeyTransactions, []model.Transaction{}); err != nil {
		return err
	}
	s.data[kvKeyInitialized] = "true"

	if err := s.flush(); err != nil {
		common.LogError(err, "failed to initialize kv store", common.Fields{"path": s.path})
		return err
	}

	slog.Info("initialized kv store", "path", s.path, "default_categories", len(cats))
	return nil
}

// setCollection serializes a collection into its key without flushing.
func (s *KVStore) setCollection(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	s.data[key] = string(raw)
	return nil
}

// readTransactions parses the transaction collection. Absent or corrupt
// data degrades to an empty slice. Callers must hold the mutex.
func (s *KVStore) readTransactions() []model.Transaction {
	raw, ok := s.data[kvKeyTransactions]
	if !ok {
		return nil
	}
	var txns []model.Transaction
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		slog.Warn("failed to parse stored transactions, treating as empty", "error", err)
		return nil
	}
	return txns
}

// readCategories parses the category collection with the same
// degradation policy as readTransactions.
func (s *KVStore) readCategories() []model.Category {
	raw, ok := s.data[kvKeyCategories]
	if !ok {
		return nil
	}
	var cats []model.Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		slog.Warn("failed to parse stored categories, treating as empty", "error", err)
		return nil
	}
	return cats
}

// writeTransactions rewrites the full transaction collection and
// flushes. Callers must hold the mutex.
func (s *KVStore) writeTransactions(txns []model.Transaction) error {
	if err := s.setCollection(kvKeyTransactions, txns); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		common.LogError(err, "failed to persist transactions", common.Fields{"count": len(txns)})
		return err
	}
	return nil
}

// writeCategories rewrites the full category collection and flushes.
func (s *KVStore) writeCategories(cats []model.Category) error {
	if err := s.setCollection(kvKeyCategories, cats); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		common.LogError(err, "failed to persist categories", common.Fields{"count": len(cats)})
		return err
	}
	return nil
}

// GetTransactions returns all transactions sorted by date descending.
func (s *KVStore) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	txns := s.readTransactions()
	s.mu.Unlock()

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
	return txns, nil
}

// SaveTransaction appends a new transaction with a generated id and
// timestamps and rewrites the collection.
func (s *KVStore) SaveTransaction(ctx context.Context, input TransactionInput) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

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

	txns := append(s.readTransactions(), txn)
	if err := s.writeTransactions(txns); err != nil {
		return nil, err
	}

	slog.Debug("saved transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return &txn, nil
}

// UpdateTransaction merges the patch into the matching record, bumps
// UpdatedAt, and rewrites the collection. Returns (nil, nil) when no
// record matches.
func (s *KVStore) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.readTransactions()
	for i := range txns {
		if txns[i].ID != id {
			continue
		}
		applyTransactionPatch(&txns[i], patch)
		txns[i].UpdatedAt = common.Now()
		if err := s.writeTransactions(txns); err != nil {
			return nil, err
		}
		updated := txns[i]
		return &updated, nil
	}
	return nil, nil
}

// DeleteTransaction removes the matching record and reports whether
// anything was removed.
func (s *KVStore) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.readTransactions()
	kept := txns[:0]
	for _, txn := range txns {
		if txn.ID != id {
			kept = append(kept, txn)
		}
	}
	if len(kept) == len(txns) {
		return false, nil
	}
	if err := s.writeTransactions(kept); err != nil {
		return false, err
	}
	return true, nil
}

// GetCategories returns all categories sorted by display order ascending.
func (s *KVStore) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	cats := s.readCategories()
	s.mu.Unlock()

	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Order < cats[j].Order
	})
	return cats, nil
}

// SaveCategory appends a new category with a generated id and timestamps.
func (s *KVStore) SaveCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

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

	cats := append(s.readCategories(), cat)
	if err := s.writeCategories(cats); err != nil {
		return nil, err
	}

	slog.Debug("saved category", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return &cat, nil
}

// UpdateCategory merges the patch into the matching record. The
// category type is immutable and not part of the patch.
func (s *KVStore) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats := s.readCategories()
	for i := range cats {
		if cats[i].ID != id {
			continue
		}
		applyCategoryPatch(&cats[i], patch)
		cats[i].UpdatedAt = common.Now()
		if err := s.writeCategories(cats); err != nil {
			return nil, err
		}
		updated := cats[i]
		return &updated, nil
	}
	return nil, nil
}

// DeleteCategory removes the matching record. Default categories are
// refused with ErrDefaultCategory.
func (s *KVStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats := s.readCategories()
	kept := cats[:0]
	removed := false
	for _, cat := range cats {
		if cat.ID == id {
			if cat.IsDefault {
				return false, fmt.Errorf("%w: %s", ErrDefaultCategory, cat.Name)
			}
			removed = true
			continue
		}
		kept = append(kept, cat)
	}
	if !removed {
		return false, nil
	}
	if err := s.writeCategories(kept); err != nil {
		return false, err
	}
	return true, nil
}

// ReorderCategories applies new display orders to the matching
// categories, bumping UpdatedAt only on records actually touched.
func (s *KVStore) ReorderCategories(ctx context.Context, orders []model.CategoryOrder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]int, len(orders))
	for _, o := range orders {
		byID[o.ID] = o.Order
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats := s.readCategories()
	now := common.Now()
	for i := range cats {
		if order, ok := byID[cats[i].ID]; ok && cats[i].Order != order {
			cats[i].Order = order
			cats[i].UpdatedAt = now
		}
	}
	return s.writeCategories(cats)
}

// GetTheme returns the stored theme mode, defaulting to ThemeSystem
// when absent or unrecognized.
func (s *KVStore) GetTheme(ctx context.Context) (model.ThemeMode, error) {
	if err := validateContext(ctx); err != nil {
		return model.ThemeSystem, err
	}

	s.mu.Lock()
	raw, ok := s.data[kvKeyTheme]
	s.mu.Unlock()

	if !ok {
		return model.ThemeSystem, nil
	}
	mode := model.ThemeMode(raw)
	if !mode.IsValid() {
		slog.Warn("stored theme mode is invalid, using default", "value", raw)
		return model.ThemeSystem, nil
	}
	return mode, nil
}

// SetTheme persists the theme mode.
func (s *KVStore) SetTheme(ctx context.Context, mode model.ThemeMode) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[kvKeyTheme] = string(mode)
	if err := s.flush(); err != nil {
		common.LogError(err, "failed to persist theme", common.Fields{"mode": mode})
		return err
	}
	return nil
}

// RestoreTransaction inserts the record as-is, replacing any existing
// record with the same id.
func (s *KVStore) RestoreTransaction(ctx context.Context, txn model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.readTransactions()
	replaced := false
	for i := range txns {
		if txns[i].ID == txn.ID {
			txns[i] = txn
			replaced = true
			break
		}
	}
	if !replaced {
		txns = append(txns, txn)
	}
	// Restored data counts as initialized; the next Initialize must not
	// seed defaults over it.
	s.data[kvKeyInitialized] = "true"
	return s.writeTransactions(txns)
}

// RestoreCategory inserts the record as-is, replacing any existing
// record with the same id.
func (s *KVStore) RestoreCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(cat.ID, "id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats := s.readCategories()
	replaced := false
	for i := range cats {
		if cats[i].ID == cat.ID {
			cats[i] = cat
			replaced = true
			break
		}
	}
	if !replaced {
		cats = append(cats, cat)
	}
	s.data[kvKeyInitialized] = "true"
	return s.writeCategories(cats)
}

// ClearAll removes every namespaced key, including the initialized
// flag, so the next Initialize reseeds defaults.
func (s *KVStore) ClearAll(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{kvKeyTransactions, kvKeyCategories, kvKeyTheme, kvKeyInitialized, kvKeyMigrated} {
		delete(s.data, key)
	}
	if err := s.flush(); err != nil {
		common.LogError(err, "failed to clear kv store", common.Fields{"path": s.path})
		return err
	}
	slog.Info("cleared all kv data", "path", s.path)
	return nil
}

// migrated reports whether the one-time backend migration already ran.
func (s *KVStore) migrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[kvKeyMigrated] == "true"
}

// markMigrated persists the migrated flag.
func (s *KVStore) markMigrated() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[kvKeyMigrated] = "true"
	return s.flush()
}

// rawTheme returns the stored theme string and whether one is present,
// without defaulting. Used by the backend migration.
func (s *KVStore) rawTheme() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[kvKeyTheme]
	return raw, ok
}

// applyTransactionPatch merges non-nil patch fields into the record.
func applyTransactionPatch(txn *model.Transaction, patch model.TransactionPatch) {
	if patch.Type != nil {
		txn.Type = *patch.Type
	}
	if patch.Amount != nil {
		txn.Amount = *patch.Amount
	}
	if patch.CategoryID != nil {
		txn.CategoryID = *patch.CategoryID
	}
	if patch.Date != nil {
		txn.Date = *patch.Date
	}
	if patch.Memo != nil {
		txn.Memo = *patch.Memo
	}
}

// applyCategoryPatch merges non-nil patch fields into the record.
func applyCategoryPatch(cat *model.Category, patch model.CategoryPatch) {
	if patch.Name != nil {
		cat.Name = *patch.Name
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
	}
	if patch.CustomName != nil {
		cat.CustomName = *patch.CustomName
	}
	if patch.Order != nil {
		cat.Order = *patch.Order
	}
}
