// Package export serializes the full ledger data set to a portable
// JSON document and restores it, with a forward-only schema version
// gate.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/storage"
)

// SupportedVersion is the newest document version this code can import.
const SupportedVersion = 1

// Import errors, surfaced as messages rather than crashes.
var (
	ErrInvalidDocument    = errors.New("invalid export document")
	ErrUnsupportedVersion = errors.New("export document version is newer than supported")
)

// Document is the portable export format.
type Document struct {
	ExportedAt time.Time    `json:"exportedAt"`
	Data       DocumentData `json:"data"`
	Version    int          `json:"version"`
}

// DocumentData holds the exported collections.
type DocumentData struct {
	ThemeMode    string              `json:"themeMode"`
	Transactions []model.Transaction `json:"transactions"`
	Categories   []model.Category    `json:"categories"`
}

// ImportStats reports how many rows an import restored.
type ImportStats struct {
	Transactions int
	Categories   int
}

// Export reads the full data set from the store into a Document.
func Export(ctx context.Context, store storage.Store) (*Document, error) {
	txns, err := store.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	cats, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	theme, err := store.GetTheme(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}

	if txns == nil {
		txns = []model.Transaction{}
	}
	if cats == nil {
		cats = []model.Category{}
	}

	return &Document{
		Version:    SupportedVersion,
		ExportedAt: common.Now(),
		Data: DocumentData{
			Transactions: txns,
			Categories:   cats,
			ThemeMode:    string(theme),
		},
	}, nil
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export document: %w", err)
	}
	return raw, nil
}

// rawDocument mirrors Document with loose types so shape validation
// can produce specific errors instead of unmarshal failures.
type rawDocument struct {
	Version *int `json:"version"`
	Data    *struct {
		ThemeMode    string            `json:"themeMode"`
		Transactions []json.RawMessage `json:"transactions"`
		Categories   []json.RawMessage `json:"categories"`
	} `json:"data"`
}

// Parse validates and decodes an export document. Documents newer than
// SupportedVersion are rejected; older versions are accepted as-is.
// Field-level shape of individual records is not deeply validated.
func Parse(raw []byte) (*Document, error) {
	var probe rawDocument
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if probe.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidDocument)
	}
	if *probe.Version > SupportedVersion {
		return nil, fmt.Errorf("%w: document version %d, supported %d",
			ErrUnsupportedVersion, *probe.Version, SupportedVersion)
	}
	if probe.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidDocument)
	}
	if probe.Data.Transactions == nil {
		return nil, fmt.Errorf("%w: data.transactions must be an array", ErrInvalidDocument)
	}
	if probe.Data.Categories == nil {
		return nil, fmt.Errorf("%w: data.categories must be an array", ErrInvalidDocument)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Import restores a document into the store. This is a destructive
// overwrite: existing transactions, categories, and settings are
// cleared first. Imported rows keep their original ids and timestamps,
// falling back to now when a timestamp is missing. Validation failures
// are reported before any data is touched.
//
// progress, when non-nil, is called after each restored row with the
// running and total row counts.
func Import(ctx context.Context, store storage.Store, raw []byte, progress func(done, total int)) (*ImportStats, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	total := len(doc.Data.Categories) + len(doc.Data.Transactions)

	if err := store.ClearAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear existing data: %w", err)
	}

	now := common.Now()
	stats := &ImportStats{}

	for _, cat := range doc.Data.Categories {
		if cat.CreatedAt.IsZero() {
			cat.CreatedAt = now
		}
		if cat.UpdatedAt.IsZero() {
			cat.UpdatedAt = now
		}
		if err := store.RestoreCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to import category %s: %w", cat.ID, err)
		}
		stats.Categories++
		if progress != nil {
			progress(stats.Categories+stats.Transactions, total)
		}
	}

	for _, txn := range doc.Data.Transactions {
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = now
		}
		if txn.UpdatedAt.IsZero() {
			txn.UpdatedAt = now
		}
		if err := store.RestoreTransaction(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to import transaction %s: %w", txn.ID, err)
		}
		stats.Transactions++
		if progress != nil {
			progress(stats.Categories+stats.Transactions, total)
		}
	}

	if mode := model.ThemeMode(doc.Data.ThemeMode); mode.IsValid() {
		if err := store.SetTheme(ctx, mode); err != nil {
			return nil, fmt.Errorf("failed to import theme: %w", err)
		}
	} else if doc.Data.ThemeMode != "" {
		slog.Warn("skipping invalid theme mode in import", "value", doc.Data.ThemeMode)
	}

	slog.Info("imported ledger data",
		"transactions", stats.Transactions,
		"categories", stats.Categories)
	return stats, nil
}
