package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store using an embedded SQLite database.
// Each operation is a targeted SQL statement; partial updates read the
// current row first so omitted fields keep their previous value.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Initialize seeds default categories when the categories table is
// empty. Idempotent: a populated table is left untouched.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	cats := DefaultCategories(common.Now())
	for _, cat := range cats {
		if err := s.RestoreCategory(ctx, cat); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", cat.ID, err)
		}
	}

	slog.Info("seeded default categories", "count", len(cats))
	return nil
}

// ClearAll empties the transactions, categories, and settings tables.
// The schema itself is preserved.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	for _, table := range []string{"transactions", "categories", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	slog.Info("cleared all data", "path", s.dbPath)
	return nil
}

// GetTheme returns the stored theme mode, defaulting to ThemeSystem
// when absent, unreadable, or unrecognized.
func (s *SQLiteStore) GetTheme(ctx context.Context) (model.ThemeMode, error) {
	if err := validateContext(ctx); err != nil {
		return model.ThemeSystem, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingThemeMode).Scan(&value)
	if err == sql.ErrNoRows {
		return model.ThemeSystem, nil
	}
	if err != nil {
		slog.Warn("failed to read theme setting, using default", "error", err)
		return model.ThemeSystem, nil
	}

	mode := model.ThemeMode(value)
	if !mode.IsValid() {
		slog.Warn("stored theme mode is invalid, using default", "value", value)
		return model.ThemeSystem, nil
	}
	return mode, nil
}

// SetTheme persists the theme mode.
func (s *SQLiteStore) SetTheme(ctx context.Context, mode model.ThemeMode) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, mode)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingThemeMode, string(mode))
	if err != nil {
		return fmt.Errorf("failed to save theme setting: %w", err)
	}
	return nil
}

// settingThemeMode is the settings-table key for the theme scalar.
const settingThemeMode = "themeMode"

// formatTime renders a timestamp for a TEXT column. Timestamps are
// normalized to UTC so that lexical order on the column matches
// chronological order even when inputs carry different offsets.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a timestamp back from a TEXT column. Unparseable
// values degrade to the zero time rather than failing the whole scan.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		slog.Warn("failed to parse stored timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t
}
