package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/hamaji/kakeibo/internal/common"
	"github.com/hamaji/kakeibo/internal/storage"
)

// openStore opens the configured storage backend with proper path
// expansion, running schema migrations and default seeding.
func openStore(ctx context.Context) (storage.Store, error) {
	backend := storage.BackendType(viper.GetString("storage.backend"))
	if backend == "" {
		backend = storage.BackendSQLite
	}

	path := viper.GetString("storage.path")
	if path == "" {
		switch backend {
		case storage.BackendSQLite:
			path = "$HOME/.local/share/kakeibo/kakeibo.db"
		case storage.BackendKV:
			path = "$HOME/.local/share/kakeibo/kakeibo.json"
		}
	}

	cfg := storage.Config{
		Type:         backend,
		Path:         common.ExpandPath(path),
		LegacyKVPath: common.ExpandPath(viper.GetString("storage.legacy_kv_path")),
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, common.NewUserError("failed to open storage", err)
	}
	return store, nil
}

// formatYen renders an integer yen amount with a currency marker.
func formatYen(amount int64) string {
	return fmt.Sprintf("¥%d", amount)
}
