package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the storage backend",
		Long: `Init opens the configured storage backend, runs any pending schema
migrations and the one-time legacy data migration, and seeds the
default categories on first use. Running it again is harmless.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cats, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to verify storage: %w", err)
			}

			fmt.Printf("Storage ready (%d categories)\n", len(cats))
			return nil
		},
	}
}
