package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all ledger data",
		Long: `Reset removes every transaction, category, and setting from the
active storage backend. Default categories are reseeded on next use.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to count transactions: %w", err)
			}

			if !force {
				fmt.Printf("This will delete %d transactions and all categories and settings.\n", len(txns))
				fmt.Print("Are you sure you want to continue? [y/N]: ")

				var response string
				if _, err := fmt.Scanln(&response); err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				if response != "y" && response != "Y" {
					fmt.Println("Reset canceled.")
					return nil
				}
			}

			if err := store.ClearAll(ctx); err != nil {
				return fmt.Errorf("failed to clear data: %w", err)
			}

			fmt.Println("All data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
