package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/storage"
)

func addCmd() *cobra.Command {
	var (
		categoryID string
		dateStr    string
		memo       string
	)

	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount>",
		Short: "Record a new transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := model.TransactionType(args[0])
			if !typ.IsValid() {
				return fmt.Errorf("transaction type must be income or expense, got %q", args[0])
			}

			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be an integer number of yen: %w", err)
			}
			if amount <= 0 {
				return fmt.Errorf("amount must be positive, got %d", amount)
			}

			date := time.Now()
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
				}
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.SaveTransaction(ctx, storage.TransactionInput{
				Type:       typ,
				Amount:     amount,
				CategoryID: categoryID,
				Date:       date,
				Memo:       memo,
			})
			if err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			fmt.Printf("Recorded %s of %s on %s (id %s)\n",
				txn.Type, formatYen(txn.Amount), txn.Date.Format("2006-01-02"), txn.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "category id (optional)")
	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "transaction date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "free-text note")

	return cmd
}
