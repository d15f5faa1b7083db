package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/cli"
	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/report"
)

func listCmd() *cobra.Command {
	var (
		year  int
		month int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			cats, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			switch {
			case year != 0 && month != 0:
				txns = report.FilterByMonth(txns, year, month)
			case year != 0:
				txns = report.FilterByYear(txns, year)
			}

			if len(txns) == 0 {
				fmt.Println("No transactions.")
				return nil
			}

			names := categoryNames(cats)
			for _, txn := range txns {
				name := names[txn.CategoryID]
				if name == "" {
					name = "(uncategorized)"
				}
				line := fmt.Sprintf("%s  %-8s %10s  %s",
					txn.Date.Format("2006-01-02"), txn.Type,
					formatYen(txn.Amount), name)
				fmt.Println(cli.AmountStyle(txn.Type).Render(line))
				if txn.Memo != "" {
					fmt.Println(cli.SubtleStyle.Render("            " + txn.Memo))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "filter by calendar year")
	cmd.Flags().IntVarP(&month, "month", "M", 0, "filter by calendar month (requires --year)")

	return cmd
}

// categoryNames indexes category display names by id.
func categoryNames(cats []model.Category) map[string]string {
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	return names
}
