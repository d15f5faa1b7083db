package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/cli"
	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/report"
)

func summaryCmd() *cobra.Command {
	var (
		year    int
		month   int
		compare bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a monthly or yearly summary",
		Long: `Summary aggregates income, expense, and balance for one calendar
month (--year and --month) or one calendar year (--year only).
With --compare, the previous period's balance and the percentage
change are included.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to read transactions: %w", err)
			}

			if month != 0 {
				var previous []model.Transaction
				if compare {
					prevYear, prevMonth := year, month-1
					if prevMonth == 0 {
						prevYear, prevMonth = year-1, 12
					}
					previous = report.FilterByMonth(txns, prevYear, prevMonth)
				}
				s := report.MonthlySummary(txns, year, month, previous)
				fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d-%02d", s.Year, s.Month)))
				printSummary(s.Income, s.Expense, s.Balance, s.PreviousBalance, s.ChangePercentage)
				return nil
			}

			var previous []model.Transaction
			if compare {
				previous = report.FilterByYear(txns, year-1)
			}
			s := report.YearlySummary(txns, year, previous)
			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d", s.Year)))
			printSummary(s.Income, s.Expense, s.Balance, s.PreviousBalance, s.ChangePercentage)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "calendar year (default: current)")
	cmd.Flags().IntVarP(&month, "month", "M", 0, "calendar month; omit for a yearly summary")
	cmd.Flags().BoolVar(&compare, "compare", false, "include previous-period comparison")

	return cmd
}

func printSummary(income, expense, balance int64, prevBalance *int64, change *float64) {
	fmt.Printf("  income:  %s\n", cli.IncomeStyle.Render(formatYen(income)))
	fmt.Printf("  expense: %s\n", cli.ExpenseStyle.Render(formatYen(expense)))
	fmt.Printf("  balance: %s\n", cli.BoldStyle.Render(formatYen(balance)))
	if prevBalance != nil {
		fmt.Printf("  previous balance: %s\n", formatYen(*prevBalance))
	}
	if change != nil {
		fmt.Printf("  change: %s\n", report.FormatChangePercentage(*change))
	}
}

func breakdownCmd() *cobra.Command {
	var (
		year  int
		month int
		typ   string
	)

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show per-category totals for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			txType := model.TransactionType(typ)
			if !txType.IsValid() {
				return fmt.Errorf("type must be income or expense, got %q", typ)
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to read transactions: %w", err)
			}
			cats, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to read categories: %w", err)
			}

			if month != 0 {
				txns = report.FilterByMonth(txns, year, month)
			} else {
				txns = report.FilterByYear(txns, year)
			}

			slices := report.CategoryBreakdown(txns, cats, txType)
			if len(slices) == 0 {
				fmt.Println("No data for this period.")
				return nil
			}

			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-14s %12s %8s", "category", "amount", "share")))
			for _, slice := range slices {
				fmt.Printf("%-14s %12s %7.1f%%\n",
					slice.CategoryName, formatYen(slice.Amount), slice.Percentage)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "calendar year (default: current)")
	cmd.Flags().IntVarP(&month, "month", "M", 0, "calendar month; omit for the whole year")
	cmd.Flags().StringVarP(&typ, "type", "t", "expense", "transaction type (income, expense)")

	return cmd
}

func balancesCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the twelve-month balance series for a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year = time.Now().Year()
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to read transactions: %w", err)
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d", year)))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%5s %12s %12s %12s", "month", "income", "expense", "balance")))
			for _, point := range report.MonthlyBalances(txns, year) {
				fmt.Printf("%5d %12s %12s %12s\n",
					point.Month, formatYen(point.Income),
					formatYen(point.Expense), formatYen(point.Balance))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "calendar year (default: current)")

	return cmd
}
