package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/export"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all ledger data to a JSON document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			doc, err := export.Export(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to export data: %w", err)
			}
			raw, err := doc.Marshal()
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Println(string(raw))
				return nil
			}
			if err := os.WriteFile(output, raw, 0600); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}

			fmt.Printf("Exported %d transactions and %d categories to %s\n",
				len(doc.Data.Transactions), len(doc.Data.Categories), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func importCmd() *cobra.Command {
	var (
		input string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore ledger data from an exported JSON document",
		Long: `Import replaces ALL existing data with the contents of an export
document. Documents written by a newer version of kakeibo are rejected.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" {
				return fmt.Errorf("an input file is required (--input)")
			}

			raw, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			if !force {
				fmt.Print("This will replace all existing data. Continue? [y/N]: ")
				var response string
				if _, err := fmt.Scanln(&response); err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				if response != "y" && response != "Y" {
					fmt.Println("Import canceled.")
					return nil
				}
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var bar *progressbar.ProgressBar
			stats, err := export.Import(ctx, store, raw, func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "importing")
				}
				_ = bar.Set(done)
			})
			if err != nil {
				if errors.Is(err, export.ErrUnsupportedVersion) || errors.Is(err, export.ErrInvalidDocument) {
					return fmt.Errorf("import rejected: %w", err)
				}
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("Imported %d transactions and %d categories\n",
				stats.Transactions, stats.Categories)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "export document to restore")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
