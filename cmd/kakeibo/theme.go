package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/model"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [mode]",
		Short: "Show or set the display theme",
		Long:  `Without arguments, prints the current theme mode. With one argument (system, light, dark, pink, blue), persists it.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 0 {
				mode, err := store.GetTheme(ctx)
				if err != nil {
					return fmt.Errorf("failed to read theme: %w", err)
				}
				fmt.Println(mode)
				return nil
			}

			mode := model.ThemeMode(args[0])
			if !mode.IsValid() {
				return fmt.Errorf("invalid theme mode %q (valid: system, light, dark, pink, blue)", args[0])
			}
			if err := store.SetTheme(ctx, mode); err != nil {
				return fmt.Errorf("failed to save theme: %w", err)
			}

			fmt.Printf("Theme set to %s\n", mode)
			return nil
		},
	}

	return cmd
}
