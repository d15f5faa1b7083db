package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamaji/kakeibo/internal/cli"
	"github.com/hamaji/kakeibo/internal/model"
	"github.com/hamaji/kakeibo/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRenameCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	cmd.AddCommand(categoriesReorderCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cats, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			for _, typ := range []model.TransactionType{model.TypeExpense, model.TypeIncome} {
				fmt.Println(cli.TitleStyle.Render(string(typ)))
				for _, cat := range cats {
					if cat.Type != typ {
						continue
					}
					marker := " "
					if cat.IsDefault {
						marker = "*"
					}
					fmt.Printf("%s %2d  %-12s %s\n", marker, cat.Order, cat.ID, cat.Name)
				}
			}
			fmt.Println(cli.SubtleStyle.Render("* default category (cannot be deleted)"))
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	var (
		icon  string
		color string
		order int
	)

	cmd := &cobra.Command{
		Use:   "add <income|expense> <name>",
		Short: "Create a new category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := model.TransactionType(args[0])
			if !typ.IsValid() {
				return fmt.Errorf("category type must be income or expense, got %q", args[0])
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.SaveCategory(ctx, storage.CategoryInput{
				Name:  args[1],
				Icon:  icon,
				Color: color,
				Type:  typ,
				Order: order,
			})
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Printf("Created category %s (%s)\n", cat.Name, cat.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "icon token")
	cmd.Flags().StringVar(&color, "color", "", "color token")
	cmd.Flags().IntVar(&order, "order", 0, "display order")

	return cmd
}

func categoriesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			name := args[1]
			cat, err := store.UpdateCategory(ctx, args[0], model.CategoryPatch{Name: &name})
			if err != nil {
				return fmt.Errorf("failed to rename category: %w", err)
			}
			if cat == nil {
				return fmt.Errorf("no category with id %s", args[0])
			}

			fmt.Printf("Renamed category %s to %s\n", cat.ID, cat.Name)
			return nil
		},
	}
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Leave at least one category per type; the store does not
			// enforce this.
			cats, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			var target *model.Category
			remaining := 0
			for i := range cats {
				if cats[i].ID == args[0] {
					target = &cats[i]
				}
			}
			if target != nil {
				for _, cat := range cats {
					if cat.Type == target.Type && cat.ID != target.ID {
						remaining++
					}
				}
				if remaining == 0 {
					return fmt.Errorf("cannot delete the last %s category", target.Type)
				}
			}

			removed, err := store.DeleteCategory(ctx, args[0])
			if errors.Is(err, storage.ErrDefaultCategory) {
				return fmt.Errorf("category %s is a default category and cannot be deleted", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			if !removed {
				return fmt.Errorf("no category with id %s", args[0])
			}

			fmt.Printf("Deleted category %s\n", args[0])
			return nil
		},
	}
}

func categoriesReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id=order> [<id=order> ...]",
		Short: "Change category display order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders := make([]model.CategoryOrder, 0, len(args))
			for _, arg := range args {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("expected id=order, got %q", arg)
				}
				order, err := strconv.Atoi(parts[1])
				if err != nil {
					return fmt.Errorf("order must be an integer in %q: %w", arg, err)
				}
				orders = append(orders, model.CategoryOrder{ID: parts[0], Order: order})
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ReorderCategories(ctx, orders); err != nil {
				return fmt.Errorf("failed to reorder categories: %w", err)
			}

			fmt.Printf("Reordered %d categories\n", len(orders))
			return nil
		},
	}
}
