package storage

import (
	"time"

	"github.com/hamaji/kakeibo/internal/model"
)

// defaultCategorySpec describes one seeded category. The fixed ids keep
// seeding idempotent across backends and runs.
type defaultCategorySpec struct {
	id    string
	name  string
	icon  string
	color string
	typ   model.TransactionType
	order int
}

var defaultCategorySpecs = []defaultCategorySpec{
	{"cat_1", "食費", "restaurant", "#FF8A65", model.TypeExpense, 1},
	{"cat_2", "交通費", "train", "#4FC3F7", model.TypeExpense, 2},
	{"cat_3", "日用品", "shopping_cart", "#AED581", model.TypeExpense, 3},
	{"cat_4", "趣味・娯楽", "sports_esports", "#BA68C8", model.TypeExpense, 4},
	{"cat_5", "医療費", "local_hospital", "#E57373", model.TypeExpense, 5},
	{"cat_6", "水道光熱費", "bolt", "#FFD54F", model.TypeExpense, 6},
	{"cat_7", "その他", "more_horiz", "#90A4AE", model.TypeExpense, 7},
	{"cat_8", "給料", "payments", "#4DB6AC", model.TypeIncome, 1},
	{"cat_9", "賞与", "card_giftcard", "#F06292", model.TypeIncome, 2},
	{"cat_10", "副収入", "trending_up", "#7986CB", model.TypeIncome, 3},
	{"cat_11", "その他", "more_horiz", "#90A4AE", model.TypeIncome, 4},
}

// DefaultCategories returns the category set seeded at first run, with
// creation timestamps set to now.
func DefaultCategories(now time.Time) []model.Category {
	cats := make([]model.Category, 0, len(defaultCategorySpecs))
	for _, spec := range defaultCategorySpecs {
		cats = append(cats, model.Category{
			ID:        spec.id,
			Name:      spec.name,
			Icon:      spec.icon,
			Color:     spec.color,
			Type:      spec.typ,
			Order:     spec.order,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return cats
}
