package metadata

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryVegetables    Category = "VEGETABLES"
	CategoryFruits        Category = "FRUITS"
	CategoryDairy         Category = "DAIRY"
	CategoryMeat          Category = "MEAT"
	CategoryGrains        Category = "GRAINS"
	CategoryPreparedMeals Category = "PREPARED_MEALS"
	CategoryBakery        Category = "BAKERY"
	CategoryBeverages     Category = "BEVERAGES"
	CategoryOthers        Category = "OTHERS"
)

var categories = []Category{
	CategoryVegetables,
	CategoryFruits,
	CategoryDairy,
	CategoryMeat,
	CategoryGrains,
	CategoryPreparedMeals,
	CategoryBakery,
	CategoryBeverages,
	CategoryOthers,
}

// NormalizeCategory upper-cases and trims a raw category value without validating it.
func NormalizeCategory(value string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(value)))
}

func NewCategory(value string) (Category, error) {
	category := NormalizeCategory(value)
	if !category.IsValid() {
		return category, fmt.Errorf("invalid category: %s, valid values are: %v", value, categories)
	}

	return category, nil
}

func (c Category) IsValid() bool {
	for _, category := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func Categories() []Category {
	return append([]Category(nil), categories...)
}
