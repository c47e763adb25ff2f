package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
)

// ShoppingListItem is one aggregated line: an ingredient identity and the
// summed amount over every recipe in the cart. The same name under two
// different units stays two separate items.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// BuildShoppingList aggregates the user's cart with one grouped-sum query so
// the result is consistent under concurrent cart mutation. An empty cart is
// a conflict, not an empty list.
func BuildShoppingList(db *gorm.DB, userID uint) ([]ShoppingListItem, error) {
	var cartSize int64
	if err := db.Model(&models.Purchase{}).
		Where("user_id = ?", userID).
		Count(&cartSize).Error; err != nil {
		return nil, err
	}
	if cartSize == 0 {
		return nil, &ConflictError{Reason: "shopping cart is empty"}
	}

	var items []ShoppingListItem
	err := db.Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN purchases ON purchases.recipe_id = recipe_ingredients.recipe_id").
		Where("purchases.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenderShoppingList formats the aggregated items as the plain-text download
// body: a header line, then one "- <name> — <total><unit>" line per item.
func RenderShoppingList(items []ShoppingListItem) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "Shopping list:\n")
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s — %d%s", item.Name, item.Total, item.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}
