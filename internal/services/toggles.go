package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
)

// Favorite and cart toggles. The add path inserts blind and lets the unique
// index decide: a pre-check would race against a concurrent identical
// request, and two rows for one (user, recipe) pair must be impossible.

// AddFavorite bookmarks a recipe for the user.
func AddFavorite(db *gorm.DB, userID, recipeID uint) error {
	return addPair(db, &models.Favorite{UserID: userID, RecipeID: recipeID},
		"recipe is already in favorites")
}

// RemoveFavorite removes the bookmark; a missing row is a conflict.
func RemoveFavorite(db *gorm.DB, userID, recipeID uint) error {
	return removePair(db, &models.Favorite{}, userID, recipeID,
		"recipe is not in favorites")
}

// AddToCart puts a recipe into the user's shopping cart.
func AddToCart(db *gorm.DB, userID, recipeID uint) error {
	return addPair(db, &models.Purchase{UserID: userID, RecipeID: recipeID},
		"recipe is already in the shopping cart")
}

// RemoveFromCart takes a recipe out of the cart; a missing row is a conflict.
func RemoveFromCart(db *gorm.DB, userID, recipeID uint) error {
	return removePair(db, &models.Purchase{}, userID, recipeID,
		"recipe is not in the shopping cart")
}

func addPair(db *gorm.DB, row interface{}, conflictReason string) error {
	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ConflictError{Reason: conflictReason}
		}
		return err
	}
	return nil
}

func removePair(db *gorm.DB, model interface{}, userID, recipeID uint, conflictReason string) error {
	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConflictError{Reason: conflictReason}
	}
	return nil
}
