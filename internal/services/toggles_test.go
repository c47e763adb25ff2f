package services_test

import (
	"errors"
	"testing"

	"github.com/ekuzmina/foodgram-go/internal/services"
)

func TestFavoriteToggle(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig(t)
	author := createTestUser(t, db, "vera")
	user := createTestUser(t, db, "oleg")
	salt := createTestIngredient(t, db, "salt", "g")
	dinner := createTestTag(t, db, "dinner")
	recipe := createTestRecipe(t, db, cfg, author, "Soup",
		[]services.IngredientAmountInput{{ID: salt.ID, Amount: 1}}, []uint{dinner.ID})

	if err := services.AddFavorite(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	// a second add must conflict, not create a second row
	err := services.AddFavorite(db, user.ID, recipe.ID)
	var conflict *services.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on double add, got %v", err)
	}

	if err := services.RemoveFavorite(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}

	// removing the now-missing row is a conflict too
	err = services.RemoveFavorite(db, user.ID, recipe.ID)
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on double remove, got %v", err)
	}
}

func TestCartToggle(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig(t)
	author := createTestUser(t, db, "vera")
	user := createTestUser(t, db, "oleg")
	salt := createTestIngredient(t, db, "salt", "g")
	dinner := createTestTag(t, db, "dinner")
	recipe := createTestRecipe(t, db, cfg, author, "Soup",
		[]services.IngredientAmountInput{{ID: salt.ID, Amount: 1}}, []uint{dinner.ID})

	if err := services.AddToCart(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	var conflict *services.ConflictError
	if err := services.AddToCart(db, user.ID, recipe.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on double add, got %v", err)
	}

	if err := services.RemoveFromCart(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}
	if err := services.RemoveFromCart(db, user.ID, recipe.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on double remove, got %v", err)
	}
}

// Favorites and cart membership are independent sets for the same pair.
func TestTogglesAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig(t)
	author := createTestUser(t, db, "vera")
	user := createTestUser(t, db, "oleg")
	salt := createTestIngredient(t, db, "salt", "g")
	dinner := createTestTag(t, db, "dinner")
	recipe := createTestRecipe(t, db, cfg, author, "Soup",
		[]services.IngredientAmountInput{{ID: salt.ID, Amount: 1}}, []uint{dinner.ID})

	if err := services.AddFavorite(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if err := services.AddToCart(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("AddToCart after AddFavorite failed: %v", err)
	}
	if err := services.RemoveFavorite(db, user.ID, recipe.ID); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}

	// the cart row must survive the favorite removal
	var count int64
	db.Table("purchases").Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected the cart row to remain, got %d", count)
	}
}
