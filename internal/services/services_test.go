package services_test

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/types"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// tiny valid PNG payload used wherever a write needs an image
const testImageURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.Purchase{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// testConfig returns a config with media writes redirected to a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:             "http://localhost:8000",
		JWTSecret:           "test-secret",
		TokenTTLHours:       1,
		MediaRoot:           t.TempDir(),
		PageSize:            6,
		MaxCookingTime:      32000,
		MaxIngredientAmount: 32000,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("Str0ngPass!")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func createTestTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Slug: name}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create test tag: %v", err)
	}
	return &tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("Failed to create test ingredient: %v", err)
	}
	return &ingredient
}

// createTestRecipe persists a recipe through the service so associations and
// the short code are set up the same way production writes are.
func createTestRecipe(t *testing.T, db *gorm.DB, cfg *config.Config, author *models.User, name string, ingredients []services.IngredientAmountInput, tagIDs []uint) *models.Recipe {
	t.Helper()

	tags := types.FlexList[uint](tagIDs)
	input := services.RecipeInput{
		Name:        name,
		Image:       testImageURI,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 30,
		Ingredients: &ingredients,
		Tags:        &tags,
	}
	recipe, err := services.CreateRecipe(db, cfg, author, input)
	if err != nil {
		t.Fatalf("Failed to create test recipe: %v", err)
	}
	return recipe
}
