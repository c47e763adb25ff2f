package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/handlers"
	"github.com/ekuzmina/foodgram-go/internal/middleware"
	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/types"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

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

// setupTestApp wires the full route table against an in-memory database.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{
		BaseURL:             "http://localhost:8000",
		JWTSecret:           "test-secret",
		TokenTTLHours:       1,
		MediaRoot:           t.TempDir(),
		PageSize:            6,
		MaxCookingTime:      32000,
		MaxIngredientAmount: 32000,
	}

	app := fiber.New()

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	recipeHandler := &handlers.RecipeHandler{DB: db, Cfg: cfg}
	catalogHandler := &handlers.CatalogHandler{DB: db}

	required := middleware.TokenRequired(db, cfg.JWTSecret)
	optional := middleware.TokenOptional(db, cfg.JWTSecret)

	app.Get("/s/:code", recipeHandler.ResolveShortLink)

	api := app.Group("/api")
	api.Post("/auth/token/login", authHandler.Login)
	api.Post("/auth/token/logout", required, authHandler.Logout)

	users := api.Group("/users")
	users.Post("/", userHandler.Create)
	users.Get("/", optional, userHandler.List)
	users.Get("/me", required, userHandler.Me)
	users.Post("/set_password", required, userHandler.SetPassword)
	users.Put("/me/avatar", required, userHandler.SetAvatar)
	users.Delete("/me/avatar", required, userHandler.DeleteAvatar)
	users.Get("/subscriptions", required, userHandler.Subscriptions)
	users.Get("/:id", optional, userHandler.Retrieve)
	users.Post("/:id/subscribe", required, userHandler.Subscribe)
	users.Delete("/:id/subscribe", required, userHandler.Unsubscribe)

	api.Get("/tags", catalogHandler.ListTags)
	api.Get("/tags/:id", catalogHandler.RetrieveTag)
	api.Get("/ingredients", catalogHandler.ListIngredients)
	api.Get("/ingredients/:id", catalogHandler.RetrieveIngredient)

	recipes := api.Group("/recipes")
	recipes.Get("/download_shopping_cart", required, recipeHandler.DownloadShoppingCart)
	recipes.Post("/", required, recipeHandler.Create)
	recipes.Get("/", optional, recipeHandler.List)
	recipes.Get("/:id", optional, recipeHandler.Retrieve)
	recipes.Patch("/:id", required, recipeHandler.Update)
	recipes.Delete("/:id", required, recipeHandler.Delete)
	recipes.Get("/:id/get-link", recipeHandler.GetLink)
	recipes.Post("/:id/favorite", required, recipeHandler.Favorite)
	recipes.Delete("/:id/favorite", required, recipeHandler.Unfavorite)
	recipes.Post("/:id/shopping_cart", required, recipeHandler.AddToCart)
	recipes.Delete("/:id/shopping_cart", required, recipeHandler.RemoveFromCart)

	return app, db, cfg
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

func authHeader(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()

	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return "Bearer " + token
}

// createTestRecipe seeds a tag, an ingredient and one recipe via the service.
func createTestRecipe(t *testing.T, db *gorm.DB, cfg *config.Config, author *models.User, name string) *models.Recipe {
	t.Helper()

	tag := models.Tag{Name: name + "-tag", Slug: name + "-tag"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	ingredient := models.Ingredient{Name: name + "-ingredient", MeasurementUnit: "g"}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("Failed to create ingredient: %v", err)
	}

	ingredients := []services.IngredientAmountInput{{ID: ingredient.ID, Amount: 5}}
	tags := types.FlexList[uint]{tag.ID}
	recipe, err := services.CreateRecipe(db, cfg, author, services.RecipeInput{
		Name:        name,
		Image:       testImageURI,
		Text:        "Cook it",
		CookingTime: 30,
		Ingredients: &ingredients,
		Tags:        &tags,
	})
	if err != nil {
		t.Fatalf("Failed to create test recipe: %v", err)
	}
	return recipe
}

// request executes a JSON request against the test app and decodes the body
// into a generic map. Bodies that are not JSON objects decode to nil.
func request(t *testing.T, app *fiber.App, method, target string, body interface{}, auth string) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}
