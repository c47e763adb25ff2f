package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/database"
	"github.com/ekuzmina/foodgram-go/internal/handlers"
	"github.com/ekuzmina/foodgram-go/internal/middleware"
	"github.com/ekuzmina/foodgram-go/internal/types"

	_ "github.com/ekuzmina/foodgram-go/docs" // Swagger docs
)

// @title Foodgram API
// @version 1.0.0
// @description Recipe sharing backend with favorites, subscriptions and a shopping cart

// @contact.name API Support
// @contact.url https://github.com/ekuzmina/foodgram-go

// @license.name MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // recipe images arrive base64-encoded in JSON
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("foodgram")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded recipe images and avatars
	app.Static("/media", cfg.MediaRoot)

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	recipeHandler := &handlers.RecipeHandler{DB: db, Cfg: cfg}
	catalogHandler := &handlers.CatalogHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	required := middleware.TokenRequired(db, cfg.JWTSecret)
	optional := middleware.TokenOptional(db, cfg.JWTSecret)

	// Short links resolve outside the API prefix
	app.Get("/s/:code", recipeHandler.ResolveShortLink)

	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)

	// Token auth
	api.Post("/auth/token/login", authHandler.Login)
	api.Post("/auth/token/logout", required, authHandler.Logout)

	// Users. Fixed paths are registered before /users/:id so "me" and
	// "subscriptions" are not swallowed by the id parameter.
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

	// Reference data
	api.Get("/tags", catalogHandler.ListTags)
	api.Get("/tags/:id", catalogHandler.RetrieveTag)
	api.Get("/ingredients", catalogHandler.ListIngredients)
	api.Get("/ingredients/:id", catalogHandler.RetrieveIngredient)

	// Recipes. download_shopping_cart must precede the :id routes.
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

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "Not found.",
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": message,
	})
}
