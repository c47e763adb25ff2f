package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/middleware"
	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// RecipeHandler handles recipe routes
type RecipeHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// List handles GET /api/recipes
// @Summary List recipes
// @Description Newest first, filterable by author, tag slug, favorites and cart membership
// @Tags Recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query string false "Author id (repeatable)"
// @Param tags query string false "Tag slug (repeatable)"
// @Param is_favorited query int false "Only favorited (authenticated)"
// @Param is_in_shopping_cart query int false "Only cart members (authenticated)"
// @Success 200 {object} services.Page
// @Router /recipes [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	p := parsePage(c, h.Cfg.PageSize)

	filter := services.RecipeFilter{
		Authors:        parseUintList(parseMultiQuery(c, "author")),
		TagSlugs:       parseMultiQuery(c, "tags"),
		Favorited:      boolQuery(c, "is_favorited"),
		InShoppingCart: boolQuery(c, "is_in_shopping_cart"),
	}
	if viewer := middleware.CurrentUser(c); viewer != nil {
		filter.ViewerID = viewer.ID
	}

	recipes, total, err := services.ListRecipes(h.DB, filter, p.Offset, p.Limit)
	if err != nil {
		return serviceError(c, err)
	}

	views, err := services.ProjectRecipes(h.DB, recipes, h.Cfg.BaseURL, filter.ViewerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(makePage(c, p, total, views))
}

// Create handles POST /api/recipes
// @Summary Create a recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Param body body services.RecipeInput true "Recipe payload"
// @Success 201 {object} services.RecipeView
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input services.RecipeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	recipe, err := services.CreateRecipe(h.DB, h.Cfg, user, input)
	if err != nil {
		return serviceError(c, err)
	}

	views, err := services.ProjectRecipes(h.DB, []models.Recipe{*recipe}, h.Cfg.BaseURL, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(views[0])
}

// Retrieve handles GET /api/recipes/:id
// @Summary Recipe detail
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id} [get]
func (h *RecipeHandler) Retrieve(c *fiber.Ctx) error {
	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	views, err := services.ProjectRecipes(h.DB, []models.Recipe{*recipe}, h.Cfg.BaseURL, viewerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(views[0])
}

// Update handles PATCH /api/recipes/:id
// @Summary Update a recipe
// @Description Author only; a supplied ingredient or tag list replaces the whole set
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param body body services.RecipeInput true "Recipe payload"
// @Success 200 {object} services.RecipeView
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id} [patch]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}
	if recipe.AuthorID != user.ID {
		return utils.ForbiddenResponse(c)
	}

	var input services.RecipeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	updated, err := services.UpdateRecipe(h.DB, h.Cfg, recipe, input)
	if err != nil {
		return serviceError(c, err)
	}

	views, err := services.ProjectRecipes(h.DB, []models.Recipe{*updated}, h.Cfg.BaseURL, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(views[0])
}

// Delete handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Tags Recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}
	if recipe.AuthorID != user.ID {
		return utils.ForbiddenResponse(c)
	}

	if err := services.DeleteRecipe(h.DB, h.Cfg.MediaRoot, recipe); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Favorite handles POST /api/recipes/:id/favorite
// @Summary Bookmark a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.ShortRecipeView
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id}/favorite [post]
func (h *RecipeHandler) Favorite(c *fiber.Ctx) error {
	return h.togglePair(c, services.AddFavorite)
}

// Unfavorite handles DELETE /api/recipes/:id/favorite
// @Summary Remove a bookmark
// @Tags Recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id}/favorite [delete]
func (h *RecipeHandler) Unfavorite(c *fiber.Ctx) error {
	return h.untogglePair(c, services.RemoveFavorite)
}

// AddToCart handles POST /api/recipes/:id/shopping_cart
// @Summary Put a recipe into the shopping cart
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.ShortRecipeView
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id}/shopping_cart [post]
func (h *RecipeHandler) AddToCart(c *fiber.Ctx) error {
	return h.togglePair(c, services.AddToCart)
}

// RemoveFromCart handles DELETE /api/recipes/:id/shopping_cart
// @Summary Take a recipe out of the shopping cart
// @Tags Recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/{id}/shopping_cart [delete]
func (h *RecipeHandler) RemoveFromCart(c *fiber.Ctx) error {
	return h.untogglePair(c, services.RemoveFromCart)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
// @Summary Download the aggregated shopping list
// @Tags Recipes
// @Produce plain
// @Success 200 {string} string
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /recipes/download_shopping_cart [get]
func (h *RecipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	items, err := services.BuildShoppingList(h.DB, user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="shopping_list.txt"`)
	return c.Status(fiber.StatusOK).SendString(services.RenderShoppingList(items))
}

// GetLink handles GET /api/recipes/:id/get-link
// @Summary Short link for a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/get-link [get]
func (h *RecipeHandler) GetLink(c *fiber.Ctx) error {
	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}

	link := strings.TrimSuffix(h.Cfg.BaseURL, "/") + "/s/" + recipe.ShortCode
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"short-link": link,
	})
}

// ResolveShortLink handles GET /s/:code
// @Summary Resolve a recipe short link
// @Tags Recipes
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /s/{code} [get]
func (h *RecipeHandler) ResolveShortLink(c *fiber.Ctx) error {
	recipe, err := services.GetRecipeByShortCode(h.DB, c.Params("code"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/recipes/%d", recipe.ID), fiber.StatusFound)
}

func (h *RecipeHandler) recipeFromPath(c *fiber.Ctx) (*models.Recipe, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, services.ErrNotFound
	}
	return services.GetRecipe(h.DB, uint(id))
}

func (h *RecipeHandler) togglePair(c *fiber.Ctx, add func(*gorm.DB, uint, uint) error) error {
	user := middleware.CurrentUser(c)

	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}

	if err := add(h.DB, user.ID, recipe.ID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(services.ProjectShortRecipe(*recipe, h.Cfg.BaseURL))
}

func (h *RecipeHandler) untogglePair(c *fiber.Ctx, remove func(*gorm.DB, uint, uint) error) error {
	user := middleware.CurrentUser(c)

	recipe, err := h.recipeFromPath(c)
	if err != nil {
		return serviceError(c, err)
	}

	if err := remove(h.DB, user.ID, recipe.ID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
