package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// CatalogHandler serves the tag and ingredient reference data. Both
// collections are small and returned without pagination.
type CatalogHandler struct {
	DB *gorm.DB
}

// ListTags handles GET /api/tags
// @Summary List tags
// @Tags Catalog
// @Produce json
// @Success 200 {array} services.TagView
// @Router /tags [get]
func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := services.ListTags(h.DB)
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]services.TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, services.ProjectTag(t))
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

// RetrieveTag handles GET /api/tags/:id
// @Summary Tag detail
// @Tags Catalog
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} services.TagView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tags/{id} [get]
func (h *CatalogHandler) RetrieveTag(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c)
	}

	tag, err := services.GetTag(h.DB, uint(id))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(services.ProjectTag(*tag))
}

// ListIngredients handles GET /api/ingredients
// @Summary List ingredients
// @Description Optional case-insensitive name prefix filter
// @Tags Catalog
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} services.IngredientView
// @Router /ingredients [get]
func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := services.ListIngredients(h.DB, c.Query("name"))
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]services.IngredientView, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, services.ProjectIngredient(i))
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

// RetrieveIngredient handles GET /api/ingredients/:id
// @Summary Ingredient detail
// @Tags Catalog
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} services.IngredientView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ingredients/{id} [get]
func (h *CatalogHandler) RetrieveIngredient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c)
	}

	ingredient, err := services.GetIngredient(h.DB, uint(id))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(services.ProjectIngredient(*ingredient))
}
