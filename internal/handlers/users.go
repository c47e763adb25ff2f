package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/middleware"
	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// UserHandler handles user and subscription routes
type UserHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Create handles POST /api/users
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration payload"
// @Success 201 {object} services.UserView
// @Failure 400 {object} map[string][]string
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	user, err := services.CreateUser(h.DB, input)
	if err != nil {
		return serviceError(c, err)
	}

	view, err := services.ProjectUser(h.DB, *user, h.Cfg.BaseURL, 0)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// List handles GET /api/users
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.Page
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	p := parsePage(c, h.Cfg.PageSize)
	viewer := middleware.CurrentUser(c)
	viewerID := uint(0)
	if viewer != nil {
		viewerID = viewer.ID
	}

	users, total, err := services.ListUsers(h.DB, p.Offset, p.Limit)
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]services.UserView, 0, len(users))
	for _, user := range users {
		view, err := services.ProjectUser(h.DB, user, h.Cfg.BaseURL, viewerID)
		if err != nil {
			return serviceError(c, err)
		}
		views = append(views, view)
	}
	return c.Status(fiber.StatusOK).JSON(makePage(c, p, total, views))
}

// Me handles GET /api/users/me
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Success 200 {object} services.UserView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	view, err := services.ProjectUser(h.DB, *user, h.Cfg.BaseURL, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// Retrieve handles GET /api/users/:id
// @Summary User profile
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) Retrieve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c)
	}

	user, err := services.GetUser(h.DB, uint(id))
	if err != nil {
		return serviceError(c, err)
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	view, err := services.ProjectUser(h.DB, *user, h.Cfg.BaseURL, viewerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

type setPasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetPassword handles POST /api/users/set_password
// @Summary Change the current user's password
// @Tags Users
// @Accept json
// @Param body body setPasswordInput true "Password change payload"
// @Success 204
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/set_password [post]
func (h *UserHandler) SetPassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input setPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	if err := services.SetPassword(h.DB, user, input.CurrentPassword, input.NewPassword); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type avatarInput struct {
	Avatar string `json:"avatar"`
}

// SetAvatar handles PUT /api/users/me/avatar
// @Summary Set the current user's avatar
// @Description Accepts a base64 data URI (JPEG or PNG)
// @Tags Users
// @Accept json
// @Produce json
// @Param body body avatarInput true "Avatar payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me/avatar [put]
func (h *UserHandler) SetAvatar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input avatarInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	if err := services.SetAvatar(h.DB, user, h.Cfg.MediaRoot, input.Avatar); err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"avatar": utils.MediaURL(h.Cfg.BaseURL, user.Avatar),
	})
}

// DeleteAvatar handles DELETE /api/users/me/avatar
// @Summary Remove the current user's avatar
// @Tags Users
// @Success 204
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := services.DeleteAvatar(h.DB, user, h.Cfg.MediaRoot); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscriptions handles GET /api/users/subscriptions
// @Summary Authors the current user follows
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Max recipes per author"
// @Success 200 {object} services.Page
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/subscriptions [get]
func (h *UserHandler) Subscriptions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	p := parsePage(c, h.Cfg.PageSize)
	recipesLimit := c.QueryInt("recipes_limit", 0)

	views, total, err := services.ListSubscriptions(h.DB, h.Cfg.BaseURL, user, p.Offset, p.Limit, recipesLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(makePage(c, p, total, views))
}

// Subscribe handles POST /api/users/:id/subscribe
// @Summary Follow an author
// @Tags Users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Max recipes in the response"
// @Success 201 {object} services.SubscriptionView
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{id}/subscribe [post]
func (h *UserHandler) Subscribe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c)
	}
	recipesLimit := c.QueryInt("recipes_limit", 0)

	view, err := services.Subscribe(h.DB, h.Cfg.BaseURL, user, uint(id), recipesLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
// @Summary Unfollow an author
// @Tags Users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} utils.ConflictResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{id}/subscribe [delete]
func (h *UserHandler) Unsubscribe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.NotFoundResponse(c)
	}

	if err := services.Unsubscribe(h.DB, user, uint(id)); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
