package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// AuthHandler handles token issuance
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login
// @Summary Obtain an auth token
// @Description Exchange email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginInput true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/token/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestResponse(c, "invalid input")
	}

	user, err := services.Authenticate(h.DB, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.BadRequestResponse(c, "unable to log in with provided credentials")
		}
		return serviceError(c, err)
	}

	token, err := utils.GenerateToken(h.Cfg.JWTSecret, user.ID,
		time.Duration(h.Cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"auth_token": token,
	})
}

// Logout handles POST /api/auth/token/logout
// @Summary Discard the auth token
// @Tags Auth
// @Success 204
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/token/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	// Tokens are stateless; the client drops its copy.
	return c.SendStatus(fiber.StatusNoContent)
}
