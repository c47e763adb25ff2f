package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// TokenRequired rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func TokenRequired(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, db, secret)
		if err != nil || user == nil {
			return utils.UnauthorizedResponse(c)
		}
		c.Locals("user", user)
		return c.Next()
	}
}

// TokenOptional resolves the user when a valid token is present and lets the
// request through anonymously otherwise. Read projections use the resolved
// identity for their per-viewer booleans.
func TokenOptional(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, err := resolveUser(c, db, secret); err == nil && user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user from the context, or nil for an
// anonymous request.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func resolveUser(c *fiber.Ctx, db *gorm.DB, secret string) (*models.User, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}

	// Accept both "Bearer <token>" and the djoser-era "Token <token>"
	token := header
	for _, scheme := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(header, scheme) {
			token = strings.TrimPrefix(header, scheme)
			break
		}
	}

	userID, err := utils.ParseToken(secret, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
