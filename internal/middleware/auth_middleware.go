package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
)

// APIKeyMiddleware guards server-to-server routes with a shared secret.
func APIKeyMiddleware(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).
				JSON(models.ErrorResponse(apperror.CodeValidation, "invalid or missing API key"))
		}
		return c.Next()
	}
}
