package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	httpUtil "github.com/sifan077/PowerQR/internal/http/util"
)

const ownerIDKey = "owner_id"

// Auth requires a valid owner bearer token and stores the owner id in locals.
func Auth(tokens *httpUtil.TokenSigner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		ownerID, err := tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(ownerIDKey, ownerID)
		return c.Next()
	}
}

// OwnerID returns the authenticated owner, or "" outside Auth.
func OwnerID(c *fiber.Ctx) string {
	id, _ := c.Locals(ownerIDKey).(string)
	return id
}
