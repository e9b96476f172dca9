package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CORS sets permissive cross-origin headers on every response. Browsers
// scanning from arbitrary landing pages must be able to call the gateway.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Set("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-ID")
		c.Set("Access-Control-Max-Age", "86400")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
