package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"dealerdesk/config"
)

// WebhookAuth guards the inbound provider callbacks with the shared token
// the SMS provider and automation platform present on every request.
func WebhookAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := config.AppConfig.InboundWebhookToken
		if expected == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Webhook intake is not configured",
			})
		}

		token := c.Get("X-Auth-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid webhook token",
			})
		}

		return c.Next()
	}
}
