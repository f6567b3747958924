package handlers

import (
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/utils"
)

const localsAccountID = "account_id"

// RequireAccount resolves the already-authenticated account id. Identity and
// session handling live in the platform's gateway; by the time a request gets
// here the X-Account-ID header is trusted.
func RequireAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-Account-ID")
		if raw == "" {
			return utils.SendUnauthorized(c, "No authenticated account")
		}
		id, err := parseInt64(raw)
		if err != nil || id <= 0 {
			return utils.SendUnauthorized(c, "Invalid account identifier")
		}
		c.Locals(localsAccountID, id)
		return c.Next()
	}
}

// RequestLogger logs each request with its outcome and timing.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		slog.Info("Request handled",
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("took", time.Since(start)))
		return err
	}
}
