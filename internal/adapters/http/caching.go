package http

import (
	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses.
// The lap counter changes with every report, so nothing live is cached;
// the reference point never changes once captured.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		var ttl string
		switch c.Path() {
		case "/v1/laps/reference":
			if c.Response().StatusCode() == fiber.StatusOK {
				ttl = "public, max-age=86400, immutable"
			} else {
				ttl = "no-store"
			}
		case "/v1/health", "/v1/ready":
			ttl = "public, max-age=10"
		default:
			ttl = "no-store"
		}

		c.Set(fiber.HeaderCacheControl, ttl)
		return err
	}
}
