package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler checks NATS and cache connectivity. The service is ready
// once both the position and the outbound connections are up; the status
// cache is reported but optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// NATS, both directions
		for name, tr := range map[string]Transport{
			"nats_positions": deps.Positions,
			"nats_outbound":  deps.Outbound,
		} {
			switch {
			case tr == nil:
				checks[name] = "not configured"
				allOK = false
			case tr.IsConnected():
				checks[name] = "ok"
			default:
				checks[name] = "disconnected"
				allOK = false
			}
		}

		// Valkey status cache
		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		// Lap core
		if deps.Laps != nil {
			if _, ok := deps.Laps.Reference(); ok {
				checks["reference"] = "captured"
			} else {
				checks["reference"] = "waiting"
			}
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
