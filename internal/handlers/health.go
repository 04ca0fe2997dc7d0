package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is any dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthCheck reports 503 when any dependency fails to answer in time.
func HealthCheck(deps map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := "ok"
		services := fiber.Map{}
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				services[name] = "unavailable"
				status = "degraded"
				continue
			}
			services[name] = "connected"
		}

		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"version":  "1.0.0",
			"services": services,
		})
	}
}
