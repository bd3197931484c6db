package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler answers liveness probes without touching any dependency.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": "dev",
		})
	}
}

// readinessCheck probes one dependency. A nil probe means the dependency is
// not configured. Only required checks can make the gateway not ready when
// missing; any configured check that fails does.
type readinessCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) (string, error)
}

func (d *Dependencies) readinessChecks() []readinessCheck {
	checks := []readinessCheck{{name: "backend", required: true}}
	if d.Session != nil {
		checks[0].probe = func(ctx context.Context) (string, error) {
			status, err := d.Session.State(ctx)
			return status.StateText, err
		}
	}

	db := readinessCheck{name: "database"}
	if d.DB != nil {
		db.probe = func(ctx context.Context) (string, error) { return "ok", d.DB.Ping(ctx) }
	}
	nc := readinessCheck{name: "nats"}
	if d.NATS != nil {
		nc.probe = func(ctx context.Context) (string, error) {
			if !d.NATS.IsConnected() {
				return "disconnected", errDisconnected
			}
			return "ok", nil
		}
	}
	cache := readinessCheck{name: "cache"}
	if d.Cache != nil {
		cache.probe = func(ctx context.Context) (string, error) { return "ok", d.Cache.Ping(ctx) }
	}
	return append(checks, db, nc, cache)
}

// ReadyHandler runs every readiness check within 3s and answers 503 when
// one fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range deps.readinessChecks() {
			if chk.probe == nil {
				results[chk.name] = "not configured"
				ready = ready && !chk.required
				continue
			}
			text, err := chk.probe(ctx)
			switch {
			case errors.Is(err, errDisconnected):
				results[chk.name] = text
				ready = false
			case err != nil:
				results[chk.name] = "error: " + err.Error()
				ready = false
			default:
				results[chk.name] = text
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
