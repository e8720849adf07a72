package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is stamped at build time with -ldflags "-X ...http.Version=...".
var Version = "dev"

// HealthHandler is the liveness endpoint. It also reports how purchase orders
// are created and whether write routes require a token.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	purchases := "inline"
	if deps.Purchases != nil {
		purchases = "workflow"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"uptime":    time.Since(startedAt).Round(time.Second).String(),
			"version":   Version,
			"purchases": purchases,
			"auth":      len(deps.Auth.Secret) > 0,
		})
	}
}

var (
	errNotConfigured = errors.New("not configured")
	errDisconnected  = errors.New("disconnected")
)

type readinessCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) (string, error)
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	var checks []readinessCheck
	if deps.DB == nil {
		checks = append(checks, readinessCheck{name: "database", required: true,
			check: func(context.Context) (string, error) { return "not configured", errNotConfigured }})
		return checks
	}
	checks = append(checks, readinessCheck{name: "database", required: true,
		check: func(ctx context.Context) (string, error) { return "ok", deps.DB.Pool.Ping(ctx) }})

	// Without PostGIS the geometry columns cannot be written, scalars still can.
	if deps.Map != nil {
		checks = append(checks, readinessCheck{name: "postgis",
			check: func(ctx context.Context) (string, error) {
				v, err := deps.Map.PostGISVersion(ctx)
				if err == nil && v == "" {
					return "unavailable", errNotConfigured
				}
				return v, err
			}})
	}
	if deps.NATS != nil {
		checks = append(checks, readinessCheck{name: "nats", required: true,
			check: func(context.Context) (string, error) {
				if !deps.NATS.IsConnected() {
					return "disconnected", errDisconnected
				}
				return "ok", nil
			}})
	}
	if deps.Cache != nil {
		checks = append(checks, readinessCheck{name: "cache", required: true,
			check: func(ctx context.Context) (string, error) { return "ok", deps.Cache.Ping(ctx) }})
	}
	return checks
}

// ReadyHandler is the readiness endpoint: 503 when a required dependency fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range readinessChecks(deps) {
			detail, err := chk.check(ctx)
			switch {
			case err == nil:
				results[chk.name] = detail
			case errors.Is(err, errNotConfigured), errors.Is(err, errDisconnected):
				results[chk.name] = detail
			default:
				results[chk.name] = "error: " + err.Error()
			}
			if err != nil && chk.required {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
