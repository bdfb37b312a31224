package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-relay/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes for the relay
// process.
type HealthHandler struct {
	serviceName string
	checks      []dependencyCheck
}

type dependencyCheck struct {
	name string
	ping func(context.Context) error
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		checks: []dependencyCheck{
			{name: "ticket_store", ping: postgres.Ping},
			{name: "session_store", ping: redis.Ping},
		},
	}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
	})
}

// Ready reports whether the relay can accept traffic by pinging the
// ticket store and the session store. The session store is reported but
// relaying works without it, so its failure still fails readiness only
// to surface the degradation.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for _, check := range h.checks {
		if err := check.ping(ctx); err != nil {
			depStatus[check.name] = err.Error()
			ready = false
		} else {
			depStatus[check.name] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"service":      h.serviceName,
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
