package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/recipe-book/recipe-book/internal/persistence"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName   string
	version       string
	storageDriver string
	storage       Pinger
	redis         *persistence.Redis
}

// NewHealthHandler returns a new handler instance. redis may be nil when
// rate limit counters are kept in memory.
func NewHealthHandler(serviceName, version, storageDriver string, storage Pinger, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName:   serviceName,
		version:       version,
		storageDriver: storageDriver,
		storage:       storage,
		redis:         redis,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.storage.Ping(ctx); err != nil {
		depStatus[h.storageDriver] = err.Error()
		ready = false
	} else {
		depStatus[h.storageDriver] = "ok"
	}

	if h.redis == nil {
		depStatus["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
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
