package health

import (
	"context"

	healthsvc "treasury-backend/internal/application/health"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers holds dependencies for the health endpoint.
type Handlers struct {
	Rdb *redis.Client
	DB  healthsvc.DBPinger
}

// JSON GET /api/health — dependency status plus traffic counters.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(context.Background(), h.Rdb, h.DB)
	return c.JSON(fiber.Map{
		"service":      "treasury-api",
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}
