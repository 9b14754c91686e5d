package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one line per request with method, path, status,
// duration and, when a session is attached, the acting branch.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		evt := log.Info().
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds()).
			Err(err)
		if actor := GetActor(c); actor != nil {
			evt = evt.Uint("branch_id", actor.BranchID)
		}
		evt.Msg("request")
		return err
	}
}
