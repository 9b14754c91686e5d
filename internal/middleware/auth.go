package middleware

import (
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// Actor is the authenticated branch extracted from the session.
type Actor struct {
	BranchID uint
	Name     string
	IsAdmin  bool
}

// RequireAuth ensures a branch is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetActor(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session branch is the administrative one.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !actor.IsAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// GetActor returns the session branch from Locals, or nil if not logged in.
// Session data round-trips through JSON, so numbers arrive as float64.
func GetActor(c *fiber.Ctx) *Actor {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok || m == nil {
		return nil
	}
	var id uint
	switch v := m["branch_id"].(type) {
	case float64:
		id = uint(v)
	case int:
		id = uint(v)
	case uint:
		id = v
	default:
		return nil
	}
	if id == 0 {
		return nil
	}
	name, _ := m["name"].(string)
	isAdmin, _ := m["is_admin"].(bool)
	return &Actor{BranchID: id, Name: name, IsAdmin: isAdmin}
}
