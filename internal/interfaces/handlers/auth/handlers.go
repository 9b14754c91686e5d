package auth

import (
	"context"

	authsvc "treasury-backend/internal/application/auth"
	"treasury-backend/internal/middleware"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers holds dependencies for the session endpoints.
type Handlers struct {
	Service *authsvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// Login POST /api/login — verify credentials, rotate the session id, set
// the cookie and return the branch identity.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Name and password are required", fiber.StatusBadRequest, nil)
	}

	branch, err := h.Service.Login(c.Context(), req.Name, req.Password)
	if err != nil {
		return err
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		BranchID: branch.ID,
		Name:     branch.Name,
		IsAdmin:  branch.IsAdmin,
	})

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"branch": fiber.Map{
			"id":       branch.ID,
			"name":     branch.Name,
			"is_admin": branch.IsAdmin,
		},
	}, nil)
}

// Me GET /api/me — return the session branch.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{
		"branch": fiber.Map{
			"id":       actor.BranchID,
			"name":     actor.Name,
			"is_admin": actor.IsAdmin,
		},
	}, nil)
}

// Logout POST /api/logout — drop the Redis session and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

// ChangePassword POST /api/change-password — swap the session branch's
// credential.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Current and new passwords are required", fiber.StatusBadRequest, nil)
	}

	if err := h.Service.ChangePassword(c.Context(), actor.BranchID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return response.Success(c, "Password changed successfully", nil, nil)
}
