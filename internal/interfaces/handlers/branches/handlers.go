package branches

import (
	branchsvc "treasury-backend/internal/application/branches"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the congregation roster (admin surface).
type Handlers struct {
	Service *branchsvc.Service
}

// List GET /api/admin/branches — every non-admin congregation.
func (h *Handlers) List(c *fiber.Ctx) error {
	branches, err := h.Service.ListBranches(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Branches fetched successfully", branches, nil)
}

// Get GET /api/admin/branches/:id — one congregation.
func (h *Handlers) Get(c *fiber.Ctx) error {
	branchID, err := c.ParamsInt("id")
	if err != nil || branchID < 1 {
		return response.Error(c, "Invalid branch id", fiber.StatusBadRequest, nil)
	}
	branch, err := h.Service.GetBranch(c.Context(), uint(branchID))
	if err != nil {
		return err
	}
	return response.Success(c, "Branch fetched successfully", branch, nil)
}

// Rename PUT /api/admin/branches/:id — change a congregation's name.
func (h *Handlers) Rename(c *fiber.Ctx) error {
	branchID, err := c.ParamsInt("id")
	if err != nil || branchID < 1 {
		return response.Error(c, "Invalid branch id", fiber.StatusBadRequest, nil)
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	branch, err := h.Service.RenameBranch(c.Context(), uint(branchID), req.Name)
	if err != nil {
		return err
	}
	return response.Success(c, "Branch updated successfully", branch, nil)
}
