package funds

import (
	fundsvc "treasury-backend/internal/application/funds"
	"treasury-backend/internal/middleware"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes fund listings, creation and the reconciliation check.
type Handlers struct {
	Service *fundsvc.Service
}

// List GET /api/funds — funds visible to the session branch, system fund
// first.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	views, err := h.Service.ListFunds(c.Context(), actor.BranchID, actor.IsAdmin)
	if err != nil {
		return err
	}
	return response.Success(c, "Funds fetched successfully", views, nil)
}

// Create POST /api/funds — provision a named fund for the session branch.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	fund, err := h.Service.CreateFund(c.Context(), actor.BranchID, req.Name, req.Type)
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "Fund created successfully", fund, nil)
}

// Types GET /api/funds/types — the entry types a posting form may offer.
func (h *Handlers) Types(c *fiber.Ctx) error {
	return response.Success(c, "Fund types fetched successfully", h.Service.ListFundTypes(), nil)
}

// Balance GET /api/funds/balance — the session branch's total cached
// balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Service.BranchBalance(c.Context(), actor.BranchID)
	if err != nil {
		return err
	}
	return response.Success(c, "Balance fetched successfully", fiber.Map{"balance": balance}, nil)
}

// LastBalances GET /api/admin/branches/:id/fund-balances — a branch's
// funds with balances reconstructed from entry snapshots.
func (h *Handlers) LastBalances(c *fiber.Ctx) error {
	branchID, err := c.ParamsInt("id")
	if err != nil || branchID < 1 {
		return response.Error(c, "Invalid branch id", fiber.StatusBadRequest, nil)
	}
	views, err := h.Service.BranchFundsWithLastBalance(c.Context(), uint(branchID))
	if err != nil {
		return err
	}
	return response.Success(c, "Fund balances fetched successfully", views, nil)
}

// Reconcile POST /api/admin/funds/:id/reconcile — compare a fund's cached
// balance against its entry history.
func (h *Handlers) Reconcile(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	fundID, err := c.ParamsInt("id")
	if err != nil || fundID < 1 {
		return response.Error(c, "Invalid fund id", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.Reconcile(c.Context(), actor.BranchID, uint(fundID))
	if err != nil {
		return err
	}
	return response.Success(c, "Reconciliation completed", result, nil)
}
