package entries

import (
	"strconv"

	ledgersvc "treasury-backend/internal/application/ledger"
	reportsvc "treasury-backend/internal/application/reports"
	"treasury-backend/internal/middleware"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handlers exposes the ledger entry surface: posting, correcting and
// listing entries.
type Handlers struct {
	Ledger  *ledgersvc.Service
	Reports *reportsvc.Service
}

// PostEntry POST /api/entries — post one ledger entry for the session
// branch.
func (h *Handlers) PostEntry(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		Type        string          `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		PersonName  string          `json:"person_name"`
		FundID      *uint           `json:"fund_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	entry, err := h.Ledger.PostEntry(c.Context(), ledgersvc.Caller{
		BranchID: actor.BranchID,
		IsAdmin:  actor.IsAdmin,
	}, ledgersvc.PostEntryInput{
		Kind:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		PersonName:  req.PersonName,
		FundID:      req.FundID,
	})
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "Entry posted successfully", entry, nil)
}

// UpdateEntry PUT /api/entries/:id — correct an entry's amount,
// description and counterparty.
func (h *Handlers) UpdateEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil || entryID < 1 {
		return response.Error(c, "Invalid entry id", fiber.StatusBadRequest, nil)
	}
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		PersonName  string          `json:"person_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	entry, err := h.Ledger.UpdateEntry(c.Context(), uint(entryID), req.Amount, req.Description, req.PersonName)
	if err != nil {
		return err
	}
	return response.Success(c, "Entry updated successfully", entry, nil)
}

// ListMine GET /api/entries?fund_id= — the session branch's entries,
// newest first.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var fundID *uint
	if raw := c.Query("fund_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return response.Error(c, "Invalid fund id", fiber.StatusBadRequest, nil)
		}
		v := uint(id)
		fundID = &v
	}

	entries, err := h.Reports.ListBranchEntries(c.Context(), actor.BranchID, fundID)
	if err != nil {
		return err
	}
	return response.Success(c, "Entries fetched successfully", entries, nil)
}

// GetEntry GET /api/entries/:id — one entry with joined names.
func (h *Handlers) GetEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil || entryID < 1 {
		return response.Error(c, "Invalid entry id", fiber.StatusBadRequest, nil)
	}
	entry, err := h.Reports.GetEntry(c.Context(), uint(entryID))
	if err != nil {
		return err
	}
	return response.Success(c, "Entry fetched successfully", entry, nil)
}

// ListAll GET /api/admin/entries?page=&limit= — every branch's entries,
// paginated.
func (h *Handlers) ListAll(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	result, err := h.Reports.ListAllEntries(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return response.Success(c, "Entries fetched successfully", result, nil)
}

// Search GET /api/funds/:id/entries/search?person= — filter one fund's
// entries by counterparty name.
func (h *Handlers) Search(c *fiber.Ctx) error {
	fundID, err := c.ParamsInt("id")
	if err != nil || fundID < 1 {
		return response.Error(c, "Invalid fund id", fiber.StatusBadRequest, nil)
	}
	entries, err := h.Reports.SearchFundEntries(c.Context(), uint(fundID), c.Query("person"))
	if err != nil {
		return err
	}
	return response.Success(c, "Entries fetched successfully", entries, nil)
}
