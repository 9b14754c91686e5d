package statements

import (
	stmtsvc "treasury-backend/internal/application/statements"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers serves spreadsheet downloads.
type Handlers struct {
	Service *stmtsvc.Service
}

// ArchiveStatement GET /api/admin/archives/:id/statement — download one
// archive as an .xlsx statement.
func (h *Handlers) ArchiveStatement(c *fiber.Ctx) error {
	archiveID, err := c.ParamsInt("id")
	if err != nil || archiveID < 1 {
		return response.Error(c, "Invalid archive id", fiber.StatusBadRequest, nil)
	}
	doc, filename, err := h.Service.ArchiveStatement(c.Context(), uint(archiveID))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// BalancesReport GET /api/admin/reports/balances?month= — download the
// consolidated per-branch totals for one archived period.
func (h *Handlers) BalancesReport(c *fiber.Ctx) error {
	doc, filename, err := h.Service.BranchBalancesReport(c.Context(), c.Query("month"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
