package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// AuditHandler verificación del stock contra el libro de movimientos.
type AuditHandler struct {
	uc  *inventory.AuditUseCase
	now func() time.Time
}

func NewAuditHandler(uc *inventory.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc, now: time.Now}
}

// GetConsistency godoc
// @Summary      Consistencia de un producto
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ConsistencyReportDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/consistency [get]
func (h *AuditHandler) GetConsistency(c *fiber.Ctx) error {
	report, err := h.uc.VerifyProduct(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

// GetStockAt godoc
// @Summary      Stock de un producto a una fecha
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id   path   string  true   "ID del producto"
// @Param        at   query  string  false  "RFC3339 (defecto: ahora)"
// @Success      200  {object}  dto.StockAtDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock-at [get]
func (h *AuditHandler) GetStockAt(c *fiber.Ctx) error {
	at := h.now().UTC()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "VALIDATION", "at debe ser RFC3339")
		}
		at = t
	}
	out, err := h.uc.StockAt(c.UserContext(), GetActor(c), c.Params("id"), at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AuditAll godoc
// @Summary      Verificar todos los productos de la empresa (admin)
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/consistency [get]
func (h *AuditHandler) AuditAll(c *fiber.Ctx) error {
	out, err := h.uc.VerifyAll(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
