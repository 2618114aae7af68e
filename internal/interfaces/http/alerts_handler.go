package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
)

// AlertsHandler expone los productos agotados y con stock bajo.
type AlertsHandler struct {
	uc *alerts.AlertsUseCase
}

func NewAlertsHandler(uc *alerts.AlertsUseCase) *AlertsHandler {
	return &AlertsHandler{uc: uc}
}

// GetAlerts godoc
// @Summary      Alertas de stock
// @Description  Agotados (stock 0) y stock bajo (0 < stock < umbral), más críticos primero.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertsDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *AlertsHandler) GetAlerts(c *fiber.Ctx) error {
	out, err := h.uc.ListAlerts(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
