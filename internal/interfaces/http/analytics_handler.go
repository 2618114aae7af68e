package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// AnalyticsHandler distribución y déficit de stock.
type AnalyticsHandler struct {
	uc *analytics.DistributionUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.DistributionUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func analyticsRequest(c *fiber.Ctx) dto.AnalyticsRequest {
	return dto.AnalyticsRequest{
		GroupBy:    c.Query("group_by"),
		CategoryID: c.Query("category_id"),
	}
}

// GetDistribution godoc
// @Summary      Distribución de stock
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        group_by     query  string  false  "product (defecto) | category"
// @Param        category_id  query  string  false  "Limita a una categoría (filas por producto)"
// @Success      200  {object}  dto.DistributionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/distribution [get]
func (h *AnalyticsHandler) GetDistribution(c *fiber.Ctx) error {
	out, err := h.uc.Distribution(c.UserContext(), GetActor(c), analyticsRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetDeficit godoc
// @Summary      Análisis de déficit frente al umbral
// @Description  deficit = max(0, umbral - stock). El resumen concilia con la suma de filas.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        group_by     query  string  false  "product (defecto) | category"
// @Param        category_id  query  string  false  "Limita a una categoría (filas por producto)"
// @Success      200  {object}  dto.DeficitDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/deficit [get]
func (h *AnalyticsHandler) GetDeficit(c *fiber.Ctx) error {
	out, err := h.uc.Deficit(c.UserContext(), GetActor(c), analyticsRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
