package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// HeaderIdempotencyKey cabecera opcional para reintentos seguros de POST /api/movements.
const HeaderIdempotencyKey = "Idempotency-Key"

// InventoryHandler maneja las peticiones HTTP de movimientos (protegido).
type InventoryHandler struct {
	apply *inventory.ApplyMovementUseCase
	list  *inventory.ListMovementsUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(apply *inventory.ApplyMovementUseCase, list *inventory.ListMovementsUseCase) *InventoryHandler {
	return &InventoryHandler{apply: apply, list: list}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  ADD y RETURN suman, REMOVE y SALE restan. Rechaza con 409 si el stock quedaría negativo.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "Clave para reintentos seguros"
// @Param        body             body    dto.ApplyMovementRequest  true   "product_id, type, quantity, reason"
// @Success      201  {object}  dto.ApplyMovementResponse
// @Success      200  {object}  dto.ApplyMovementResponse  "reproducido por idempotencia"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.apply.ApplyFromRequest(c.UserContext(), GetActor(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, err)
	}
	if res.Replayed {
		return c.Status(fiber.StatusOK).JSON(res)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Param        type         query  string  false  "ADD | REMOVE | RETURN | SALE"
// @Param        date_from    query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        date_to      query  string  false  "YYYY-MM-DD (día completo) o RFC3339"
// @Param        search       query  string  false  "Nombre o SKU del producto"
// @Param        order        query  string  false  "desc (defecto) | asc"
// @Param        page         query  int     false  "Página (defecto 1)"
// @Param        page_size    query  int     false  "Tamaño (defecto 20, máx 100)"
// @Success      200  {object}  dto.MovementPageDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	req := dto.ListMovementsRequest{
		PageRequest: dto.PageRequest{
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("page_size", dto.DefaultPageSize),
		},
		ProductID:  c.Query("product_id"),
		CategoryID: c.Query("category_id"),
		Type:       c.Query("type"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
		Order:      c.Query("order"),
	}
	page, err := h.list.List(c.UserContext(), GetActor(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}
