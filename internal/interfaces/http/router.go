package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApplyMovement *inventory.ApplyMovementUseCase
	ListMovements *inventory.ListMovementsUseCase
	Audit         *inventory.AuditUseCase
	Alerts        *alerts.AlertsUseCase
	Distribution  *analytics.DistributionUseCase
	JWTSecret     string
	Log           zerolog.Logger
	// Health comprueba las dependencias (BD, Redis); nil = siempre sano.
	Health func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log))
	app.Get("/health", healthHandler(deps.Health))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Movimientos
	inventoryHandler := NewInventoryHandler(deps.ApplyMovement, deps.ListMovements)
	api.Post("/movements", inventoryHandler.ApplyMovement)
	api.Get("/movements", inventoryHandler.ListMovements)

	// Alertas
	alertsHandler := NewAlertsHandler(deps.Alerts)
	api.Get("/alerts", alertsHandler.GetAlerts)

	// Analítica
	analyticsHandler := NewAnalyticsHandler(deps.Distribution)
	api.Get("/analytics/distribution", analyticsHandler.GetDistribution)
	api.Get("/analytics/deficit", analyticsHandler.GetDeficit)

	// Auditoría del libro
	auditHandler := NewAuditHandler(deps.Audit)
	api.Get("/products/:id/consistency", auditHandler.GetConsistency)
	api.Get("/products/:id/stock-at", auditHandler.GetStockAt)
	api.Get("/audit/consistency", RequireRole(tenant.RoleAdmin), auditHandler.AuditAll)
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				zerolog.Ctx(c.UserContext()).Warn().Err(err).Msg("health: dependencia no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "dependencia no disponible"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
