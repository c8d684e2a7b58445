package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hotel-inventario-api/internal/application/cycle"
	"github.com/jhoicas/hotel-inventario-api/internal/application/reconciliation"
	"github.com/jhoicas/hotel-inventario-api/internal/application/stockcount"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// Roles con permiso para cerrar ciclos de descuento.
var cycleCloseRoles = []string{entity.RoleAdmin, entity.RoleManager}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ReconcileUC  *reconciliation.ReconcileUseCase
	StockCountUC *stockcount.UseCase
	CycleUC      *cycle.UseCase
	JWTSecret    string
	JWTIssuer    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Conciliación y stock actual
	recHandler := NewReconciliationHandler(deps.ReconcileUC)
	api.Post("/reconciliations", recHandler.Reconcile)
	api.Get("/reconciliations/latest", recHandler.ReconcileLatest)
	api.Get("/stock/current", recHandler.CurrentStock)

	// Conteos físicos
	counts := api.Group("/stock-counts")
	countHandler := NewStockCountHandler(deps.StockCountUC)
	counts.Post("/", countHandler.Create)
	counts.Get("/", countHandler.List)
	counts.Get("/:id", countHandler.GetByID)

	// Ciclos de descuento
	cycles := api.Group("/discount-cycles")
	cycleHandler := NewDiscountCycleHandler(deps.CycleUC)
	cycles.Post("/close", RequireRole(cycleCloseRoles...), cycleHandler.Close)
	cycles.Get("/", cycleHandler.List)
	cycles.Get("/:id", cycleHandler.GetByID)
	cycles.Get("/:id/pdf", cycleHandler.Document)
}
