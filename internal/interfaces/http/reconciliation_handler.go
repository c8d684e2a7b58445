package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
	"github.com/jhoicas/hotel-inventario-api/internal/application/reconciliation"
)

// ReconciliationHandler expone la conciliación de conteos y el stock actual (protegido).
type ReconciliationHandler struct {
	uc *reconciliation.ReconcileUseCase
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(uc *reconciliation.ReconcileUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

// Reconcile godoc
// @Summary      Conciliar dos conteos
// @Description  Compara el conteo inicial y el final con compras, entregas y traslados del intervalo.
//
//	Las salidas por sector ingresadas a mano se superponen sobre el resultado.
//
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReconcileRequest  true  "start_count_id, end_count_id, sector_outflows, group_by"
// @Success      200   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reconciliations [post]
func (h *ReconciliationHandler) Reconcile(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	var in dto.ReconcileRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reconcile(c.UserContext(), hotelID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReconcileLatest godoc
// @Summary      Reporte de los dos últimos conteos
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        sector_id  query     string  false  "Sector. Vacío = conteos de todo el hotel."
// @Param        group_by   query     string  false  "category | priority | sector"
// @Success      200        {object}  dto.ReconciliationResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      422        {object}  dto.ErrorResponse
// @Router       /api/reconciliations/latest [get]
func (h *ReconciliationHandler) ReconcileLatest(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	var in dto.ReconcileLatestRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReconcileLatest(c.UserContext(), hotelID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CurrentStock godoc
// @Summary      Stock esperado actual
// @Description  Proyecta el último conteo de todo el hotel con los movimientos posteriores.
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CurrentStockResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/current [get]
func (h *ReconciliationHandler) CurrentStock(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.CurrentStock(c.UserContext(), hotelID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
