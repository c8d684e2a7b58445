package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
	"github.com/jhoicas/hotel-inventario-api/internal/application/stockcount"
)

// StockCountHandler registra y consulta conteos físicos (protegido).
type StockCountHandler struct {
	uc *stockcount.UseCase
}

// NewStockCountHandler construye el handler.
func NewStockCountHandler(uc *stockcount.UseCase) *StockCountHandler {
	return &StockCountHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar conteo terminado
// @Tags         stock-counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateStockCountRequest  true  "sector_id (vacío = todo el hotel), items"
// @Success      201   {object}  dto.StockCountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-counts [post]
func (h *StockCountHandler) Create(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	userID := GetUserID(c)
	if hotelID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStockCountRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.RecordCount(c.UserContext(), hotelID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar conteos terminados
// @Tags         stock-counts
// @Security     Bearer
// @Produce      json
// @Param        scope      query  string  false  "hotel | sector. Vacío = todos."
// @Param        sector_id  query  string  false  "Requerido con scope=sector"
// @Success      200  {array}   dto.StockCountResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-counts [get]
func (h *StockCountHandler) List(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	var in dto.ListStockCountsRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	list, err := h.uc.List(c.UserContext(), hotelID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener conteo
// @Tags         stock-counts
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del conteo"
// @Success      200  {object}  dto.StockCountResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-counts/{id} [get]
func (h *StockCountHandler) GetByID(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), hotelID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
