package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hotel-inventario-api/internal/application/cycle"
	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
)

// DiscountCycleHandler cierra y consulta ciclos de descuento (protegido).
type DiscountCycleHandler struct {
	uc *cycle.UseCase
}

// NewDiscountCycleHandler construye el handler.
func NewDiscountCycleHandler(uc *cycle.UseCase) *DiscountCycleHandler {
	return &DiscountCycleHandler{uc: uc}
}

// Close godoc
// @Summary      Cerrar ciclo de descuento
// @Description  Requiere el conteo de todos los productos controlados. Si otro cierre se confirmó
//
//	antes, responde 409 y el cliente debe recargar la línea base y reintentar.
//
// @Tags         discount-cycles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CloseCycleRequest  true  "counts: product_id, current_quantity, guest_attributed_loss"
// @Success      201   {object}  dto.DiscountCycleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/discount-cycles/close [post]
func (h *DiscountCycleHandler) Close(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	userID := GetUserID(c)
	if hotelID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CloseCycleRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CloseCycle(c.UserContext(), hotelID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Historial de ciclos
// @Tags         discount-cycles
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "Máximo 100 (default 20)"
// @Param        offset  query     int  false  "Desplazamiento"
// @Success      200     {object}  dto.DiscountCycleListResponse
// @Router       /api/discount-cycles [get]
func (h *DiscountCycleHandler) List(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), hotelID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de un ciclo
// @Tags         discount-cycles
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ciclo"
// @Success      200  {object}  dto.DiscountCycleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/discount-cycles/{id} [get]
func (h *DiscountCycleHandler) GetByID(c *fiber.Ctx) error {
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

// Document godoc
// @Summary      Acta PDF del ciclo
// @Tags         discount-cycles
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del ciclo"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/discount-cycles/{id}/pdf [get]
func (h *DiscountCycleHandler) Document(c *fiber.Ctx) error {
	hotelID := GetHotelID(c)
	if hotelID == "" {
		return unauthorized(c)
	}
	doc, filename, err := h.uc.Document(c.UserContext(), hotelID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(doc)
}
