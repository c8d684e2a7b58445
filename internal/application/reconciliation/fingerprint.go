package reconciliation

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
)

// inputFingerprint resume catálogo, sectores y movimientos leídos para el intervalo.
// Va en la clave de caché: una compra registrada tarde o una entrega que pasa a cumplida
// cambian la huella y el resultado se recalcula.
func inputFingerprint(in reconciliation.Input) string {
	d := xxhash.New()
	field := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	section := func(name string, n int) {
		field(name)
		field(strconv.Itoa(n))
	}

	section("products", len(in.Products))
	for _, p := range in.Products {
		field(p.ID)
		field(p.Name)
		field(p.Category)
		field(strconv.FormatBool(p.IsPriority))
		field(strconv.FormatBool(p.Active))
	}
	section("sectors", len(in.Sectors))
	for _, s := range in.Sectors {
		field(s.ID)
		field(s.Name)
	}
	section("purchases", len(in.Movements.Purchases))
	for _, p := range in.Movements.Purchases {
		field(p.ID)
		field(p.ProductID)
		field(p.Quantity.String())
		field(strconv.FormatInt(p.OccurredAt.UnixNano(), 10))
	}
	section("deliveries", len(in.Movements.Deliveries))
	for _, dl := range in.Movements.Deliveries {
		field(dl.ID)
		field(dl.RequestedProductID)
		field(deliveredProduct(dl))
		field(dl.Quantity.String())
		field(dl.SectorID)
		field(dl.Status)
		field(strconv.FormatInt(dl.OccurredAt.UnixNano(), 10))
	}
	section("transfers", len(in.Movements.Transfers))
	for _, t := range in.Movements.Transfers {
		field(t.ID)
		field(t.ProductID)
		field(t.Quantity.String())
		field(t.SourceHotelID)
		field(t.DestinationHotelID)
		field(strconv.FormatInt(t.OccurredAt.UnixNano(), 10))
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func deliveredProduct(d entity.Delivery) string {
	if d.DeliveredProductID == nil {
		return ""
	}
	return *d.DeliveredProductID
}
