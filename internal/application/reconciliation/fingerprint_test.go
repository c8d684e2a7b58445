package reconciliation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
)

func TestInputFingerprint(t *testing.T) {
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	base := func() reconciliation.Input {
		return reconciliation.Input{
			HotelID:  "hotel-1",
			Products: []entity.Product{{ID: "p1", Name: "Toalla", Active: true}},
			Movements: entity.Movements{
				Purchases: []entity.Purchase{{ID: "pu-1", ProductID: "p1", Quantity: decimal.NewFromInt(5), OccurredAt: at}},
			},
		}
	}
	assert.Equal(t, inputFingerprint(base()), inputFingerprint(base()), "misma entrada, misma huella")

	masCompras := base()
	masCompras.Movements.Purchases = append(masCompras.Movements.Purchases,
		entity.Purchase{ID: "pu-2", ProductID: "p1", Quantity: decimal.NewFromInt(2), OccurredAt: at.Add(time.Hour)})
	assert.NotEqual(t, inputFingerprint(base()), inputFingerprint(masCompras))

	otraCantidad := base()
	otraCantidad.Movements.Purchases[0].Quantity = decimal.NewFromInt(6)
	assert.NotEqual(t, inputFingerprint(base()), inputFingerprint(otraCantidad))

	entregaCumplida := base()
	entregaCumplida.Movements.Deliveries = []entity.Delivery{{ID: "de-1", RequestedProductID: "p1", Quantity: decimal.NewFromInt(1), SectorID: "s1", Status: entity.DeliveryStatusFulfilled, OccurredAt: at}}
	assert.NotEqual(t, inputFingerprint(base()), inputFingerprint(entregaCumplida))
}
