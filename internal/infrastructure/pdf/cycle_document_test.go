package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
)

func TestGenerateCycleDocument(t *testing.T) {
	g := NewCycleDocumentGenerator("Hotel Las Palmas")
	pdf, err := g.GenerateCycleDocument(context.Background(), &dto.DiscountCycleResponse{
		ID:                 "cy-1",
		HotelID:            "hotel-1",
		Sequence:           3,
		ClosedAt:           time.Date(2026, 4, 1, 22, 0, 0, 0, time.UTC),
		ClosedByUserID:     "user-1",
		TotalDiscountValue: decimal.RequireFromString("6.00"),
		Items: []dto.DiscountCycleItemResponse{{
			ProductID: "cuchillo", ProductName: "Cuchillo",
			PreviousCount: decimal.NewFromInt(20), FinalCount: decimal.NewFromInt(17),
			ExpectedQuantity: decimal.NewFromInt(20), UnaccountedLoss: decimal.NewFromInt(3),
			UnitValue: decimal.RequireFromString("2.00"), DiscountValue: decimal.RequireFromString("6.00"),
		}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestGenerateCycleDocument_Nil(t *testing.T) {
	_, err := NewCycleDocumentGenerator("").GenerateCycleDocument(context.Background(), nil)
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"6":         "6,00",
		"25000":     "25.000,00",
		"1234567.8": "1.234.567,80",
		"-1234.5":   "-1.234,50",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, "2,5", formatQty(decimal.RequireFromString("2.5")))
}
