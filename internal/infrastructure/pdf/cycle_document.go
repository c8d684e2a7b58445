// Package pdf genera el acta imprimible de un ciclo de descuento cerrado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Hotel              │  Ciclo N° + Fecha de cierre    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Anterior | Repos. | Huésp. | Final |      │
//	│         No expl. | V. Unit | Descuento                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL A DESCONTAR                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID del ciclo + firmas                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// CycleDocumentGenerator implementa cycle.DocumentGenerator usando Maroto v2.
type CycleDocumentGenerator struct {
	hotelName string
}

// NewCycleDocumentGenerator construye el generador. hotelName vacío = se imprime el ID del hotel.
func NewCycleDocumentGenerator(hotelName string) *CycleDocumentGenerator {
	return &CycleDocumentGenerator{hotelName: hotelName}
}

// GenerateCycleDocument genera el PDF y devuelve sus bytes.
func (g *CycleDocumentGenerator) GenerateCycleDocument(_ context.Context, c *dto.DiscountCycleResponse) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("pdf: ciclo nil")
	}
	hotel := nonEmpty(g.hotelName, c.HotelID)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Ciclo de descuento %d", c.Sequence), true).
		WithAuthor(hotel, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(c, hotel))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(c.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(c))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(c))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(c *dto.DiscountCycleResponse, hotel string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(hotel, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Acta de ciclo de descuento de utensilios", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("CICLO N°", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d", c.Sequence), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Cierre: "+c.ClosedAt.Format("02/01/2006 15:04")+" UTC", props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

type column struct {
	label string
	size  int
	align align.Type
}

var columns = []column{
	{"Producto", 3, align.Left},
	{"Anterior", 1, align.Right},
	{"Repos.", 1, align.Right},
	{"Huésp.", 1, align.Right},
	{"Final", 1, align.Right},
	{"No expl.", 1, align.Right},
	{"V. Unit", 2, align.Right},
	{"Descuento", 2, align.Right},
}

func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

// tableItemRows: una fila por producto; los faltantes sin explicar en rojo.
func tableItemRows(items []dto.DiscountCycleItemResponse) []core.Row {
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := nonEmpty(it.ProductName, it.ProductID)
		values := []string{
			name,
			formatQty(it.PreviousCount),
			formatQty(it.RestocksInPeriod),
			formatQty(it.AttributedLoss),
			formatQty(it.FinalCount),
			formatQty(it.UnaccountedLoss),
			"$" + formatMoney(it.UnitValue),
			"$" + formatMoney(it.DiscountValue),
		}
		cols := make([]core.Col, 0, len(columns))
		for i, c := range columns {
			p := props.Text{Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1}
			if i == 5 && it.UnaccountedLoss.IsPositive() {
				p.Color = colorAlert
			}
			cols = append(cols, col.New(c.size).Add(text.New(values[i], p)))
		}
		out = append(out, row.New(7).Add(cols...))
	}
	return out
}

func totalRow(c *dto.DiscountCycleResponse) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL A DESCONTAR:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(c.TotalDiscountValue), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// footerRow: QR con el ID del ciclo para cotejar contra el historial, y firmas.
func footerRow(c *dto.DiscountCycleResponse) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(c.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("ID: "+c.ID, props.Text{Size: 7, Color: colorGray, Top: 2, Left: 3}),
			text.New("Cerrado por: "+c.ClosedByUserID, props.Text{Size: 7, Color: colorGray, Top: 7, Left: 3}),
			text.New("Los sobrantes se muestran pero no compensan faltantes de otros productos.", props.Text{
				Size: 7, Color: colorGray, Top: 12, Left: 3,
			}),
			text.New("______________________          ______________________", props.Text{Size: 9, Top: 28, Left: 3}),
			text.New("Responsable de cocina                    Gerencia", props.Text{Size: 8, Top: 33, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con puntos de miles y coma decimal, dos decimales.
// Ej: 25000 → "25.000,00", -1234.5 → "-1.234,50"
func formatMoney(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + frac
	if v.IsNegative() {
		return "-" + out
	}
	return out
}

// formatQty cantidades sin ceros decimales sobrantes.
func formatQty(v decimal.Decimal) string {
	return strings.Replace(v.String(), ".", ",", 1)
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
