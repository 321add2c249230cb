// Package pdf genera el documento imprimible de una orden de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proveedor              │  N° Orden + Estado + Fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Email / Tel / Dirección                          │
//	│  ENTREGA: fecha esperada + factura                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Pedido | Recibido | Costo | Subtotal│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	│  FOOTER: notas + QR con el ID de la orden                    │
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

	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

var _ purchasing.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa purchasing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GeneratePurchaseOrderPDF genera el PDF y devuelve sus bytes. supplier puede ser nil (proveedor eliminado).
func (g *MarotoPDFGenerator) GeneratePurchaseOrderPDF(
	_ context.Context,
	order *entity.PurchaseOrder,
	supplier *entity.Supplier,
) ([]byte, error) {
	if supplier == nil {
		supplier = &entity.Supplier{Name: nonEmpty(order.SupplierName, "—")}
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Purchase order "+OrderNumber(order.ID), true).
		WithAuthor(nonEmpty(g.company, "Stocker"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order, supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(supplier))
	m.AddRows(deliveryRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(order.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(order)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// OrderNumber número corto legible de la orden (primeros 8 caracteres del ID, en mayúsculas).
func OrderNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "PO-" + strings.ToUpper(id)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: proveedor (izq) y número, estado y fecha de la orden (der).
func headerRow(order *entity.PurchaseOrder, supplier *entity.Supplier) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(supplier.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Supplier", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PURCHASE ORDER • "+order.Status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(OrderNumber(order.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+order.OrderDate.Format("2006-01-02"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func supplierRow(s *entity.Supplier) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SUPPLIER CONTACT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s   |   Address: %s",
				nonEmpty(s.Email, "—"),
				nonEmpty(s.Phone, "—"),
				nonEmpty(s.Address, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func deliveryRow(o *entity.PurchaseOrder) core.Row {
	expected := "—"
	if o.ExpectedDate != nil {
		expected = o.ExpectedDate.Format("2006-01-02")
	}
	invoice := nonEmpty(o.InvoiceNumber, "—")
	if o.InvoiceDate != nil {
		invoice += " (" + o.InvoiceDate.Format("2006-01-02") + ")"
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Expected delivery: %s   |   Invoice: %s", expected, invoice),
				props.Text{Size: 8, Top: 3}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("SKU", 2, align.Left),
		h("Item", 4, align.Left),
		h("Ordered", 1, align.Center),
		h("Received", 1, align.Center),
		h("Unit cost", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// tableLineRows: una fila por línea de la orden.
func tableLineRows(lines []entity.PurchaseOrderLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.ItemSKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ItemName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprint(l.QuantityOrdered), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(l.QuantityReceived), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(l.UnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(l.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(8).Add(col.New(12).Add(
			text.New("No lines", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	return result
}

func totalRow(o *entity.PurchaseOrder) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+FormatMoney(o.Total()), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// footerRows: notas de la orden + QR con su ID.
func footerRows(o *entity.PurchaseOrder) []core.Row {
	return []core.Row{
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(30).Add(
			col.New(3).Add(code.NewQr("PO:"+o.ID, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("NOTES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 3}),
				text.New(nonEmpty(o.Notes, "—"), props.Text{Size: 8, Top: 8, Left: 3, Color: colorGray}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney dos decimales con separador de miles.
// Ej: 25000 → "25,000.00", 1234.5 → "1,234.50"
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + frac
}
