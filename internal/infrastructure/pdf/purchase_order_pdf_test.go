package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"999.5":       "999.50",
		"25000":       "25,000.00",
		"1234567.891": "1,234,567.89",
		"-1500":       "-1,500.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "PO-3F2A9C1B", OrderNumber("3f2a9c1b-aaaa-bbbb-cccc-000000000000"))
	assert.Equal(t, "PO-ABC", OrderNumber("abc"))
}

func TestGeneratePurchaseOrderPDF(t *testing.T) {
	expected := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	order := &entity.PurchaseOrder{
		ID:           "3f2a9c1b-aaaa-bbbb-cccc-000000000000",
		Status:       entity.POStatusPartial,
		OrderDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ExpectedDate: &expected,
		Notes:        "Entregar en bodega",
		Lines: []entity.PurchaseOrderLine{
			{ItemSKU: "LEC-1", ItemName: "Leche", QuantityOrdered: 20, QuantityReceived: 5, UnitCost: decimal.RequireFromString("1.20")},
		},
	}
	gen := NewMarotoPDFGenerator("Tienda")

	doc, err := gen.GeneratePurchaseOrderPDF(context.Background(), order, &entity.Supplier{Name: "Acme", Email: "ventas@acme.test"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	// proveedor eliminado: usa el nombre guardado en la orden
	order.SupplierName = "Acme"
	doc, err = gen.GeneratePurchaseOrderPDF(context.Background(), order, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}
