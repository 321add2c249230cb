package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de compra.
// DRAFT → SUBMITTED → {PARTIAL → RECEIVED} | CANCELLED. RECEIVED y CANCELLED son terminales.
const (
	POStatusDraft     = "DRAFT"
	POStatusSubmitted = "SUBMITTED"
	POStatusPartial   = "PARTIAL"
	POStatusReceived  = "RECEIVED"
	POStatusCancelled = "CANCELLED"
)

// ValidPOStatus indica si s es un estado conocido.
func ValidPOStatus(s string) bool {
	switch s {
	case POStatusDraft, POStatusSubmitted, POStatusPartial, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder orden de compra a un proveedor con sus líneas.
type PurchaseOrder struct {
	ID            string
	OwnerID       string
	SupplierID    string
	SupplierName  string // solo lectura (join)
	Status        string
	OrderDate     time.Time
	ExpectedDate  *time.Time
	InvoiceNumber string
	InvoiceDate   *time.Time
	Notes         string
	CreatedBy     *string
	Lines         []PurchaseOrderLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseOrderLine cantidades pedidas/recibidas de un producto dentro de la orden (única por orden+producto).
type PurchaseOrderLine struct {
	ID               string
	OrderID          string
	ItemID           string
	ItemSKU          string // solo lectura (join)
	ItemName         string // solo lectura (join)
	QuantityOrdered  int64
	QuantityReceived int64
	UnitCost         decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsClosed es true en estados terminales; la orden ya no admite cambios.
func (o *PurchaseOrder) IsClosed() bool {
	return o.Status == POStatusReceived || o.Status == POStatusCancelled
}

// Line busca una línea por ID.
func (o *PurchaseOrder) Line(lineID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// LineForItem busca la línea de un producto.
func (o *PurchaseOrder) LineForItem(itemID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			return &o.Lines[i]
		}
	}
	return nil
}

// RecomputeStatus recalcula el estado a partir de las líneas:
//   - sin líneas → DRAFT
//   - todas recibidas (received ≥ ordered) → RECEIVED
//   - alguna con recepción parcial → PARTIAL
//   - si no, SUBMITTED si ya estaba enviada, DRAFT en otro caso
//
// No modifica órdenes cerradas.
func (o *PurchaseOrder) RecomputeStatus() string {
	if o.IsClosed() {
		return o.Status
	}
	if len(o.Lines) == 0 {
		o.Status = POStatusDraft
		return o.Status
	}
	allReceived := true
	anyReceived := false
	for _, l := range o.Lines {
		if l.QuantityReceived < l.QuantityOrdered {
			allReceived = false
		}
		if l.QuantityReceived > 0 {
			anyReceived = true
		}
	}
	switch {
	case allReceived:
		o.Status = POStatusReceived
	case anyReceived:
		o.Status = POStatusPartial
	case o.Status == POStatusSubmitted || o.Status == POStatusPartial:
		o.Status = POStatusSubmitted
	default:
		o.Status = POStatusDraft
	}
	return o.Status
}

// Total suma cantidad pedida × costo unitario de todas las líneas.
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// Remaining cantidad pendiente de recibir (nunca negativa).
func (l *PurchaseOrderLine) Remaining() int64 {
	r := l.QuantityOrdered - l.QuantityReceived
	if r < 0 {
		return 0
	}
	return r
}

// Receivable acota la cantidad solicitada a [0, Remaining()].
func (l *PurchaseOrderLine) Receivable(requested int64) int64 {
	if requested <= 0 {
		return 0
	}
	if rem := l.Remaining(); requested > rem {
		return rem
	}
	return requested
}

// Subtotal cantidad pedida × costo unitario.
func (l *PurchaseOrderLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.QuantityOrdered).Mul(l.UnitCost)
}
