package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest entrada para crear una orden de compra (nace en DRAFT).
type CreatePurchaseOrderRequest struct {
	SupplierID    string                        `json:"supplier_id"`
	OrderDate     *Date                         `json:"order_date"`
	ExpectedDate  *Date                         `json:"expected_date"`
	InvoiceNumber string                        `json:"invoice_number"`
	InvoiceDate   *Date                         `json:"invoice_date"`
	Notes         string                        `json:"notes"`
	Lines         []AddPurchaseOrderLineRequest `json:"lines"`
}

// UpdatePurchaseOrderRequest cambios de cabecera mientras la orden está abierta.
type UpdatePurchaseOrderRequest struct {
	ExpectedDate  *Date   `json:"expected_date"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoiceDate   *Date   `json:"invoice_date"`
	Notes         *string `json:"notes"`
}

// AddPurchaseOrderLineRequest agrega o actualiza la línea de un producto.
type AddPurchaseOrderLineRequest struct {
	ItemID          string          `json:"item_id"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// ReceiveLineRequest cantidad recibida; se acota a lo pendiente de la línea.
type ReceiveLineRequest struct {
	Quantity int64 `json:"quantity"`
}

// PurchaseOrderLineResponse salida de una línea.
type PurchaseOrderLineResponse struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	SKU              string          `json:"sku,omitempty"`
	ItemName         string          `json:"item_name,omitempty"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	Remaining        int64           `json:"remaining"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID            string                      `json:"id"`
	SupplierID    string                      `json:"supplier_id"`
	SupplierName  string                      `json:"supplier_name,omitempty"`
	Status        string                      `json:"status"`
	Closed        bool                        `json:"closed"`
	OrderDate     Date                        `json:"order_date"`
	ExpectedDate  *Date                       `json:"expected_date"`
	InvoiceNumber string                      `json:"invoice_number"`
	InvoiceDate   *Date                       `json:"invoice_date"`
	Notes         string                      `json:"notes"`
	Total         decimal.Decimal             `json:"total"`
	Lines         []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// ReceiveResponse resultado de una recepción.
type ReceiveResponse struct {
	Received int64                  `json:"received"` // cantidad efectivamente recibida tras acotar
	Movement *MovementResponse      `json:"movement"` // nil si no hubo movimiento
	Order    *PurchaseOrderResponse `json:"order"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
