package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/items/:id/movements.
type ApplyMovementRequest struct {
	Type     string `json:"type"`     // IN | OUT | ADJ
	Quantity int64  `json:"quantity"` // positiva para IN/OUT, delta con signo para ADJ
	Reason   string `json:"reason,omitempty"`
}

// MovementResponse salida de un movimiento del libro de stock.
type MovementResponse struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"item_id"`
	SKU               string    `json:"sku,omitempty"`
	ItemName          string    `json:"item_name,omitempty"`
	Type              string    `json:"type"`
	Quantity          int64     `json:"quantity"`
	Effect            int64     `json:"effect"`
	Reason            string    `json:"reason"`
	ResultingQuantity int64     `json:"resulting_quantity"`
	CreatedBy         *string   `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// MovementListResponse historial paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	OnHand             int64           `json:"on_hand"`
	ReorderLevel       int64           `json:"reorder_level"`
	IdealStock         int64           `json:"ideal_stock"`          // ceil(ReorderLevel * 1.5)
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`  // IdealStock - OnHand
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo actual del producto
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	SupplierIDs        []string        `json:"supplier_ids"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
