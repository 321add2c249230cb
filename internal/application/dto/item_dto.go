package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un producto.
// InitialQuantity se registra como un ajuste "Stock inicial" en el libro (OnHand nunca se escribe directo).
type CreateItemRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=64"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	CategoryID      *string         `json:"category_id"`
	Unit            string          `json:"unit"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ReorderLevel    int64           `json:"reorder_level"`
	InitialQuantity int64           `json:"initial_quantity"`
	ExpiryDate      *Date           `json:"expiry_date"`
	SupplierIDs     []string        `json:"supplier_ids"`
}

// UpdateItemRequest entrada para actualizar un producto (sin OnHand: se maneja vía movimientos).
type UpdateItemRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	CategoryID   *string          `json:"category_id"` // "" quita la categoría
	Unit         *string          `json:"unit"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	ReorderLevel *int64           `json:"reorder_level"`
	ExpiryDate   *Date            `json:"expiry_date"`
	ClearExpiry  bool             `json:"clear_expiry"`
}

// SetSuppliersRequest body para PUT /api/items/:id/suppliers.
type SetSuppliersRequest struct {
	SupplierIDs []string `json:"supplier_ids"`
}

// ItemResponse salida de un producto.
type ItemResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   *string         `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	ReorderLevel int64           `json:"reorder_level"`
	OnHand       int64           `json:"on_hand"`
	LowStock     bool            `json:"low_stock"`
	Valuation    decimal.Decimal `json:"valuation"`
	ExpiryDate   *Date           `json:"expiry_date"`
	SupplierIDs  []string        `json:"supplier_ids"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de productos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
