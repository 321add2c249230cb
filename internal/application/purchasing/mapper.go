package purchasing

import (
	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// ToResponse convierte la orden en su DTO de salida.
func ToResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	if o == nil {
		return nil
	}
	lines := make([]dto.PurchaseOrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, dto.PurchaseOrderLineResponse{
			ID:               l.ID,
			ItemID:           l.ItemID,
			SKU:              l.ItemSKU,
			ItemName:         l.ItemName,
			QuantityOrdered:  l.QuantityOrdered,
			QuantityReceived: l.QuantityReceived,
			Remaining:        l.Remaining(),
			UnitCost:         l.UnitCost,
			Subtotal:         l.Subtotal(),
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:            o.ID,
		SupplierID:    o.SupplierID,
		SupplierName:  o.SupplierName,
		Status:        o.Status,
		Closed:        o.IsClosed(),
		OrderDate:     dto.Date{Time: o.OrderDate},
		ExpectedDate:  dto.NewDate(o.ExpectedDate),
		InvoiceNumber: o.InvoiceNumber,
		InvoiceDate:   dto.NewDate(o.InvoiceDate),
		Notes:         o.Notes,
		Total:         o.Total(),
		Lines:         lines,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToReceiveResponse convierte el resultado de una recepción.
func ToReceiveResponse(r *ReceiveResult) *dto.ReceiveResponse {
	if r == nil {
		return nil
	}
	return &dto.ReceiveResponse{
		Received: r.Received,
		Movement: inventory.ToMovementResponse(r.Movement),
		Order:    ToResponse(r.Order),
	}
}
