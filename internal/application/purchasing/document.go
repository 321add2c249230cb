package purchasing

import (
	"context"
	"errors"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// PDFGenerator genera el documento imprimible de una orden (implementado en infrastructure/pdf).
type PDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier) ([]byte, error)
}

// ErrNoPDFGenerator el caso de uso se construyó sin generador de PDF.
var ErrNoPDFGenerator = errors.New("purchasing: generador de PDF no configurado")

// WithPDF configura el generador de documentos.
func (uc *UseCase) WithPDF(gen PDFGenerator) *UseCase {
	uc.pdf = gen
	return uc
}

// PDF genera el documento de la orden con los datos de contacto del proveedor (si aún existe).
func (uc *UseCase) PDF(ctx context.Context, ownerID, orderID string) ([]byte, *entity.PurchaseOrder, error) {
	if uc.pdf == nil {
		return nil, nil, ErrNoPDFGenerator
	}
	order, err := uc.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, nil, err
	}
	var supplier *entity.Supplier
	if order.SupplierID != "" {
		if supplier, err = uc.suppliers.GetByID(ctx, ownerID, order.SupplierID); err != nil {
			return nil, nil, err
		}
	}
	doc, err := uc.pdf.GeneratePurchaseOrderPDF(ctx, order, supplier)
	if err != nil {
		return nil, nil, err
	}
	return doc, order, nil
}
