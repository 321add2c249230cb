package inventory

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al caso de uso Apply(ctx, ApplyInput).
// Usar desde handlers HTTP con ownerID y userID extraídos del token.
func (uc *LedgerUseCase) ApplyFromRequest(ctx context.Context, ownerID, userID, itemID string, in dto.ApplyMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.Apply(ctx, ApplyInput{
		OwnerID:  ownerID,
		ItemID:   itemID,
		Type:     in.Type,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		ActorID:  userID,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ToMovementResponse convierte un movimiento en su DTO de salida.
func ToMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:                m.ID,
		ItemID:            m.ItemID,
		SKU:               m.ItemSKU,
		ItemName:          m.ItemName,
		Type:              m.Type,
		Quantity:          m.Quantity,
		Effect:            m.Effect(),
		Reason:            m.Reason,
		ResultingQuantity: m.ResultingQuantity,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}
}
