package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

const replenishmentLimit = 500

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo el punto de reorden
// con la cantidad sugerida para llevarlos a 1.5 × reorden. Sirve de base para armar órdenes de compra.
type ReplenishmentUseCase struct {
	items repository.ItemRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items repository.ItemRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items}
}

// GenerateReplenishmentList devuelve las sugerencias ordenadas por mayor déficit primero.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, ownerID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	low, err := uc.items.ListLowStock(ctx, ownerID, replenishmentLimit)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, item := range low {
		// ideal = ceil(reorden × 1.5); con reorden 0 se repone al menos hasta 1 unidad
		ideal := decimal.NewFromInt(item.ReorderLevel).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
		if ideal < 1 {
			ideal = 1
		}
		suggested := ideal - item.OnHand
		if suggested < 0 {
			suggested = 0
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:             item.ID,
			SKU:                item.SKU,
			Name:               item.Name,
			OnHand:             item.OnHand,
			ReorderLevel:       item.ReorderLevel,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           item.CostPrice,
			EstimatedOrderCost: decimal.NewFromInt(suggested).Mul(item.CostPrice).Round(2),
			SupplierIDs:        item.SupplierIDs,
		})
	}

	// Mayor déficit (reorden - stock) primero; empate por SKU para salida estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderLevel - a.OnHand
		defB := b.ReorderLevel - b.OnHand
		if defA != defB {
			return defA > defB
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
