package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/inventory"
)

func TestComputeOnHand(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		typ     string
		qty     int64
		want    int64
	}{
		{"entrada suma", 10, entity.MovementTypeIN, 5, 15},
		{"entrada con signo negativo usa valor absoluto", 10, entity.MovementTypeIN, -5, 15},
		{"salida resta", 10, entity.MovementTypeOUT, 4, 6},
		{"salida puede dejar negativo", 2, entity.MovementTypeOUT, 5, -3},
		{"ajuste positivo", 10, entity.MovementTypeADJ, 3, 13},
		{"ajuste negativo (baja)", 10, entity.MovementTypeADJ, -12, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.ComputeOnHand(tc.current, tc.typ, tc.qty))
		})
	}
}

func TestValidateMovement(t *testing.T) {
	assert.NoError(t, inventory.ValidateMovement(entity.MovementTypeIN, 1))
	assert.NoError(t, inventory.ValidateMovement(entity.MovementTypeOUT, 3))
	assert.NoError(t, inventory.ValidateMovement(entity.MovementTypeADJ, -7))

	for _, tc := range []struct {
		typ string
		qty int64
	}{
		{entity.MovementTypeIN, 0},
		{entity.MovementTypeOUT, -1},
		{entity.MovementTypeADJ, 0},
		{"TRANSFER", 5},
	} {
		err := inventory.ValidateMovement(tc.typ, tc.qty)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "%s %d debe ser inválido", tc.typ, tc.qty)
	}
}
