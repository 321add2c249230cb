package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

func line(ordered, received int64) entity.PurchaseOrderLine {
	return entity.PurchaseOrderLine{QuantityOrdered: ordered, QuantityReceived: received, UnitCost: decimal.NewFromInt(2)}
}

func TestRecomputeStatus(t *testing.T) {
	cases := []struct {
		name  string
		from  string
		lines []entity.PurchaseOrderLine
		want  string
	}{
		{"sin líneas vuelve a DRAFT", entity.POStatusSubmitted, nil, entity.POStatusDraft},
		{"todo recibido", entity.POStatusPartial, []entity.PurchaseOrderLine{line(10, 10), line(5, 5)}, entity.POStatusReceived},
		{"recepción parcial", entity.POStatusSubmitted, []entity.PurchaseOrderLine{line(10, 4), line(10, 0)}, entity.POStatusPartial},
		{"enviada sin recepciones sigue SUBMITTED", entity.POStatusSubmitted, []entity.PurchaseOrderLine{line(10, 0)}, entity.POStatusSubmitted},
		{"borrador sin recepciones sigue DRAFT", entity.POStatusDraft, []entity.PurchaseOrderLine{line(10, 0)}, entity.POStatusDraft},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &entity.PurchaseOrder{Status: tc.from, Lines: tc.lines}
			assert.Equal(t, tc.want, o.RecomputeStatus())
			assert.Equal(t, tc.want, o.Status)
		})
	}
}

func TestRecomputeStatus_OrdenCerradaNoCambia(t *testing.T) {
	o := &entity.PurchaseOrder{Status: entity.POStatusCancelled, Lines: []entity.PurchaseOrderLine{line(10, 10)}}
	assert.Equal(t, entity.POStatusCancelled, o.RecomputeStatus())
	assert.True(t, o.IsClosed())
}

func TestReceivable_AcotaAlPendiente(t *testing.T) {
	l := line(20, 0)
	assert.Equal(t, int64(20), l.Receivable(25))
	assert.Equal(t, int64(7), l.Receivable(7))
	assert.Equal(t, int64(0), l.Receivable(0))
	assert.Equal(t, int64(0), l.Receivable(-3))

	full := line(20, 20)
	assert.Equal(t, int64(0), full.Receivable(5))
}

func TestTotal(t *testing.T) {
	o := &entity.PurchaseOrder{Lines: []entity.PurchaseOrderLine{line(10, 0), line(3, 0)}}
	assert.True(t, decimal.NewFromInt(26).Equal(o.Total()))
}

func TestItemExpiresWithin(t *testing.T) {
	ref := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	in7 := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	in8 := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&entity.Item{ExpiryDate: &in7}).ExpiresWithin(ref, 7))
	assert.False(t, (&entity.Item{ExpiryDate: &in8}).ExpiresWithin(ref, 7))
	assert.True(t, (&entity.Item{ExpiryDate: &past}).ExpiresWithin(ref, 7))
	assert.False(t, (&entity.Item{}).ExpiresWithin(ref, 7))
}
