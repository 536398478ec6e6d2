package returns

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/draft"
	"tillpoint/pkg/refgen"
)

type mockStore struct {
	records []Record
	err     error
}

func (m *mockStore) CreateReturn(ctx context.Context, rec Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func TestEmitForLine_NegativeLine(t *testing.T) {
	store := &mockStore{}
	em := NewEmitter(store, refgen.New())

	line := draft.Line{
		ItemID:    id.New(),
		UnitPrice: types.MustMoney("15.00"),
		Quantity:  -3,
	}

	rec, err := em.EmitForLine(context.Background(), line, types.MustMoney("10"), "INV00045821AAA")

	require.NoError(t, err)
	assert.Equal(t, 3, rec.Quantity)
	assert.True(t, rec.Value.Equal(types.MustMoney("40.50")), "value = %s", rec.Value)
	assert.Equal(t, ReasonNegativeQuantity, rec.Reason)
	assert.Equal(t, "INV00045821AAA", rec.LinkedInvoiceNumber)
	assert.True(t, strings.HasPrefix(rec.Number, refgen.PrefixReturn))
	require.Len(t, store.records, 1)
}

func TestEmitForLine_PositiveLineRejected(t *testing.T) {
	store := &mockStore{}
	em := NewEmitter(store, refgen.New())

	_, err := em.EmitForLine(context.Background(), draft.Line{
		ItemID:    id.New(),
		UnitPrice: types.MustMoney("15.00"),
		Quantity:  3,
	}, types.Zero(), "INV00045821AAA")

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, store.records)
}

func TestEmitForLine_StoreFailureStillReturnsRecord(t *testing.T) {
	store := &mockStore{err: errors.New("connection reset")}
	em := NewEmitter(store, refgen.New())

	rec, err := em.EmitForLine(context.Background(), draft.Line{
		ItemID:    id.New(),
		UnitPrice: types.MustMoney("15.00"),
		Quantity:  -1,
	}, types.Zero(), "INV00045821AAA")

	require.Error(t, err)
	assert.NotEmpty(t, rec.Number)
	assert.Equal(t, 1, rec.Quantity)
}

func TestEmitManual_NoLinkedInvoice(t *testing.T) {
	store := &mockStore{}
	em := NewEmitter(store, refgen.New())

	item := catalog.Item{ID: id.New(), UnitPrice: types.MustMoney("8.00")}
	rec, err := em.EmitManual(context.Background(), item, 2, types.MustMoney("25"))

	require.NoError(t, err)
	assert.Equal(t, ReasonManual, rec.Reason)
	assert.Empty(t, rec.LinkedInvoiceNumber)
	assert.True(t, rec.Value.Equal(types.MustMoney("12.00")), "value = %s", rec.Value)
}

func TestEmitManual_NonPositiveQuantityRejected(t *testing.T) {
	em := NewEmitter(&mockStore{}, refgen.New())

	for _, qty := range []int{0, -4} {
		_, err := em.EmitManual(context.Background(), catalog.Item{ID: id.New()}, qty, types.Zero())
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	}
}
