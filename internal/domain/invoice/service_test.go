package invoice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/discount"
	"tillpoint/internal/domain/draft"
	"tillpoint/internal/domain/returns"
	"tillpoint/pkg/refgen"
)

// --- collaborator stubs ---

type stubCatalog struct {
	snap *catalog.Snapshot
	err  error
}

func (s *stubCatalog) FetchCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	return s.snap, s.err
}

type stubSettings struct {
	settings catalog.Settings
	err      error
}

func (s *stubSettings) FetchSettings(ctx context.Context) (catalog.Settings, error) {
	return s.settings, s.err
}

type stubInvoiceStore struct {
	created []*Invoice
	err     error
}

func (s *stubInvoiceStore) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, inv)
	return nil
}

type stubStock struct {
	updates map[id.ID]int
	failFor map[id.ID]error
}

func newStubStock() *stubStock {
	return &stubStock{updates: map[id.ID]int{}, failFor: map[id.ID]error{}}
}

func (s *stubStock) UpdateItemStock(ctx context.Context, itemID id.ID, newQty int) error {
	if err := s.failFor[itemID]; err != nil {
		return err
	}
	s.updates[itemID] = newQty
	return nil
}

type stubReturnStore struct {
	records []returns.Record
	err     error
}

func (s *stubReturnStore) CreateReturn(ctx context.Context, rec returns.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

type fixture struct {
	svc         *Service
	catalogStub *stubCatalog
	settings    *stubSettings
	invoices    *stubInvoiceStore
	stock       *stubStock
	returnStore *stubReturnStore
}

func newFixture(t *testing.T, items []catalog.Item, discountPct string) *fixture {
	t.Helper()

	rules, err := discount.NewResolver()
	require.NoError(t, err)

	f := &fixture{
		catalogStub: &stubCatalog{snap: catalog.NewSnapshot(items)},
		settings:    &stubSettings{settings: catalog.Settings{DiscountPercentage: types.MustMoney(discountPct)}},
		invoices:    &stubInvoiceStore{},
		stock:       newStubStock(),
		returnStore: &stubReturnStore{},
	}
	f.svc = NewService(
		f.catalogStub,
		f.settings,
		f.invoices,
		f.stock,
		returns.NewEmitter(f.returnStore, refgen.New()),
		rules,
		nil,
	)
	return f
}

// --- tests ---

func TestCommit_PricesPersistsAndUpdatesStock(t *testing.T) {
	a := item("10.00", 20)
	b := item("20.00", 10)
	f := newFixture(t, []catalog.Item{a, b}, "10")

	d := draft.New("INV00000001AAA")
	require.NoError(t, d.AddLine(a, 5))
	require.NoError(t, d.AddLine(b, 2))

	res, err := f.svc.Commit(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, f.invoices.created, 1)
	inv := f.invoices.created[0]
	assert.Equal(t, "INV00000001AAA", inv.Number)
	assert.True(t, inv.Subtotal.Equal(types.MustMoney("90.00")))
	assert.True(t, inv.Discount.Equal(types.MustMoney("9.00")))
	assert.True(t, inv.Total.Equal(types.MustMoney("81.00")))

	// Positive lines subtract from stock.
	assert.Equal(t, 15, f.stock.updates[a.ID])
	assert.Equal(t, 8, f.stock.updates[b.ID])

	assert.Empty(t, res.Failures())
	assert.Empty(t, f.returnStore.records)
}

func TestCommit_NegativeLineEmitsReturnAndRestocks(t *testing.T) {
	c := item("15.00", 7)
	f := newFixture(t, []catalog.Item{c}, "10")

	d := draft.New("INV00000002BBB")
	require.NoError(t, d.AddLine(c, -3))

	res, err := f.svc.Commit(context.Background(), d)
	require.NoError(t, err)

	inv := res.Invoice
	assert.True(t, inv.Subtotal.Equal(types.MustMoney("-45.00")))

	require.Len(t, f.returnStore.records, 1)
	rec := f.returnStore.records[0]
	assert.Equal(t, 3, rec.Quantity)
	assert.True(t, rec.Value.Equal(types.MustMoney("40.50")), "value = %s", rec.Value)
	assert.Equal(t, returns.ReasonNegativeQuantity, rec.Reason)
	assert.Equal(t, inv.Number, rec.LinkedInvoiceNumber)

	// Negative lines add back to stock.
	assert.Equal(t, 10, f.stock.updates[c.ID])
}

func TestCommit_StockGateRefusesWholeDraft(t *testing.T) {
	a := item("10.00", 2)
	b := item("20.00", 50)
	f := newFixture(t, []catalog.Item{a, b}, "0")

	d := draft.New("INV00000003CCC")
	d.Lines = []draft.Line{
		{ItemID: a.ID, UnitPrice: a.UnitPrice, Quantity: 5, OriginalQty: 2},
		{ItemID: b.ID, UnitPrice: b.UnitPrice, Quantity: 1, OriginalQty: 50},
	}

	_, err := f.svc.Commit(context.Background(), d)

	require.Error(t, err)
	var stockErr *StockValidationError
	require.True(t, errors.As(err, &stockErr))
	require.Len(t, stockErr.Violations, 1)
	assert.Equal(t, a.ID, stockErr.Violations[0].ItemID)

	// No persistence call was made; draft is untouched.
	assert.Empty(t, f.invoices.created)
	assert.Empty(t, f.stock.updates)
	assert.Len(t, d.Lines, 2)
}

func TestCommit_EmptyDraftRejected(t *testing.T) {
	f := newFixture(t, nil, "0")

	_, err := f.svc.Commit(context.Background(), draft.New("INV00000004DDD"))

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, f.invoices.created)
}

func TestCommit_PersistenceFailureAbortsEverything(t *testing.T) {
	a := item("10.00", 20)
	f := newFixture(t, []catalog.Item{a}, "0")
	f.invoices.err = errors.New("write timeout")

	d := draft.New("INV00000005EEE")
	require.NoError(t, d.AddLine(a, 1))

	_, err := f.svc.Commit(context.Background(), d)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePersistence))

	// Nothing downstream happened.
	assert.Empty(t, f.stock.updates)
	assert.Empty(t, f.returnStore.records)
}

func TestCommit_SideEffectFailuresAreNonFatal(t *testing.T) {
	a := item("10.00", 20)
	b := item("5.00", 9)
	f := newFixture(t, []catalog.Item{a, b}, "0")
	f.stock.failFor[a.ID] = errors.New("item service unavailable")
	f.returnStore.err = errors.New("returns collection down")

	d := draft.New("INV00000006FFF")
	require.NoError(t, d.AddLine(a, 2))
	require.NoError(t, d.AddLine(b, -1))

	res, err := f.svc.Commit(context.Background(), d)

	// The sale is recorded regardless of downstream failures.
	require.NoError(t, err)
	require.Len(t, f.invoices.created, 1)

	failures := res.Failures()
	require.Len(t, failures, 2)

	kinds := map[SideEffectKind]bool{}
	for _, se := range failures {
		kinds[se.Kind] = true
	}
	assert.True(t, kinds[SideEffectReturn])
	assert.True(t, kinds[SideEffectStock])

	// The other stock update still went through.
	assert.Equal(t, 10, f.stock.updates[b.ID])
}

func TestCommit_FiresHookOncePerCommit(t *testing.T) {
	a := item("10.00", 20)
	f := newFixture(t, []catalog.Item{a}, "0")

	var generated []*Invoice
	f.svc.OnInvoiceGenerated(func(inv *Invoice) {
		generated = append(generated, inv)
	})

	d := draft.New("INV00000007GGG")
	require.NoError(t, d.AddLine(a, 1))

	res, err := f.svc.Commit(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, generated, 1)
	assert.Same(t, res.Invoice, generated[0])
}

func TestCommit_DiscountRuleApplies(t *testing.T) {
	a := item("100.00", 20)
	f := newFixture(t, []catalog.Item{a}, "5")
	f.settings.settings.DiscountRule = `subtotal >= 200.0 ? 20.0 : base`

	d := draft.New("INV00000008HHH")
	require.NoError(t, d.AddLine(a, 3))

	res, err := f.svc.Commit(context.Background(), d)
	require.NoError(t, err)

	assert.True(t, res.Invoice.Discount.Equal(types.MustMoney("60.00")), "discount = %s", res.Invoice.Discount)
	assert.True(t, res.Invoice.Total.Equal(types.MustMoney("240.00")))
}
