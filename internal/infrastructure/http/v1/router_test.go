package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/auth"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/discount"
	"tillpoint/internal/domain/invoice"
	"tillpoint/internal/domain/returns"
	"tillpoint/internal/domain/session"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/refgen"
)

// --- in-memory collaborators ---

type memCatalog struct {
	snap *catalog.Snapshot
}

func (m *memCatalog) FetchCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	return m.snap, nil
}

func (m *memCatalog) GetItem(ctx context.Context, itemID id.ID) (catalog.Item, error) {
	item, ok := m.snap.Item(itemID)
	if !ok {
		return catalog.Item{}, apperror.NewNotFound("catalog item", itemID.String())
	}
	return item, nil
}

type memSettings struct {
	settings catalog.Settings
}

func (m *memSettings) FetchSettings(ctx context.Context) (catalog.Settings, error) {
	return m.settings, nil
}

type memInvoiceStore struct {
	created []*invoice.Invoice
}

func (m *memInvoiceStore) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m.created = append(m.created, inv)
	return nil
}

type memStock struct {
	updates map[id.ID]int
}

func (m *memStock) UpdateItemStock(ctx context.Context, itemID id.ID, newQty int) error {
	m.updates[itemID] = newQty
	return nil
}

type memReturnStore struct {
	records []returns.Record
}

func (m *memReturnStore) CreateReturn(ctx context.Context, rec returns.Record) error {
	m.records = append(m.records, rec)
	return nil
}

type apiFixture struct {
	router   http.Handler
	invoices *memInvoiceStore
	stock    *memStock
	returns  *memReturnStore
	itemA    catalog.Item
	itemB    catalog.Item
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	itemA := catalog.Item{ID: id.New(), Code: "A-001", Name: "Widget", UnitPrice: types.MustMoney("10.00"), AvailableQty: 20}
	itemB := catalog.Item{ID: id.New(), Code: "B-001", Name: "Gadget", UnitPrice: types.MustMoney("25.00"), AvailableQty: 5}

	cat := &memCatalog{snap: catalog.NewSnapshot([]catalog.Item{itemA, itemB})}
	settings := &memSettings{settings: catalog.Settings{DiscountPercentage: types.MustMoney("10"), Currency: "USD"}}
	invoices := &memInvoiceStore{}
	stock := &memStock{updates: map[id.ID]int{}}
	returnStore := &memReturnStore{}

	rules, err := discount.NewResolver()
	require.NoError(t, err)

	refs := refgen.New()
	emitter := returns.NewEmitter(returnStore, refs)
	commit := invoice.NewService(cat, settings, invoices, stock, emitter, rules, nil)

	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:   log,
		JWT:      auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
		Registry: session.NewRegistry(refs),
		Catalog:  cat,
		Items:    cat,
		Settings: settings,
		Rules:    rules,
		Commit:   commit,
		Emitter:  emitter,
	})

	return &apiFixture{
		router:   router,
		invoices: invoices,
		stock:    stock,
		returns:  returnStore,
		itemA:    itemA,
		itemB:    itemB,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) openSession(t *testing.T) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{
		"terminal": "till-1",
		"cashier":  "sam",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

// --- tests ---

func TestAPI_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/draft", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/draft", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_SaleFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.openSession(t)

	// Empty draft with a reference number up front.
	rec := f.do(t, http.MethodGet, "/api/v1/draft", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d struct {
		InvoiceNumber string `json:"invoiceNumber"`
		Totals        struct {
			Total string `json:"total"`
		} `json:"totals"`
	}
	decode(t, rec, &d)
	assert.Regexp(t, `^INV\d{8}[0-9A-Z]{3}$`, d.InvoiceNumber)
	assert.Equal(t, "0.00", d.Totals.Total)

	// 5 x 10.00 with 10% discount.
	rec = f.do(t, http.MethodPost, "/api/v1/draft/lines", token, map[string]any{
		"itemId": f.itemA.ID.String(), "quantity": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &d)
	assert.Equal(t, "45.00", d.Totals.Total)

	// Re-adding the same item is refused.
	rec = f.do(t, http.MethodPost, "/api/v1/draft/lines", token, map[string]any{
		"itemId": f.itemA.ID.String(), "quantity": 1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Asking for more than available is refused, draft unchanged.
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/draft/lines/%s", f.itemB.ID), token, map[string]any{
		"quantity": 99,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/draft/lines", token, map[string]any{
		"itemId": f.itemB.ID.String(), "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/draft/lines/%s", f.itemB.ID), token, map[string]any{
		"quantity": 99,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Commit persists the invoice and decrements stock.
	rec = f.do(t, http.MethodPost, "/api/v1/draft/commit", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var commitResp struct {
		Invoice struct {
			InvoiceNumber string `json:"invoiceNumber"`
			Total         string `json:"total"`
		} `json:"invoice"`
		SideEffects []struct {
			Kind string `json:"kind"`
			Ok   bool   `json:"ok"`
		} `json:"sideEffects"`
		NextDraft struct {
			InvoiceNumber string `json:"invoiceNumber"`
		} `json:"nextDraft"`
	}
	decode(t, rec, &commitResp)
	assert.Equal(t, d.InvoiceNumber, commitResp.Invoice.InvoiceNumber)
	assert.NotEqual(t, d.InvoiceNumber, commitResp.NextDraft.InvoiceNumber)
	for _, se := range commitResp.SideEffects {
		assert.True(t, se.Ok, se.Kind)
	}

	require.Len(t, f.invoices.created, 1)
	assert.Equal(t, 15, f.stock.updates[f.itemA.ID])
	assert.Equal(t, 3, f.stock.updates[f.itemB.ID])
}

func TestAPI_ParkAndResume(t *testing.T) {
	f := newAPIFixture(t)
	token := f.openSession(t)

	// Parking an empty draft is refused.
	rec := f.do(t, http.MethodPost, "/api/v1/draft/park", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/draft", token, nil)
	var before struct {
		InvoiceNumber string `json:"invoiceNumber"`
	}
	decode(t, rec, &before)

	rec = f.do(t, http.MethodPost, "/api/v1/draft/lines", token, map[string]any{
		"itemId": f.itemA.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/draft/park", token, map[string]string{"label": "mrs jones"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var queue struct {
		Pending []struct {
			DraftID       string `json:"draftId"`
			InvoiceNumber string `json:"invoiceNumber"`
			Label         string `json:"label"`
		} `json:"pending"`
	}
	rec = f.do(t, http.MethodGet, "/api/v1/queue", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &queue)
	require.Len(t, queue.Pending, 1)
	assert.Equal(t, "mrs jones", queue.Pending[0].Label)
	assert.Equal(t, before.InvoiceNumber, queue.Pending[0].InvoiceNumber)

	// Resume restores the parked draft with its original number.
	rec = f.do(t, http.MethodPost, "/api/v1/queue/"+queue.Pending[0].DraftID+"/resume", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/draft", token, nil)
	var after struct {
		InvoiceNumber string `json:"invoiceNumber"`
		Lines         []struct {
			Quantity int `json:"quantity"`
		} `json:"lines"`
	}
	decode(t, rec, &after)
	assert.Equal(t, before.InvoiceNumber, after.InvoiceNumber)
	require.Len(t, after.Lines, 1)
	assert.Equal(t, 1, after.Lines[0].Quantity)
}

func TestAPI_ManualReturn(t *testing.T) {
	f := newAPIFixture(t)
	token := f.openSession(t)

	rec := f.do(t, http.MethodPost, "/api/v1/returns/manual", token, map[string]any{
		"itemId": f.itemA.ID.String(), "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ReturnNumber string `json:"returnNumber"`
		Value        string `json:"valueAfterDiscount"`
		Reason       string `json:"reason"`
	}
	decode(t, rec, &resp)
	assert.Regexp(t, `^RET\d{8}[0-9A-Z]{3}$`, resp.ReturnNumber)
	assert.Equal(t, "18.00", resp.Value)
	assert.Equal(t, returns.ReasonManual, resp.Reason)

	require.Len(t, f.returns.records, 1)
	assert.Empty(t, f.returns.records[0].LinkedInvoiceNumber)
}
