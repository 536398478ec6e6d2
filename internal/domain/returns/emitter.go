// Package returns derives return records from negative-quantity draft lines
// and from manual quantity adjustments.
package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/draft"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/refgen"
)

// Reasons recorded on emitted returns.
const (
	// ReasonNegativeQuantity marks returns derived from negative-quantity
	// lines during invoice commit.
	ReasonNegativeQuantity = "negative-quantity-adjustment"

	// ReasonManual marks standalone returns emitted outside any commit.
	ReasonManual = "manual-adjustment"
)

// Record is a derived document representing value returned to stock.
type Record struct {
	Number string `db:"number" json:"returnNumber"`
	ItemID id.ID  `db:"item_id" json:"itemId"`

	// Quantity is always non-negative.
	Quantity int `db:"quantity" json:"quantity"`

	// Value is the returned value net of the invoice discount:
	// unitPrice * quantity * (1 - discountPct/100).
	Value types.Money `db:"value" json:"valueAfterDiscount"`

	Reason string `db:"reason" json:"reason"`

	// LinkedInvoiceNumber is empty for manual adjustments.
	LinkedInvoiceNumber string `db:"linked_invoice_number" json:"linkedInvoiceNumber,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Store persists return records. One call per record, best-effort.
type Store interface {
	CreateReturn(ctx context.Context, rec Record) error
}

// Emitter produces and persists return records.
type Emitter struct {
	store Store
	refs  *refgen.Generator
}

// NewEmitter creates a return emitter.
func NewEmitter(store Store, refs *refgen.Generator) *Emitter {
	return &Emitter{store: store, refs: refs}
}

// EmitForLine derives a return record from a negative-quantity line of a
// committed invoice and persists it. The record is returned even when the
// store call fails so callers can report what was attempted.
func (e *Emitter) EmitForLine(ctx context.Context, line draft.Line, discountPct types.Money, invoiceNumber string) (Record, error) {
	if !line.IsReturn() {
		return Record{}, apperror.NewValidation("line quantity is not negative").
			WithDetail("item_id", line.ItemID.String())
	}

	qty := -line.Quantity
	rec := e.build(line.ItemID, line.UnitPrice, qty, discountPct, ReasonNegativeQuantity, invoiceNumber)

	if err := e.store.CreateReturn(ctx, rec); err != nil {
		return rec, fmt.Errorf("create return %s: %w", rec.Number, err)
	}

	logger.Info(ctx, "return emitted",
		"number", rec.Number,
		"item_id", rec.ItemID,
		"quantity", rec.Quantity,
		"invoice", invoiceNumber,
	)
	return rec, nil
}

// EmitManual emits a standalone return for a manual "reduce quantity on an
// existing invoice line" action. No invoice is linked.
func (e *Emitter) EmitManual(ctx context.Context, item catalog.Item, qty int, discountPct types.Money) (Record, error) {
	if qty <= 0 {
		return Record{}, apperror.NewValidation("return quantity must be positive").
			WithDetail("item_id", item.ID.String())
	}

	rec := e.build(item.ID, item.UnitPrice, qty, discountPct, ReasonManual, "")

	if err := e.store.CreateReturn(ctx, rec); err != nil {
		return rec, fmt.Errorf("create return %s: %w", rec.Number, err)
	}

	logger.Info(ctx, "manual return emitted",
		"number", rec.Number,
		"item_id", rec.ItemID,
		"quantity", rec.Quantity,
	)
	return rec, nil
}

func (e *Emitter) build(itemID id.ID, unitPrice types.Money, qty int, discountPct types.Money, reason, invoiceNumber string) Record {
	value := unitPrice.
		Mul(decimal.NewFromInt(int64(qty))).
		Mul(decimal.NewFromInt(1).Sub(types.Percent(discountPct)))

	return Record{
		Number:              e.refs.ReturnNumber(),
		ItemID:              itemID,
		Quantity:            qty,
		Value:               value,
		Reason:              reason,
		LinkedInvoiceNumber: invoiceNumber,
		CreatedAt:           time.Now().UTC(),
	}
}
