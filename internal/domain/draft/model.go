// Package draft provides the mutable in-progress invoice draft and its
// builder operations. A draft is edited line by line, priced on every read
// and only turned into a persisted invoice by the commit service.
package draft

import (
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
)

// MinLineQuantity is the policy floor for negative quantities. A negative
// quantity represents an in-invoice return adjustment, not a data error,
// but it is capped so a typo cannot restock a warehouse.
const MinLineQuantity = -999

// Line is one catalog item inside a draft with a signed quantity.
//
// The quantity sign is the single return convention of the engine: positive
// sells, negative returns. Code that needs to branch on it checks the sign
// here and nowhere else.
type Line struct {
	ItemID id.ID `db:"item_id" json:"itemId"`

	// UnitPrice is copied from the catalog at add time and is not refreshed
	// by later catalog changes.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Quantity is the signed line quantity.
	Quantity int `db:"quantity" json:"quantity"`

	// OriginalQty is the item availability captured when the line was first
	// added. Kept purely for return bookkeeping, never used to limit edits.
	OriginalQty int `db:"original_qty" json:"originalQty"`
}

// IsReturn reports whether the line represents an in-invoice return.
func (l Line) IsReturn() bool {
	return l.Quantity < 0
}

// Draft is an in-progress, uncommitted invoice.
type Draft struct {
	ID        id.ID     `json:"draftId"`
	Number    string    `json:"invoiceNumber"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates an empty draft with the given invoice number. The number is
// generated once per draft and stays stable across park/resume until commit.
func New(number string) *Draft {
	return &Draft{
		ID:        id.New(),
		Number:    number,
		Lines:     make([]Line, 0),
		CreatedAt: time.Now().UTC(),
	}
}

// IsEmpty reports whether the draft has no lines.
func (d *Draft) IsEmpty() bool {
	return len(d.Lines) == 0
}

// Line returns the line for an item, if present.
func (d *Draft) Line(itemID id.ID) (Line, bool) {
	for _, l := range d.Lines {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return Line{}, false
}

// AddLine appends a new line for a catalog item.
//
// Re-adding an item already in the draft is rejected: quantity is changed
// via UpdateQuantity, not re-add. Unit price and current availability are
// captured at this instant.
func (d *Draft) AddLine(item catalog.Item, qty int) error {
	if _, exists := d.Line(item.ID); exists {
		return apperror.NewDuplicateLine(item.ID.String())
	}

	if qty == 0 {
		return apperror.NewValidation("quantity cannot be zero").
			WithDetail("item_id", item.ID.String())
	}
	if qty < MinLineQuantity {
		return apperror.NewValidation("quantity below the allowed floor").
			WithDetail("item_id", item.ID.String()).
			WithDetail("floor", MinLineQuantity)
	}

	d.Lines = append(d.Lines, Line{
		ItemID:      item.ID,
		UnitPrice:   item.UnitPrice,
		Quantity:    qty,
		OriginalQty: item.AvailableQty,
	})
	return nil
}

// UpdateQuantity changes the signed quantity of an existing line.
//
// A positive quantity above the item's current availability (re-read from
// the snapshot, not the captured OriginalQty) is rejected with a
// STOCK_EXCEEDED warning and the draft is left unchanged. Zero removes the
// line. Negative values are allowed down to MinLineQuantity.
func (d *Draft) UpdateQuantity(snap *catalog.Snapshot, itemID id.ID, newQty int) error {
	idx := -1
	for i, l := range d.Lines {
		if l.ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NewNotFound("draft line", itemID.String())
	}

	if newQty == 0 {
		d.RemoveLine(itemID)
		return nil
	}

	if newQty < MinLineQuantity {
		return apperror.NewValidation("quantity below the allowed floor").
			WithDetail("item_id", itemID.String()).
			WithDetail("floor", MinLineQuantity)
	}

	if newQty > 0 {
		available := snap.AvailableQty(itemID)
		if newQty > available {
			return apperror.NewStockExceeded(itemID.String(), newQty, available)
		}
	}

	d.Lines[idx].Quantity = newQty
	return nil
}

// RemoveLine deletes the line for an item. No-op if absent.
func (d *Draft) RemoveLine(itemID id.ID) {
	for i, l := range d.Lines {
		if l.ItemID == itemID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return
		}
	}
}
