// Package invoice turns a draft into a committed invoice: stock validation,
// pricing, the single atomic persistence call and the best-effort side
// effects that follow it.
package invoice

import (
	"context"
	"time"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/draft"
)

// Invoice is a committed, immutable invoice. Once created it is owned by the
// persistence collaborator; the engine never mutates it again.
type Invoice struct {
	Number   string       `db:"number" json:"invoiceNumber"`
	Lines    []draft.Line `db:"-" json:"lines"`
	Subtotal types.Money  `db:"subtotal" json:"subtotal"`
	Discount types.Money  `db:"discount" json:"discount"`
	Total    types.Money  `db:"total" json:"total"`
	Date     time.Time    `db:"date" json:"date"`
}

// Store persists invoices. CreateInvoice is the one atomic, must-succeed
// step of a commit: if it fails the whole commit is abandoned.
type Store interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
}

// StockUpdater applies the post-commit catalog quantity for one item.
// Absolute set, one call per line, best-effort.
type StockUpdater interface {
	UpdateItemStock(ctx context.Context, itemID id.ID, newQty int) error
}

// AuditWriter records a snapshot of a committed invoice. Optional and
// best-effort; a nil writer disables auditing.
type AuditWriter interface {
	RecordInvoice(ctx context.Context, inv *Invoice) error
}
