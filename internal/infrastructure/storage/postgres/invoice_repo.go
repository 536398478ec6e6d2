package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"tillpoint/internal/domain/invoice"
)

// InvoiceRepo persists committed invoices. It implements invoice.Store.
type InvoiceRepo struct {
	txManager *TxManager
}

// NewInvoiceRepo creates an invoice repository.
func NewInvoiceRepo(txManager *TxManager) *InvoiceRepo {
	return &InvoiceRepo{txManager: txManager}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CreateInvoice writes the invoice header and its lines in one transaction.
// This is the single atomic step of a commit: either the whole invoice
// exists afterwards or none of it does.
func (r *InvoiceRepo) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.builder().
			Insert("invoices").
			Columns("number", "subtotal", "discount", "total", "date").
			Values(inv.Number, inv.Subtotal, inv.Discount, inv.Total, inv.Date).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		querier := r.txManager.GetQuerier(ctx)
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert invoice %s: %w", inv.Number, err)
		}

		if len(inv.Lines) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, line := range inv.Lines {
			batch.Queue(`
				INSERT INTO invoice_lines (invoice_number, line_no, item_id, unit_price, quantity, original_qty)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, inv.Number, i+1, line.ItemID, line.UnitPrice, line.Quantity, line.OriginalQty)
		}

		dbTx := r.txManager.GetTx(ctx)
		if dbTx == nil {
			return fmt.Errorf("invoice lines insert requires transaction context")
		}

		results := dbTx.SendBatch(ctx, batch)
		defer results.Close()

		for range inv.Lines {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}

		return results.Close()
	})
}
