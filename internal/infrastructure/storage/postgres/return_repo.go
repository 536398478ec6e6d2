package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tillpoint/internal/domain/returns"
)

// ReturnRepo persists return records. It implements returns.Store.
type ReturnRepo struct {
	txManager *TxManager
}

// NewReturnRepo creates a return repository.
func NewReturnRepo(txManager *TxManager) *ReturnRepo {
	return &ReturnRepo{txManager: txManager}
}

// CreateReturn writes one return record. Called once per record,
// best-effort; it is never part of the invoice transaction.
func (r *ReturnRepo) CreateReturn(ctx context.Context, rec returns.Record) error {
	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Insert("returns").
		Columns("number", "item_id", "quantity", "value", "reason", "linked_invoice_number", "created_at").
		Values(rec.Number, rec.ItemID, rec.Quantity, rec.Value, rec.Reason, nullable(rec.LinkedInvoiceNumber), rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert return %s: %w", rec.Number, err)
	}

	return nil
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
