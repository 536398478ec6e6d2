package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/catalog"
)

// CatalogRepo reads the item catalog and applies post-commit stock updates.
// It implements catalog.Provider and invoice.StockUpdater.
type CatalogRepo struct {
	txManager *TxManager
}

// NewCatalogRepo creates a catalog repository.
func NewCatalogRepo(txManager *TxManager) *CatalogRepo {
	return &CatalogRepo{txManager: txManager}
}

func (r *CatalogRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// FetchCatalog returns a point-in-time snapshot of all sellable items.
func (r *CatalogRepo) FetchCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	sql, args, err := r.builder().
		Select("id", "code", "name", "unit_price", "available_qty").
		From("items").
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []catalog.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	return catalog.NewSnapshot(items), nil
}

// GetItem returns a single catalog item.
func (r *CatalogRepo) GetItem(ctx context.Context, itemID id.ID) (catalog.Item, error) {
	sql, args, err := r.builder().
		Select("id", "code", "name", "unit_price", "available_qty").
		From("items").
		Where(squirrel.Eq{"id": itemID, "deleted": false}).
		ToSql()
	if err != nil {
		return catalog.Item{}, fmt.Errorf("build select: %w", err)
	}

	var item catalog.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Item{}, apperror.NewNotFound("catalog item", itemID.String())
		}
		return catalog.Item{}, fmt.Errorf("select item: %w", err)
	}

	return item, nil
}

// UpdateItemStock sets the absolute available quantity for an item.
// One call per committed line, best-effort; the caller decides what a
// failure means.
func (r *CatalogRepo) UpdateItemStock(ctx context.Context, itemID id.ID, newQty int) error {
	sql, args, err := r.builder().
		Update("items").
		Set("available_qty", newQty).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("catalog item", itemID.String())
	}

	return nil
}
