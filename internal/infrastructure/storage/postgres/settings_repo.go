package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tillpoint/internal/domain/catalog"
)

// SettingsRepo reads the single-row shop settings table.
// It implements catalog.SettingsProvider.
type SettingsRepo struct {
	txManager *TxManager
}

// NewSettingsRepo creates a settings repository.
func NewSettingsRepo(txManager *TxManager) *SettingsRepo {
	return &SettingsRepo{txManager: txManager}
}

// FetchSettings returns the shop billing settings. A missing row yields
// zero-discount defaults rather than an error; a fresh install can sell
// before anyone touched the settings page.
func (r *SettingsRepo) FetchSettings(ctx context.Context) (catalog.Settings, error) {
	const sql = `SELECT discount_percentage, discount_rule, currency FROM settings LIMIT 1`

	var settings catalog.Settings
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &settings, sql); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Settings{
				DiscountPercentage: decimal.Zero,
				Currency:           "USD",
			}, nil
		}
		return catalog.Settings{}, fmt.Errorf("select settings: %w", err)
	}

	return settings, nil
}
