package invoice

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/discount"
	"tillpoint/internal/domain/draft"
	"tillpoint/internal/domain/returns"
	"tillpoint/pkg/logger"
)

// SideEffectKind identifies a post-commit task.
type SideEffectKind string

const (
	SideEffectReturn SideEffectKind = "return-create"
	SideEffectStock  SideEffectKind = "stock-update"
	SideEffectAudit  SideEffectKind = "audit-snapshot"
)

// SideEffect is the outcome of one post-commit task. Side effects are an
// explicit outbox: callers and tests assert on partial failures instead of
// fishing them out of logs.
type SideEffect struct {
	Kind      SideEffectKind `json:"kind"`
	ItemID    id.ID          `json:"itemId,omitempty"`
	Reference string         `json:"reference,omitempty"`
	Err       error          `json:"-"`
}

// Failed reports whether the task failed.
func (s SideEffect) Failed() bool {
	return s.Err != nil
}

// Result is the outcome of a successful commit: the persisted invoice plus
// the per-task side-effect report.
type Result struct {
	Invoice     *Invoice     `json:"invoice"`
	SideEffects []SideEffect `json:"sideEffects"`
}

// Failures returns the side effects that failed.
func (r *Result) Failures() []SideEffect {
	var failed []SideEffect
	for _, se := range r.SideEffects {
		if se.Failed() {
			failed = append(failed, se)
		}
	}
	return failed
}

// Hook is called once per successfully committed invoice.
type Hook func(inv *Invoice)

// Service sequences a draft commit: stock validation, pricing, the single
// atomic persistence call, then best-effort return emission and per-line
// stock updates.
//
// Steps after persistence are deliberately decoupled from it: the backing
// store has no cross-collection transactions, and recording the sale wins
// over blocking the cashier on a downstream update.
type Service struct {
	catalog  catalog.Provider
	settings catalog.SettingsProvider
	store    Store
	stock    StockUpdater
	emitter  *returns.Emitter
	rules    *discount.Resolver
	audit    AuditWriter
	hook     Hook
}

// NewService creates a commit service. audit may be nil to disable the
// audit trail; hook may be nil.
func NewService(
	catalogProvider catalog.Provider,
	settingsProvider catalog.SettingsProvider,
	store Store,
	stock StockUpdater,
	emitter *returns.Emitter,
	rules *discount.Resolver,
	audit AuditWriter,
) *Service {
	return &Service{
		catalog:  catalogProvider,
		settings: settingsProvider,
		store:    store,
		stock:    stock,
		emitter:  emitter,
		rules:    rules,
		audit:    audit,
	}
}

// OnInvoiceGenerated registers the caller's hook, fired once per successful
// commit after side effects are attempted.
func (s *Service) OnInvoiceGenerated(hook Hook) {
	s.hook = hook
}

// Commit turns a draft into a persisted invoice.
//
// Validation failures and persistence failures leave the draft untouched
// and return an error. Once the store call succeeds the commit is final:
// side-effect failures are reported in the Result, never rolled back.
func (s *Service) Commit(ctx context.Context, d *draft.Draft) (*Result, error) {
	if d.IsEmpty() {
		return nil, apperror.NewValidation("cannot commit an empty draft").
			WithDetail("draft_id", d.ID.String())
	}

	snap, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	settings, err := s.settings.FetchSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}

	// All-or-nothing stock gate. No persistence call happens past a failure.
	if err := ValidateStock(d, snap); err != nil {
		return nil, err
	}

	subtotal := draft.Calculate(d, types.Zero()).Subtotal
	pct := s.rules.Effective(ctx, settings, subtotal, len(d.Lines))
	totals := draft.Calculate(d, pct)

	inv := &Invoice{
		Number:   d.Number,
		Lines:    append([]draft.Line(nil), d.Lines...),
		Subtotal: totals.Subtotal,
		Discount: totals.Discount,
		Total:    totals.Total,
		Date:     time.Now().UTC(),
	}

	// The only atomic, must-succeed step.
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		return nil, apperror.NewPersistence(err).
			WithDetail("invoice_number", inv.Number)
	}

	result := &Result{Invoice: inv}
	result.SideEffects = append(result.SideEffects, s.emitReturns(ctx, inv, pct)...)
	result.SideEffects = append(result.SideEffects, s.updateStock(ctx, inv, snap)...)
	result.SideEffects = append(result.SideEffects, s.writeAudit(ctx, inv)...)

	logger.Info(ctx, "invoice committed",
		"number", inv.Number,
		"lines", len(inv.Lines),
		"total", inv.Total,
		"side_effect_failures", len(result.Failures()),
	)

	if s.hook != nil {
		s.hook(inv)
	}

	return result, nil
}

// emitReturns spins off one return record per negative-quantity line.
// Each emission is an independent call; one failure does not stop the rest.
func (s *Service) emitReturns(ctx context.Context, inv *Invoice, pct types.Money) []SideEffect {
	var effects []SideEffect
	for _, line := range inv.Lines {
		if !line.IsReturn() {
			continue
		}

		rec, err := s.emitter.EmitForLine(ctx, line, pct, inv.Number)
		if err != nil {
			logger.Warn(ctx, "return emission failed",
				"item_id", line.ItemID,
				"invoice", inv.Number,
				"error", err,
			)
		}
		effects = append(effects, SideEffect{
			Kind:      SideEffectReturn,
			ItemID:    line.ItemID,
			Reference: rec.Number,
			Err:       err,
		})
	}
	return effects
}

// updateStock issues one stock-update call per line. Positive lines consume
// stock, negative lines put it back: newQty = availableQty - quantity, the
// engine's single sign rule for stock arithmetic.
func (s *Service) updateStock(ctx context.Context, inv *Invoice, snap *catalog.Snapshot) []SideEffect {
	effects := make([]SideEffect, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		effect := SideEffect{Kind: SideEffectStock, ItemID: line.ItemID}

		item, ok := snap.Item(line.ItemID)
		if !ok {
			effect.Err = apperror.NewNotFound("catalog item", line.ItemID.String())
		} else {
			newQty := item.AvailableQty - line.Quantity
			effect.Err = s.stock.UpdateItemStock(ctx, line.ItemID, newQty)
		}

		if effect.Err != nil {
			logger.Warn(ctx, "stock update failed",
				"item_id", line.ItemID,
				"invoice", inv.Number,
				"error", effect.Err,
			)
		}
		effects = append(effects, effect)
	}
	return effects
}

func (s *Service) writeAudit(ctx context.Context, inv *Invoice) []SideEffect {
	if s.audit == nil {
		return nil
	}

	effect := SideEffect{Kind: SideEffectAudit, Reference: inv.Number}
	if err := s.audit.RecordInvoice(ctx, inv); err != nil {
		effect.Err = err
		logger.Warn(ctx, "invoice audit snapshot failed",
			"invoice", inv.Number,
			"error", err,
		)
	}
	return []SideEffect{effect}
}
