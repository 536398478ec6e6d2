package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/discount"
	"tillpoint/internal/domain/draft"
	"tillpoint/internal/domain/invoice"
	"tillpoint/internal/domain/queue"
	"tillpoint/internal/domain/session"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// DraftHandler mutates the active draft of the calling session.
// All draft operations run under the session handle, so concurrent requests
// from the same terminal are serialized.
type DraftHandler struct {
	*BaseHandler
	registry *session.Registry
	catalog  catalog.Provider
	settings catalog.SettingsProvider
	rules    *discount.Resolver
	commit   *invoice.Service
}

func NewDraftHandler(
	base *BaseHandler,
	registry *session.Registry,
	provider catalog.Provider,
	settings catalog.SettingsProvider,
	rules *discount.Resolver,
	commit *invoice.Service,
) *DraftHandler {
	return &DraftHandler{
		BaseHandler: base,
		registry:    registry,
		catalog:     provider,
		settings:    settings,
		rules:       rules,
		commit:      commit,
	}
}

// totals prices a draft with the effective discount percentage.
func (h *DraftHandler) totals(ctx context.Context, d *draft.Draft) (draft.Totals, error) {
	settings, err := h.settings.FetchSettings(ctx)
	if err != nil {
		return draft.Totals{}, err
	}
	subtotal := draft.Calculate(d, types.Zero()).Subtotal
	pct := h.rules.Effective(ctx, settings, subtotal, len(d.Lines))
	return draft.Calculate(d, pct), nil
}

// Get handles GET /api/v1/draft.
func (h *DraftHandler) Get(c *gin.Context) {
	var resp dto.DraftResponse
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		d := ws.Active()
		totals, err := h.totals(c.Request.Context(), d)
		if err != nil {
			return err
		}
		resp = dto.FromDraft(d, totals)
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddLine handles POST /api/v1/draft/lines.
func (h *DraftHandler) AddLine(c *gin.Context) {
	var req dto.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := parseItemID(req.ItemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	var resp dto.DraftResponse
	err = h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		ctx := c.Request.Context()
		snap, err := h.catalog.FetchCatalog(ctx)
		if err != nil {
			return err
		}
		item, ok := snap.Item(itemID)
		if !ok {
			return notFoundItem(itemID)
		}

		d := ws.Active()
		if err := d.AddLine(item, req.Qty()); err != nil {
			return err
		}

		totals, err := h.totals(ctx, d)
		if err != nil {
			return err
		}
		resp = dto.FromDraft(d, totals)
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateLine handles PUT /api/v1/draft/lines/:itemId.
// Quantity zero removes the line.
func (h *DraftHandler) UpdateLine(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var resp dto.DraftResponse
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		ctx := c.Request.Context()
		snap, err := h.catalog.FetchCatalog(ctx)
		if err != nil {
			return err
		}

		d := ws.Active()
		if err := d.UpdateQuantity(snap, itemID, *req.Quantity); err != nil {
			return err
		}

		totals, err := h.totals(ctx, d)
		if err != nil {
			return err
		}
		resp = dto.FromDraft(d, totals)
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveLine handles DELETE /api/v1/draft/lines/:itemId.
// Removing an absent line is a no-op.
func (h *DraftHandler) RemoveLine(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}

	var resp dto.DraftResponse
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		d := ws.Active()
		d.RemoveLine(itemID)

		totals, err := h.totals(c.Request.Context(), d)
		if err != nil {
			return err
		}
		resp = dto.FromDraft(d, totals)
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Commit handles POST /api/v1/draft/commit.
// On success the committed draft is replaced with a fresh empty one; the
// pending queue is untouched.
func (h *DraftHandler) Commit(c *gin.Context) {
	var resp dto.CommitResponse
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		ctx := c.Request.Context()
		result, err := h.commit.Commit(ctx, ws.Active())
		if err != nil {
			return err
		}

		next := ws.CompleteCommit()
		nextTotals, err := h.totals(ctx, next)
		if err != nil {
			// Invoice is already persisted, report the fresh draft unpriced.
			nextTotals = draft.Totals{
				Subtotal: types.Zero(),
				Discount: types.Zero(),
				Total:    types.Zero(),
			}
		}

		resp = dto.CommitResponse{
			Invoice:     dto.FromInvoice(result.Invoice),
			SideEffects: dto.FromCommitResult(result),
			NextDraft:   dto.FromDraft(next, nextTotals),
		}
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
