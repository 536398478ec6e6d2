package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/returns"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// ItemGetter loads a single catalog item.
type ItemGetter interface {
	GetItem(ctx context.Context, itemID id.ID) (catalog.Item, error)
}

// ReturnHandler records returns that are not tied to an invoice commit.
type ReturnHandler struct {
	*BaseHandler
	items    ItemGetter
	settings catalog.SettingsProvider
	emitter  *returns.Emitter
}

func NewReturnHandler(base *BaseHandler, items ItemGetter, settings catalog.SettingsProvider, emitter *returns.Emitter) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, items: items, settings: settings, emitter: emitter}
}

// CreateManual handles POST /api/v1/returns/manual.
// Records a standalone return for goods brought back without a receipt flow.
func (h *ReturnHandler) CreateManual(c *gin.Context) {
	var req dto.ManualReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Quantity <= 0 {
		h.Error(c, apperror.NewInvalidInput("quantity", "must be positive"))
		return
	}
	itemID, err := parseItemID(req.ItemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	item, err := h.items.GetItem(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	settings, err := h.settings.FetchSettings(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.emitter.EmitManual(ctx, item, req.Quantity, settings.DiscountPercentage)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromReturn(rec))
}
