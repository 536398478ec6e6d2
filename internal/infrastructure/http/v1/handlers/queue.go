package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/queue"
	"tillpoint/internal/domain/session"
	"tillpoint/internal/infrastructure/http/v1/dto"
	"tillpoint/pkg/logger"
)

// QueueHandler manages the pending draft queue of a session.
type QueueHandler struct {
	*BaseHandler
	registry *session.Registry
}

func NewQueueHandler(base *BaseHandler, registry *session.Registry) *QueueHandler {
	return &QueueHandler{BaseHandler: base, registry: registry}
}

// Park handles POST /api/v1/draft/park.
// Moves the active draft to the pending queue and starts a fresh one.
func (h *QueueHandler) Park(c *gin.Context) {
	var req dto.ParkRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	var pending []dto.PendingEntryResponse
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		if err := ws.Park(req.Label); err != nil {
			return err
		}
		pending = dto.FromPending(ws.Pending())
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(c.Request.Context(), "draft parked", "queue_len", len(pending))
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// List handles GET /api/v1/queue.
func (h *QueueHandler) List(c *gin.Context) {
	var pending []dto.PendingEntryResponse
	_ = h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		pending = dto.FromPending(ws.Pending())
		return nil
	})

	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

// Resume handles POST /api/v1/queue/:draftId/resume.
// A non-empty active draft is parked automatically before the swap, so
// unfinished work is never lost.
func (h *QueueHandler) Resume(c *gin.Context) {
	draftID, ok := h.ParseID(c, "draftId")
	if !ok {
		return
	}

	var resp gin.H
	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		if err := ws.Resume(draftID); err != nil {
			return err
		}
		resp = gin.H{
			"activeDraftId": ws.Active().ID.String(),
			"invoiceNumber": ws.Active().Number,
			"pending":       dto.FromPending(ws.Pending()),
		}
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Discard handles DELETE /api/v1/queue/:draftId.
func (h *QueueHandler) Discard(c *gin.Context) {
	draftID, ok := h.ParseID(c, "draftId")
	if !ok {
		return
	}

	err := h.registry.Get(h.SessionID(c)).Do(func(ws *queue.Workspace) error {
		return ws.Discard(draftID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
