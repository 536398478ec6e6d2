// Package handlers implements the v1 HTTP API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/core/id"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// SessionID extracts the cashier session ID from request context.
func (h *BaseHandler) SessionID(c *gin.Context) string {
	return appctx.GetSessionID(c.Request.Context())
}

func parseItemID(s string) (id.ID, error) {
	itemID, err := id.Parse(s)
	if err != nil {
		return id.Nil(), apperror.NewInvalidInput("itemId", "must be a valid UUID")
	}
	return itemID, nil
}

func notFoundItem(itemID id.ID) error {
	return apperror.NewNotFound("item", itemID.String())
}

// ParseID parses a path parameter as UUID.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewInvalidInput(param, "must be a valid UUID"))
		return id.Nil(), false
	}
	return parsed, true
}
