package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/domain/auth"
	"tillpoint/internal/domain/session"
	"tillpoint/internal/infrastructure/http/v1/dto"
	"tillpoint/pkg/logger"
)

// SessionHandler opens cashier sessions and issues access tokens.
type SessionHandler struct {
	*BaseHandler
	jwt      *auth.JWTService
	registry *session.Registry
}

func NewSessionHandler(base *BaseHandler, jwt *auth.JWTService, registry *session.Registry) *SessionHandler {
	return &SessionHandler{BaseHandler: base, jwt: jwt, registry: registry}
}

// Open handles POST /api/v1/sessions.
// Every session starts with an empty active draft and an empty pending queue.
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Terminal == "" {
		h.Error(c, apperror.NewInvalidInput("terminal", "must not be empty"))
		return
	}

	sessionID, token, err := h.jwt.OpenSession(req.Terminal, req.Cashier)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Pre-create the workspace so the first draft exists before any request.
	h.registry.Get(sessionID)

	logger.Info(c.Request.Context(), "session opened",
		"session_id", sessionID,
		"terminal", req.Terminal,
	)

	c.JSON(http.StatusCreated, dto.OpenSessionResponse{
		SessionID: sessionID,
		Token:     token,
	})
}
