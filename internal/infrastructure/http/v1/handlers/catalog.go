package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves the item catalog.
type CatalogHandler struct {
	*BaseHandler
	catalog catalog.Provider
}

func NewCatalogHandler(base *BaseHandler, provider catalog.Provider) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, catalog: provider}
}

// List handles GET /api/v1/catalog.
func (h *CatalogHandler) List(c *gin.Context) {
	snap, err := h.catalog.FetchCatalog(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := snap.Items()
	out := make([]dto.ItemResponse, len(items))
	for i, item := range items {
		out[i] = dto.FromItem(item)
	}

	c.JSON(http.StatusOK, gin.H{"items": out, "count": len(out)})
}
