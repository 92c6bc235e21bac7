package handlers

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/catalogs/pending"
	"dukapos/internal/infrastructure/http/v1/dto"
)

// PendingHandler exposes the pending-product review queue. Pending
// products are resolved through draft approval, so this surface is
// read-only.
type PendingHandler struct {
	*BaseHandler
	repo pending.Repository
}

// NewPendingHandler creates a new pending product handler.
func NewPendingHandler(base *BaseHandler, repo pending.Repository) *PendingHandler {
	return &PendingHandler{
		BaseHandler: base,
		repo:        repo,
	}
}

// Get handles GET /catalog/pending-products/:id
func (h *PendingHandler) Get(c *gin.Context) {
	pendingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), pendingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /catalog/pending-products
func (h *PendingHandler) List(c *gin.Context) {
	filter := pending.ListFilter{
		Status: pending.Status(c.Query("status")),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	items, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// RegisterRoutes registers pending product routes.
func (h *PendingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
