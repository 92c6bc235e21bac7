package handlers

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/infrastructure/http/v1/dto"
	"dukapos/internal/infrastructure/storage/postgres"
)

// PurchaseHandler handles committed purchase endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	audit   *postgres.AuditService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, audit *postgres.AuditService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Create handles POST /documents/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.CreateManual(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	auditLog(c.Request.Context(), h.audit, "purchase", p.ID, postgres.AuditActionCreate, map[string]any{
		"purchase_number": p.Number,
		"total_cost":      p.TotalCost,
	})

	h.OK(c, p)
}

// Get handles GET /documents/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /documents/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		Source:   purchase.Source(c.Query("source")),
		FromDate: h.ParseTimeQuery(c, "from"),
		ToDate:   h.ParseTimeQuery(c, "to"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// RegisterRoutes registers purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
