package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "dukapos/internal/core/context"
	"dukapos/internal/domain/stockledger"
	"dukapos/internal/infrastructure/http/v1/dto"
	"dukapos/internal/infrastructure/storage/postgres"
)

// StockHandler handles stock ledger endpoints.
type StockHandler struct {
	*BaseHandler
	service *stockledger.Service
	audit   *postgres.AuditService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stockledger.Service, audit *postgres.AuditService) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Adjust handles POST /stock/:productId/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), productID, req.QtyChange, req.Reason,
		appctx.GetActorID(c.Request.Context()))
	if err != nil {
		h.Error(c, err)
		return
	}

	auditLog(c.Request.Context(), h.audit, "product", productID, postgres.AuditActionAdjust, map[string]any{
		"qty_change": req.QtyChange,
		"reason":     req.Reason,
	})

	h.OK(c, result)
}

// History handles GET /stock/:productId/history
func (h *StockHandler) History(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	filter := stockledger.HistoryFilter{
		FromDate: h.ParseTimeQuery(c, "from"),
		ToDate:   h.ParseTimeQuery(c, "to"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if t := c.Query("type"); t != "" {
		entryType := stockledger.EntryType(t)
		filter.Type = &entryType
	}

	entries, total, err := h.service.History(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      entries,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:productId/adjust", h.Adjust)
	rg.GET("/:productId/history", h.History)
}
