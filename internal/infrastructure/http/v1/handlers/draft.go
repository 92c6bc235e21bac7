package handlers

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/core/apperror"
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/importer"
	"dukapos/internal/infrastructure/http/v1/dto"
	"dukapos/internal/infrastructure/storage/postgres"
)

func importValidationError(err error) error {
	return apperror.NewValidation("receipt image is required").
		WithDetail("error", err.Error())
}

// DraftHandler handles receipt import and draft review endpoints.
type DraftHandler struct {
	*BaseHandler
	service  *draft.Service
	pipeline *importer.Pipeline
	audit    *postgres.AuditService
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(base *BaseHandler, service *draft.Service, pipeline *importer.Pipeline, audit *postgres.AuditService) *DraftHandler {
	return &DraftHandler{
		BaseHandler: base,
		service:     service,
		pipeline:    pipeline,
		audit:       audit,
	}
}

// Import handles POST /documents/drafts/import
//
// Accepts a multipart form with an "image" file, runs OCR and parsing,
// and returns the created draft with match results per line.
func (h *DraftHandler) Import(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.Error(c, importValidationError(err))
		return
	}

	src, err := file.Open()
	if err != nil {
		h.Error(c, importValidationError(err))
		return
	}
	defer src.Close()

	d, err := h.pipeline.ImportReceipt(c.Request.Context(), file.Filename, src)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Get handles GET /documents/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	draftID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), draftID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// List handles GET /documents/drafts
func (h *DraftHandler) List(c *gin.Context) {
	filter := draft.ListFilter{
		Status: draft.Status(c.Query("status")),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
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

// Approve handles POST /documents/drafts/:id/approve
//
// All decisions apply atomically: any failure leaves the draft, catalog
// and stock untouched.
func (h *DraftHandler) Approve(c *gin.Context) {
	draftID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	decisions, err := req.ToDecisions()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Approve(c.Request.Context(), draftID, decisions)
	if err != nil {
		h.Error(c, err)
		return
	}

	auditLog(c.Request.Context(), h.audit, "purchase_draft", draftID, postgres.AuditActionApprove, map[string]any{
		"purchase_id":     p.ID,
		"purchase_number": p.Number,
		"total_cost":      p.TotalCost,
	})

	h.OK(c, p)
}

// Reject handles POST /documents/drafts/:id/reject
func (h *DraftHandler) Reject(c *gin.Context) {
	draftID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.Reject(c.Request.Context(), draftID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	auditLog(c.Request.Context(), h.audit, "purchase_draft", draftID, postgres.AuditActionReject, map[string]any{
		"reason": req.Reason,
	})

	h.OK(c, d)
}

// RegisterRoutes registers draft routes.
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/reject", h.Reject)
}
