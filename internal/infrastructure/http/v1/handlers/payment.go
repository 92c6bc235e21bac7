package handlers

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/documents/payment"
	"dukapos/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles customer payment endpoints.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Get handles GET /documents/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /documents/payments
func (h *PaymentHandler) List(c *gin.Context) {
	filter := payment.ListFilter{
		FromDate: h.ParseTimeQuery(c, "from"),
		ToDate:   h.ParseTimeQuery(c, "to"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if c.Query("customerId") != "" {
		parsed, ok := h.ParseIDQuery(c, "customerId")
		if !ok {
			return
		}
		filter.CustomerID = &parsed
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

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
