package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/documents/sale"
	"dukapos/internal/infrastructure/http/v1/dto"
	"dukapos/internal/invoice"
	"dukapos/internal/share"
)

// SaleHandler handles sale endpoints, invoice rendering and sharing.
type SaleHandler struct {
	*BaseHandler
	service  *sale.Service
	renderer invoice.Renderer
	shopName string
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service, renderer invoice.Renderer, shopName string) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
		renderer:    renderer,
		shopName:    shopName,
	}
}

// CreateRetail handles POST /documents/sales/retail
func (h *SaleHandler) CreateRetail(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	s, err := h.service.CreateRetail(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// CreateWholesale handles POST /documents/sales/wholesale
func (h *SaleHandler) CreateWholesale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	s, err := h.service.CreateWholesale(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// Get handles GET /documents/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// List handles GET /documents/sales
func (h *SaleHandler) List(c *gin.Context) {
	filter := sale.ListFilter{
		Type:     sale.Type(c.Query("type")),
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

// Invoice handles GET /documents/sales/:id/invoice
//
// Returns the rendered receipt document.
func (h *SaleHandler) Invoice(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	body, contentType, err := h.renderer.Render(c.Request.Context(), s)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, body)
}

// Share handles GET /documents/sales/:id/share
//
// Builds a WhatsApp link carrying the invoice summary. The phone query
// parameter overrides the customer's stored number.
func (h *SaleHandler) Share(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	link := share.ForSale(s, c.Query("phone"), h.shopName)
	h.OK(c, dto.WhatsAppLinkResponse{
		Phone:   link.Phone,
		Message: link.Message,
		URL:     link.URL,
	})
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/retail", h.CreateRetail)
	rg.POST("/wholesale", h.CreateWholesale)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/invoice", h.Invoice)
	rg.GET("/:id/share", h.Share)
}
