package handlers

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/catalogs/customer"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles wholesale customer endpoints, including the
// reconstructed ledger view.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
	ledger  *custledger.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, ledger *custledger.Service) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
		ledger:      ledger,
	}
}

// Create handles POST /catalog/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToCustomer()
	if err := h.service.Create(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cust.ID)
}

// Get handles GET /catalog/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// Update handles PUT /catalog/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.Apply(cust); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// List handles GET /catalog/customers
func (h *CustomerHandler) List(c *gin.Context) {
	filter := customer.ListFilter{
		Search:     c.Query("search"),
		ActiveOnly: c.Query("activeOnly") == "true",
		Limit:      h.ParseIntQuery(c, "limit", 50),
		Offset:     h.ParseIntQuery(c, "offset", 0),
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
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

// Ledger handles GET /catalog/customers/:id/ledger
//
// Query params from/to bound the statement window; entries carry a
// running balance replayed from the opening balance.
func (h *CustomerHandler) Ledger(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	from := h.ParseTimeQuery(c, "from")
	to := h.ParseTimeQuery(c, "to")

	ledger, err := h.ledger.GetCustomerLedger(c.Request.Context(), customerID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ledger)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/ledger", h.Ledger)
}
