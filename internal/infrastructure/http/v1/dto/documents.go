package dto

import (
	"time"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/domain/documents/payment"
	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/domain/documents/sale"
)

// --- Purchases ---

// PurchaseItemRequest is one line of a manual purchase.
type PurchaseItemRequest struct {
	ProductID string      `json:"productId" binding:"required,uuid"`
	Qty       float64     `json:"qty" binding:"required,gt=0"`
	UnitCost  types.Money `json:"unitCost"`
}

// CreatePurchaseRequest for manual purchase entry.
type CreatePurchaseRequest struct {
	SupplierName string                `json:"supplierName"`
	Date         *time.Time            `json:"date"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToInput converts to a domain purchase input.
func (r *CreatePurchaseRequest) ToInput() (purchase.CreateInput, error) {
	input := purchase.CreateInput{
		SupplierName: r.SupplierName,
		Date:         r.Date,
	}
	for i, it := range r.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return purchase.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("item", i+1)
		}
		input.Items = append(input.Items, purchase.CreateItemInput{
			ProductID: productID,
			Qty:       it.Qty,
			UnitCost:  it.UnitCost,
		})
	}
	return input, nil
}

// --- Sales ---

// SaleItemRequest is one line of a sale.
type SaleItemRequest struct {
	ProductID string       `json:"productId" binding:"required,uuid"`
	Qty       float64      `json:"qty" binding:"required,gt=0"`
	UnitPrice *types.Money `json:"unitPrice"`
}

// CreateSaleRequest for retail and wholesale sales.
type CreateSaleRequest struct {
	CustomerID      *string           `json:"customerId"`
	Items           []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount        *types.Money      `json:"discount"`
	PaymentReceived *types.Money      `json:"paymentReceived"`
	PaymentMethod   string            `json:"paymentMethod"`
}

// ToInput converts to a domain sale input.
func (r *CreateSaleRequest) ToInput() (sale.CreateInput, error) {
	input := sale.CreateInput{
		Discount:        r.Discount,
		PaymentReceived: r.PaymentReceived,
		PaymentMethod:   sale.PaymentMethod(r.PaymentMethod),
	}
	if r.CustomerID != nil && *r.CustomerID != "" {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return sale.CreateInput{}, apperror.NewValidation("invalid customer id")
		}
		input.CustomerID = &customerID
	}
	for i, it := range r.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return sale.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("item", i+1)
		}
		input.Items = append(input.Items, sale.CreateItemInput{
			ProductID: productID,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
		})
	}
	return input, nil
}

// --- Payments ---

// CreatePaymentRequest records a customer payment against balance.
type CreatePaymentRequest struct {
	CustomerID string      `json:"customerId" binding:"required,uuid"`
	Amount     types.Money `json:"amount"`
	Method     string      `json:"method"`
	Note       string      `json:"note"`
	Date       *time.Time  `json:"date"`
}

// ToInput converts to a domain payment input.
func (r *CreatePaymentRequest) ToInput() (payment.CreateInput, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return payment.CreateInput{}, apperror.NewValidation("invalid customer id")
	}
	return payment.CreateInput{
		CustomerID: customerID,
		Amount:     r.Amount,
		Method:     payment.Method(r.Method),
		Note:       r.Note,
		Date:       r.Date,
	}, nil
}

// --- Drafts ---

// ProductFieldsRequest carries reviewer overrides for create_new.
type ProductFieldsRequest struct {
	Name           string       `json:"name"`
	UnitType       string       `json:"unitType"`
	Barcode        *string      `json:"barcode"`
	SKU            *string      `json:"sku"`
	CostPrice      *types.Money `json:"costPrice"`
	RetailPrice    *types.Money `json:"retailPrice"`
	WholesalePrice *types.Money `json:"wholesalePrice"`
}

// MappingDecisionRequest resolves one draft item during approval.
type MappingDecisionRequest struct {
	ItemIndex        int                   `json:"itemIndex"`
	Action           string                `json:"action"`
	ProductID        string                `json:"productId"`
	PendingProductID string                `json:"pendingProductId"`
	Fields           *ProductFieldsRequest `json:"fields"`
}

// ApproveDraftRequest approves a draft with per-item decisions.
type ApproveDraftRequest struct {
	Decisions []MappingDecisionRequest `json:"decisions"`
}

// ToDecisions converts to domain mapping decisions.
func (r *ApproveDraftRequest) ToDecisions() ([]draft.MappingDecision, error) {
	decisions := make([]draft.MappingDecision, 0, len(r.Decisions))
	for _, d := range r.Decisions {
		dec := draft.MappingDecision{
			ItemIndex: d.ItemIndex,
			Action:    draft.DecisionAction(d.Action),
		}
		if d.ProductID != "" {
			productID, err := id.Parse(d.ProductID)
			if err != nil {
				return nil, apperror.NewValidation("invalid product id").
					WithDetail("itemIndex", d.ItemIndex)
			}
			dec.ProductID = productID
		}
		if d.PendingProductID != "" {
			pendingID, err := id.Parse(d.PendingProductID)
			if err != nil {
				return nil, apperror.NewValidation("invalid pending product id").
					WithDetail("itemIndex", d.ItemIndex)
			}
			dec.PendingProductID = pendingID
		}
		if d.Fields != nil {
			dec.Fields = &draft.ProductFields{
				Name:           d.Fields.Name,
				UnitType:       product.UnitType(d.Fields.UnitType),
				Barcode:        d.Fields.Barcode,
				SKU:            d.Fields.SKU,
				CostPrice:      d.Fields.CostPrice,
				RetailPrice:    d.Fields.RetailPrice,
				WholesalePrice: d.Fields.WholesalePrice,
			}
		}
		decisions = append(decisions, dec)
	}
	return decisions, nil
}

// RejectDraftRequest rejects a draft.
type RejectDraftRequest struct {
	Reason string `json:"reason"`
}

// WhatsAppLinkResponse is a share link for a sale invoice.
type WhatsAppLinkResponse struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}
