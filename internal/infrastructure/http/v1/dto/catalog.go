package dto

import (
	"dukapos/internal/core/apperror"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/customer"
	"dukapos/internal/domain/catalogs/product"
)

// CreateProductRequest for adding a catalog product.
type CreateProductRequest struct {
	Name           string      `json:"name" binding:"required"`
	Brand          *string     `json:"brand"`
	Category       *string     `json:"category"`
	SKU            *string     `json:"sku"`
	Barcode        *string     `json:"barcode"`
	UnitType       string      `json:"unitType"`
	PackSize       float64     `json:"packSize"`
	Aliases        []string    `json:"aliases"`
	CostPrice      types.Money `json:"costPrice"`
	RetailPrice    types.Money `json:"retailPrice"`
	WholesalePrice types.Money `json:"wholesalePrice"`
	ReorderLevel   float64     `json:"reorderLevel"`
}

// ToProduct converts to a domain product.
func (r *CreateProductRequest) ToProduct() *product.Product {
	unitType := product.UnitPcs
	if r.UnitType != "" {
		unitType = product.UnitType(r.UnitType)
	}
	p := product.New(r.Name, unitType)
	p.Brand = r.Brand
	p.Category = r.Category
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	if r.PackSize > 0 {
		p.PackSize = r.PackSize
	}
	p.Aliases = r.Aliases
	p.CostPrice = r.CostPrice
	p.RetailPrice = r.RetailPrice
	p.WholesalePrice = r.WholesalePrice
	p.ReorderLevel = r.ReorderLevel
	return p
}

// UpdateProductRequest carries partial product updates.
type UpdateProductRequest struct {
	Name           *string      `json:"name"`
	Brand          *string      `json:"brand"`
	Category       *string      `json:"category"`
	SKU            *string      `json:"sku"`
	Barcode        *string      `json:"barcode"`
	UnitType       *string      `json:"unitType"`
	PackSize       *float64     `json:"packSize"`
	Aliases        []string     `json:"aliases"`
	CostPrice      *types.Money `json:"costPrice"`
	RetailPrice    *types.Money `json:"retailPrice"`
	WholesalePrice *types.Money `json:"wholesalePrice"`
	ReorderLevel   *float64     `json:"reorderLevel"`
	IsActive       *bool        `json:"isActive"`
}

// Apply merges non-nil fields into the product.
func (r *UpdateProductRequest) Apply(p *product.Product) error {
	if r.Name != nil {
		if *r.Name == "" {
			return apperror.NewValidation("name cannot be empty")
		}
		p.Name = *r.Name
	}
	if r.Brand != nil {
		p.Brand = r.Brand
	}
	if r.Category != nil {
		p.Category = r.Category
	}
	if r.SKU != nil {
		p.SKU = r.SKU
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.UnitType != nil {
		p.UnitType = product.UnitType(*r.UnitType)
	}
	if r.PackSize != nil {
		p.PackSize = *r.PackSize
	}
	if r.Aliases != nil {
		p.Aliases = r.Aliases
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	if r.RetailPrice != nil {
		p.RetailPrice = *r.RetailPrice
	}
	if r.WholesalePrice != nil {
		p.WholesalePrice = *r.WholesalePrice
	}
	if r.ReorderLevel != nil {
		p.ReorderLevel = *r.ReorderLevel
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return nil
}

// AddAliasRequest records an extra supplier spelling for a product.
type AddAliasRequest struct {
	Alias string `json:"alias" binding:"required"`
}

// CreateCustomerRequest for adding a wholesale customer.
type CreateCustomerRequest struct {
	Name           string      `json:"name" binding:"required"`
	ShopName       *string     `json:"shopName"`
	Phone          string      `json:"phone" binding:"required"`
	Address        *string     `json:"address"`
	PricingTier    string      `json:"pricingTier"`
	OpeningBalance types.Money `json:"openingBalance"`
}

// ToCustomer converts to a domain customer.
func (r *CreateCustomerRequest) ToCustomer() *customer.Customer {
	c := customer.New(r.Name, r.Phone, r.OpeningBalance)
	c.ShopName = r.ShopName
	c.Address = r.Address
	if r.PricingTier != "" {
		c.PricingTier = customer.PricingTier(r.PricingTier)
	}
	return c
}

// UpdateCustomerRequest carries partial customer updates. Balance fields
// are deliberately absent; balances move only through sales and payments.
type UpdateCustomerRequest struct {
	Name        *string `json:"name"`
	ShopName    *string `json:"shopName"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	PricingTier *string `json:"pricingTier"`
	IsActive    *bool   `json:"isActive"`
}

// Apply merges non-nil fields into the customer.
func (r *UpdateCustomerRequest) Apply(c *customer.Customer) error {
	if r.Name != nil {
		if *r.Name == "" {
			return apperror.NewValidation("name cannot be empty")
		}
		c.Name = *r.Name
	}
	if r.ShopName != nil {
		c.ShopName = r.ShopName
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.PricingTier != nil {
		c.PricingTier = customer.PricingTier(*r.PricingTier)
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	return nil
}
