package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one stored line of a shopper's cart
type CartItem struct {
	ProductCode string `json:"productCode"`
	ColorCode   string `json:"colorCode,omitempty"`
	SizeCode    string `json:"sizeCode,omitempty"`
	Quantity    int    `json:"quantity"`
}

// SameLine reports whether two items describe the same product variant
func (i CartItem) SameLine(other CartItem) bool {
	return i.ProductCode == other.ProductCode && i.ColorCode == other.ColorCode && i.SizeCode == other.SizeCode
}

// Cart is the stored cart document
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// AddCartItemRequest adds a line to a cart
type AddCartItemRequest struct {
	ProductCode string `json:"productCode" binding:"required"`
	ColorCode   string `json:"colorCode"`
	SizeCode    string `json:"sizeCode"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=99"`
}

// PricedCartLine is a cart line resolved against the catalog
type PricedCartLine struct {
	CartItem
	Name      string          `json:"name"`
	ColorName string          `json:"colorName,omitempty"`
	SizeLabel string          `json:"sizeLabel,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Available bool            `json:"available"`
}

// PricedCart is a cart as returned to the storefront
type PricedCart struct {
	ID       string           `json:"id"`
	Lines    []PricedCartLine `json:"lines"`
	Total    decimal.Decimal  `json:"total"`
	Currency string           `json:"currency"`
}

// CheckoutRequest carries the shopper's contact details
type CheckoutRequest struct {
	CustomerName string  `json:"customerName" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Note         *string `json:"note,omitempty"`
}

// CheckoutResult is the order message handed to the messaging app
type CheckoutResult struct {
	Message     string          `json:"message"`
	WhatsAppURL string          `json:"whatsappUrl"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}
