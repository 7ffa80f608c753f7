package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"shoestore-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// DiscountSource returns the best running discount percent per product
type DiscountSource interface {
	ActiveDiscounts(ctx context.Context, productIDs []uuid.UUID, at time.Time) (map[uuid.UUID]decimal.Decimal, error)
}

// PricingService applies running promotions to catalog prices
type PricingService struct {
	discounts DiscountSource
	now       func() time.Time
}

func NewPricingService(discounts DiscountSource) *PricingService {
	return &PricingService{
		discounts: discounts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SalePrice is price reduced by percent, rounded to 2 decimal places
func SalePrice(price, percent decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(percent)).Div(hundred).Round(2)
}

// Storefront prices products at the current time
func (s *PricingService) Storefront(ctx context.Context, products []models.Product) ([]models.StorefrontProduct, error) {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	discounts, err := s.discounts.ActiveDiscounts(ctx, ids, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load active promotions: %w", err)
	}

	priced := make([]models.StorefrontProduct, 0, len(products))
	for _, p := range products {
		item := models.StorefrontProduct{Product: p, SalePrice: p.Price.Round(2)}
		if percent, ok := discounts[p.ID]; ok {
			item.SalePrice = SalePrice(p.Price, percent)
			item.DiscountPercent = &percent
		}
		priced = append(priced, item)
	}
	return priced, nil
}
