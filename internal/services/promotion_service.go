package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"shoestore-service/internal/models"
)

type PromotionStore interface {
	CreatePromotion(ctx context.Context, promotion *models.Promotion) error
}

type ProductsByCode interface {
	GetProductsByCodes(ctx context.Context, codes []string) ([]models.Product, error)
}

type PromotionService struct {
	promotions PromotionStore
	products   ProductsByCode
}

func NewPromotionService(promotions PromotionStore, products ProductsByCode) *PromotionService {
	return &PromotionService{promotions: promotions, products: products}
}

// CreatePromotion validates the discount window and links the listed products
func (s *PromotionService) CreatePromotion(ctx context.Context, req *models.CreatePromotionRequest) (*models.Promotion, error) {
	percent, err := decimal.NewFromString(strings.TrimSpace(req.DiscountPercent))
	if err != nil || !percent.IsPositive() || percent.GreaterThan(hundred) {
		return nil, invalid("discountPercent", "discountPercent must be greater than 0 and at most 100")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, invalid("endsAt", "endsAt must be after startsAt")
	}

	codes := cleanCodes(req.ProductCodes)
	if len(codes) == 0 {
		return nil, invalid("productCodes", "at least one product code is required")
	}
	products, err := s.products.GetProductsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(products))
	for _, p := range products {
		found[p.Code] = true
	}
	for _, code := range codes {
		if !found[code] {
			return nil, &ReferenceNotFoundError{Kind: "Product", Code: code, Field: "productCodes"}
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	promotion := &models.Promotion{
		Code:            strings.TrimSpace(req.Code),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DiscountPercent: percent,
		StartsAt:        req.StartsAt.UTC(),
		EndsAt:          req.EndsAt.UTC(),
		IsActive:        isActive,
		Products:        products,
	}
	if err := s.promotions.CreatePromotion(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}
