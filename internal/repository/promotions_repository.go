package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"shoestore-service/internal/models"
)

type PromotionsRepository struct {
	db *gorm.DB
}

func NewPromotionsRepository(db *gorm.DB) *PromotionsRepository {
	return &PromotionsRepository{db: db}
}

// CreatePromotion stores a promotion and links it to already existing products
func (r *PromotionsRepository) CreatePromotion(ctx context.Context, promotion *models.Promotion) error {
	return translateError(r.db.WithContext(ctx).Omit("Products.*").Create(promotion).Error)
}

func (r *PromotionsRepository) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "code", "name", "price")
		}).
		Order("starts_at DESC").
		Find(&promotions).Error
	return promotions, err
}

func (r *PromotionsRepository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	promotion, err := findByID[models.Promotion](ctx, r.db, id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Select("Products").Delete(promotion).Error
}

type activeDiscountRow struct {
	ProductID       uuid.UUID
	DiscountPercent decimal.Decimal
}

// ActiveDiscounts returns, per product, the best discount percent of every
// promotion running at the given time. Products without one are absent.
func (r *PromotionsRepository) ActiveDiscounts(ctx context.Context, productIDs []uuid.UUID, at time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	discounts := make(map[uuid.UUID]decimal.Decimal)
	if len(productIDs) == 0 {
		return discounts, nil
	}

	var rows []activeDiscountRow
	err := r.db.WithContext(ctx).
		Table("promotion_products AS pp").
		Select("pp.product_id AS product_id, p.discount_percent AS discount_percent").
		Joins("JOIN promotions p ON p.id = pp.promotion_id").
		Where("pp.product_id IN ?", productIDs).
		Where("p.is_active = ? AND p.starts_at <= ? AND p.ends_at > ?", true, at, at).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if best, ok := discounts[row.ProductID]; !ok || row.DiscountPercent.GreaterThan(best) {
			discounts[row.ProductID] = row.DiscountPercent
		}
	}
	return discounts, nil
}

// Banners

func (r *PromotionsRepository) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	query := r.db.WithContext(ctx).Model(&models.Banner{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var banners []models.Banner
	err := query.Order("sort_order ASC, created_at ASC").Find(&banners).Error
	return banners, err
}

func (r *PromotionsRepository) CreateBanner(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

func (r *PromotionsRepository) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
