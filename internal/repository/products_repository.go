package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shoestore-service/internal/models"
)

// ProductDraft is a fully validated product ready to be written with its children
type ProductDraft struct {
	Product   *models.Product
	ColorIDs  []uuid.UUID
	SizeIDs   []uuid.UUID
	ImageURLs []string
}

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// BuildProductImages orders image URLs into gallery rows: the first is primary
// with sort order 1, the rest follow as 2, 3, ...
func BuildProductImages(productID uuid.UUID, urls []string) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(urls))
	for i, url := range urls {
		images = append(images, models.ProductImage{
			ProductID: productID,
			ImageURL:  url,
			IsPrimary: i == 0,
			SortOrder: i + 1,
		})
	}
	return images
}

// ProductCodeExists checks if a product code is already taken
func (r *ProductsRepository) ProductCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// CreateProduct writes a product together with its color, size and image rows
// in a single transaction. A taken code surfaces as ErrDuplicateCode.
func (r *ProductsRepository) CreateProduct(ctx context.Context, draft *ProductDraft) error {
	product := draft.Product
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return translateError(err)
		}

		if len(draft.ColorIDs) > 0 {
			colors := make([]models.ProductColor, 0, len(draft.ColorIDs))
			for _, id := range uniqueIDs(draft.ColorIDs) {
				colors = append(colors, models.ProductColor{ProductID: product.ID, ColorID: id})
			}
			if err := tx.Create(&colors).Error; err != nil {
				return fmt.Errorf("failed to create product colors: %w", err)
			}
		}

		if len(draft.SizeIDs) > 0 {
			sizes := make([]models.ProductSize, 0, len(draft.SizeIDs))
			for _, id := range uniqueIDs(draft.SizeIDs) {
				sizes = append(sizes, models.ProductSize{ProductID: product.ID, SizeID: id})
			}
			if err := tx.Create(&sizes).Error; err != nil {
				return fmt.Errorf("failed to create product sizes: %w", err)
			}
		}

		if len(draft.ImageURLs) > 0 {
			images := BuildProductImages(product.ID, draft.ImageURLs)
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to create product images: %w", err)
			}
		}
		return nil
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func preloadProductDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Brand").
		Preload("Colors.Color").
		Preload("Sizes.Size").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}

// GetProductByID retrieves a product with all of its children
func (r *ProductsRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := preloadProductDetail(r.db.WithContext(ctx)).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// GetProductByCode retrieves a product by code, optionally only when active
func (r *ProductsRepository) GetProductByCode(ctx context.Context, code string, activeOnly bool) (*models.Product, error) {
	query := preloadProductDetail(r.db.WithContext(ctx)).Where("code = ?", code)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var product models.Product
	if err := query.First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// GetProductsByCodes loads the products matching the given codes
func (r *ProductsRepository) GetProductsByCodes(ctx context.Context, codes []string) ([]models.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := preloadProductDetail(r.db.WithContext(ctx)).Where("code IN ?", codes).Find(&products).Error
	return products, err
}

// ListProducts returns a filtered page of products
func (r *ProductsRepository) ListProducts(ctx context.Context, req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	query := r.applyProductFilters(r.db.WithContext(ctx).Model(&models.Product{}), req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch req.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	offset := (req.Page - 1) * req.Limit
	err := preloadProductDetail(query).Offset(offset).Limit(req.Limit).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductsRepository) applyProductFilters(query *gorm.DB, req *models.SearchProductsRequest) *gorm.DB {
	if req.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if req.CategoryCode != "" {
		query = query.Where("category_id IN (SELECT id FROM categories WHERE code = ?)", req.CategoryCode)
	}
	if req.BrandCode != "" {
		query = query.Where("brand_id IN (SELECT id FROM brands WHERE code = ?)", req.BrandCode)
	}
	if req.ColorCode != "" {
		query = query.Where("id IN (SELECT pc.product_id FROM product_colors pc JOIN colors c ON c.id = pc.color_id WHERE c.code = ?)", req.ColorCode)
	}
	if req.SizeCode != "" {
		query = query.Where("id IN (SELECT ps.product_id FROM product_sizes ps JOIN sizes s ON s.id = ps.size_id WHERE s.code = ?)", req.SizeCode)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if minPrice, err := decimal.NewFromString(req.MinPrice); err == nil {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice, err := decimal.NewFromString(req.MaxPrice); err == nil {
		query = query.Where("price <= ?", maxPrice)
	}
	return query
}

// UpdateProductStatus flips storefront visibility
func (r *ProductsRepository) UpdateProductStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", isActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product and all of its children
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.ProductColor{}, &models.ProductSize{}, &models.ProductImage{}} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM promotion_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
