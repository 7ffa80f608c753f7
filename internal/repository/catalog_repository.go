package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"shoestore-service/internal/models"
)

// CatalogCacheTTL bounds how long a master lookup stays cached; master data rarely changes
const CatalogCacheTTL = 30 * time.Minute

const catalogKeyPrefix = "catalog:"

// CatalogRepository persists master data (categories, brands, colors, sizes, size templates).
// Lookups by code go through redis when a client is configured.
type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogRepository(db *gorm.DB, redis *redis.Client) *CatalogRepository {
	return &CatalogRepository{
		db:    db,
		redis: redis,
	}
}

func catalogCacheKey(kind models.MasterKind, code string) string {
	return fmt.Sprintf("%s%s:%s", catalogKeyPrefix, kind, code)
}

func (r *CatalogRepository) invalidate(ctx context.Context, kind models.MasterKind, codes ...string) {
	if r.redis == nil || len(codes) == 0 {
		return
	}
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, catalogCacheKey(kind, code))
	}
	_ = r.redis.Del(ctx, keys...).Err()
}

func findByCode[T any](ctx context.Context, r *CatalogRepository, kind models.MasterKind, code string) (*T, error) {
	key := catalogCacheKey(kind, code)
	if r.redis != nil {
		if data, err := r.redis.Get(ctx, key).Bytes(); err == nil {
			var cached T
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	var record T
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&record).Error; err != nil {
		return nil, translateError(err)
	}

	if r.redis != nil {
		if data, err := json.Marshal(record); err == nil {
			_ = r.redis.Set(ctx, key, data, CatalogCacheTTL).Err()
		}
	}
	return &record, nil
}

func findByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var record T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// listMasters pages a master table, optionally filtering with a case-insensitive
// substring match on the given columns.
func listMasters[T any](ctx context.Context, db *gorm.DB, req models.ListRequest, searchColumns ...string) ([]T, int64, error) {
	query := db.WithContext(ctx).Model(new(T))
	if search := strings.TrimSpace(req.Search); search != "" && len(searchColumns) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
			args[i] = pattern
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []T
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("code ASC").Offset(offset).Limit(req.Limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Categories

func (r *CatalogRepository) FindCategoryByCode(ctx context.Context, code string) (*models.Category, error) {
	return findByCode[models.Category](ctx, r, models.MasterCategory, code)
}

func (r *CatalogRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findByID[models.Category](ctx, r.db, id)
}

func (r *CatalogRepository) ListCategories(ctx context.Context, req models.ListRequest) ([]models.Category, int64, error) {
	return listMasters[models.Category](ctx, r.db, req, "code", "name")
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return translateError(r.db.WithContext(ctx).Create(category).Error)
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id uuid.UUID, code, name string) (*models.Category, error) {
	category, err := r.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCode := category.Code
	category.Code = code
	category.Name = name
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, translateError(err)
	}
	r.invalidate(ctx, models.MasterCategory, oldCode, code)
	return category, nil
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := r.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ensureUnused(ctx, models.MasterCategory, category.Code,
		r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id)); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(category).Error; err != nil {
		return err
	}
	r.invalidate(ctx, models.MasterCategory, category.Code)
	return nil
}

// Brands

func (r *CatalogRepository) FindBrandByCode(ctx context.Context, code string) (*models.Brand, error) {
	return findByCode[models.Brand](ctx, r, models.MasterBrand, code)
}

func (r *CatalogRepository) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	return findByID[models.Brand](ctx, r.db, id)
}

func (r *CatalogRepository) ListBrands(ctx context.Context, req models.ListRequest) ([]models.Brand, int64, error) {
	return listMasters[models.Brand](ctx, r.db, req, "code", "name")
}

func (r *CatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return translateError(r.db.WithContext(ctx).Create(brand).Error)
}

func (r *CatalogRepository) UpdateBrand(ctx context.Context, id uuid.UUID, code, name string) (*models.Brand, error) {
	brand, err := r.GetBrandByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCode := brand.Code
	brand.Code = code
	brand.Name = name
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		return nil, translateError(err)
	}
	r.invalidate(ctx, models.MasterBrand, oldCode, code)
	return brand, nil
}

func (r *CatalogRepository) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	brand, err := r.GetBrandByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ensureUnused(ctx, models.MasterBrand, brand.Code,
		r.db.WithContext(ctx).Model(&models.Product{}).Where("brand_id = ?", id)); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(brand).Error; err != nil {
		return err
	}
	r.invalidate(ctx, models.MasterBrand, brand.Code)
	return nil
}

// Colors

func (r *CatalogRepository) FindColorByCode(ctx context.Context, code string) (*models.Color, error) {
	return findByCode[models.Color](ctx, r, models.MasterColor, code)
}

func (r *CatalogRepository) GetColorByID(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	return findByID[models.Color](ctx, r.db, id)
}

func (r *CatalogRepository) ListColors(ctx context.Context, req models.ListRequest) ([]models.Color, int64, error) {
	return listMasters[models.Color](ctx, r.db, req, "code", "name")
}

func (r *CatalogRepository) CreateColor(ctx context.Context, color *models.Color) error {
	return translateError(r.db.WithContext(ctx).Create(color).Error)
}

func (r *CatalogRepository) UpdateColor(ctx context.Context, id uuid.UUID, req models.CreateColorRequest) (*models.Color, error) {
	color, err := r.GetColorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCode := color.Code
	color.Code = req.Code
	color.Name = req.Name
	color.HexCode = req.HexCode
	if err := r.db.WithContext(ctx).Save(color).Error; err != nil {
		return nil, translateError(err)
	}
	r.invalidate(ctx, models.MasterColor, oldCode, req.Code)
	return color, nil
}

func (r *CatalogRepository) DeleteColor(ctx context.Context, id uuid.UUID) error {
	color, err := r.GetColorByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ensureUnused(ctx, models.MasterColor, color.Code,
		r.db.WithContext(ctx).Model(&models.ProductColor{}).Where("color_id = ?", id)); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(color).Error; err != nil {
		return err
	}
	r.invalidate(ctx, models.MasterColor, color.Code)
	return nil
}

// Sizes

func (r *CatalogRepository) FindSizeByCode(ctx context.Context, code string) (*models.Size, error) {
	return findByCode[models.Size](ctx, r, models.MasterSize, code)
}

func (r *CatalogRepository) GetSizeByID(ctx context.Context, id uuid.UUID) (*models.Size, error) {
	return findByID[models.Size](ctx, r.db, id)
}

func (r *CatalogRepository) ListSizes(ctx context.Context, req models.ListRequest) ([]models.Size, int64, error) {
	return listMasters[models.Size](ctx, r.db, req, "code", "size_label")
}

func (r *CatalogRepository) CreateSize(ctx context.Context, size *models.Size) error {
	return translateError(r.db.WithContext(ctx).Create(size).Error)
}

func (r *CatalogRepository) UpdateSize(ctx context.Context, id uuid.UUID, updated *models.Size) (*models.Size, error) {
	size, err := r.GetSizeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCode := size.Code
	size.Code = updated.Code
	size.SizeLabel = updated.SizeLabel
	size.CmValue = updated.CmValue
	if err := r.db.WithContext(ctx).Save(size).Error; err != nil {
		return nil, translateError(err)
	}
	r.invalidate(ctx, models.MasterSize, oldCode, updated.Code)
	return size, nil
}

func (r *CatalogRepository) DeleteSize(ctx context.Context, id uuid.UUID) error {
	size, err := r.GetSizeByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ensureUnused(ctx, models.MasterSize, size.Code,
		r.db.WithContext(ctx).Model(&models.ProductSize{}).Where("size_id = ?", id)); err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM size_template_sizes WHERE size_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(size).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, models.MasterSize, size.Code)
	return nil
}

// Size templates

func (r *CatalogRepository) CreateSizeTemplate(ctx context.Context, template *models.SizeTemplate) error {
	// sizes already exist; only the join rows are written
	return translateError(r.db.WithContext(ctx).Omit("Sizes.*").Create(template).Error)
}

func (r *CatalogRepository) GetSizeTemplateByID(ctx context.Context, id uuid.UUID) (*models.SizeTemplate, error) {
	var template models.SizeTemplate
	err := r.db.WithContext(ctx).Preload("Sizes", orderSizes).Where("id = ?", id).First(&template).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &template, nil
}

func (r *CatalogRepository) FindSizeTemplateByCode(ctx context.Context, code string) (*models.SizeTemplate, error) {
	var template models.SizeTemplate
	err := r.db.WithContext(ctx).Preload("Sizes", orderSizes).Where("code = ?", code).First(&template).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &template, nil
}

func (r *CatalogRepository) ListSizeTemplates(ctx context.Context) ([]models.SizeTemplate, error) {
	var templates []models.SizeTemplate
	err := r.db.WithContext(ctx).Preload("Sizes", orderSizes).Order("code ASC").Find(&templates).Error
	return templates, err
}

func (r *CatalogRepository) DeleteSizeTemplate(ctx context.Context, id uuid.UUID) error {
	template, err := r.GetSizeTemplateByID(ctx, id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Select("Sizes").Delete(template).Error
}

func orderSizes(db *gorm.DB) *gorm.DB {
	return db.Order("code ASC")
}

func (r *CatalogRepository) ensureUnused(ctx context.Context, kind models.MasterKind, code string, usage *gorm.DB) error {
	var count int64
	if err := usage.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count %s usage: %w", kind, err)
	}
	if count > 0 {
		return &models.DeleteBlockedError{Kind: kind, Code: code, ProductCount: count}
	}
	return nil
}

// IsDeleteBlocked reports whether err is a DeleteBlockedError
func IsDeleteBlocked(err error) bool {
	var blocked *models.DeleteBlockedError
	return errors.As(err, &blocked)
}
