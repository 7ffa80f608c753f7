package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products for storefront navigation (e.g. CASUAL, SNEAKERS)
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex:idx_categories_code"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Brand is the manufacturer label of a product
type Brand struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex:idx_brands_code"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Color is a master color a product can be offered in
type Color struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex:idx_colors_code"`
	Name      string    `json:"name" gorm:"not null"`
	HexCode   string    `json:"hexCode" gorm:"column:hex_code;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Size is a master shoe size (label plus optional foot length in cm)
type Size struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string           `json:"code" gorm:"not null;uniqueIndex:idx_sizes_code"`
	SizeLabel string           `json:"sizeLabel" gorm:"column:size_label;not null"`
	CmValue   *decimal.Decimal `json:"cmValue,omitempty" gorm:"column:cm_value;type:numeric(5,2)"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SizeTemplate is a reusable, named set of sizes
type SizeTemplate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex:idx_size_templates_code"`
	Name      string    `json:"name" gorm:"not null"`
	Sizes     []Size    `json:"sizes,omitempty" gorm:"many2many:size_template_sizes;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product represents a sellable shoe model.
// Code is caller supplied and globally unique; the unique index is what
// ultimately guards concurrent creates.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Code        string          `json:"code" gorm:"not null;uniqueIndex:idx_products_code"`
	Name        string          `json:"name" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:uuid;not null;index"`
	BrandID     uuid.UUID       `json:"brandId" gorm:"type:uuid;not null;index"`
	IsActive    bool            `json:"isActive" gorm:"column:is_active;not null;index"`

	Category *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Brand    *Brand         `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Colors   []ProductColor `json:"colors,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Sizes    []ProductSize  `json:"sizes,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images   []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductColor links a product to one of its colors
type ProductColor struct {
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;primaryKey"`
	ColorID   uuid.UUID `json:"colorId" gorm:"type:uuid;primaryKey;index"`
	Color     *Color    `json:"color,omitempty" gorm:"foreignKey:ColorID"`
}

// ProductSize links a product to one of its sizes
type ProductSize struct {
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;primaryKey"`
	SizeID    uuid.UUID `json:"sizeId" gorm:"type:uuid;primaryKey;index"`
	Size      *Size     `json:"size,omitempty" gorm:"foreignKey:SizeID"`
}

// ProductImage is one gallery image of a product.
// Exactly one image per product is primary and it has SortOrder 1.
type ProductImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	ImageURL  string    `json:"imageUrl" gorm:"column:image_url;not null"`
	IsPrimary bool      `json:"isPrimary" gorm:"column:is_primary;not null"`
	SortOrder int       `json:"sortOrder" gorm:"column:sort_order;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error     { return ensureID(&c.ID) }
func (b *Brand) BeforeCreate(tx *gorm.DB) error        { return ensureID(&b.ID) }
func (c *Color) BeforeCreate(tx *gorm.DB) error        { return ensureID(&c.ID) }
func (s *Size) BeforeCreate(tx *gorm.DB) error         { return ensureID(&s.ID) }
func (s *SizeTemplate) BeforeCreate(tx *gorm.DB) error { return ensureID(&s.ID) }
func (p *Product) BeforeCreate(tx *gorm.DB) error      { return ensureID(&p.ID) }
func (i *ProductImage) BeforeCreate(tx *gorm.DB) error { return ensureID(&i.ID) }

func ensureID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

func (ProductColor) TableName() string {
	return "product_colors"
}

func (ProductSize) TableName() string {
	return "product_sizes"
}

func (ProductImage) TableName() string {
	return "product_images"
}

// CreateProductRequest is the admin payload for creating a single product
type CreateProductRequest struct {
	Code             string   `json:"code" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	Description      *string  `json:"description,omitempty"`
	Price            string   `json:"price" binding:"required"`
	CategoryCode     string   `json:"categoryCode" binding:"required"`
	BrandCode        string   `json:"brandCode" binding:"required"`
	ColorCodes       []string `json:"colorCodes,omitempty"`
	SizeCodes        []string `json:"sizeCodes,omitempty"`
	SizeTemplateCode *string  `json:"sizeTemplateCode,omitempty"`
	ImageURLs        []string `json:"imageUrls,omitempty"`
	IsActive         *bool    `json:"isActive,omitempty"`
}

// UpdateProductStatusRequest toggles storefront visibility
type UpdateProductStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SearchProductsRequest holds storefront listing filters
type SearchProductsRequest struct {
	CategoryCode string `form:"category"`
	BrandCode    string `form:"brand"`
	ColorCode    string `form:"color"`
	SizeCode     string `form:"size"`
	Search       string `form:"search"`
	MinPrice     string `form:"minPrice"`
	MaxPrice     string `form:"maxPrice"`
	SortBy       string `form:"sort"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	ActiveOnly   bool   `form:"-"`
}

// StorefrontProduct is a product as shown to shoppers, with its promotional price
type StorefrontProduct struct {
	Product
	SalePrice       decimal.Decimal  `json:"salePrice"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}

// CreateMasterRequest creates a category or brand
type CreateMasterRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateColorRequest creates or replaces a color
type CreateColorRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	HexCode string `json:"hexCode" binding:"required"`
}

// CreateSizeRequest creates or replaces a size
type CreateSizeRequest struct {
	Code      string  `json:"code" binding:"required"`
	SizeLabel string  `json:"sizeLabel" binding:"required"`
	CmValue   *string `json:"cmValue,omitempty"`
}

// CreateSizeTemplateRequest creates a size template from size codes
type CreateSizeTemplateRequest struct {
	Code      string   `json:"code" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	SizeCodes []string `json:"sizeCodes" binding:"required,min=1"`
}

// ListRequest carries pagination and search for admin lists
type ListRequest struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Normalize clamps paging values into range
func (r *ListRequest) Normalize(defaultLimit, maxLimit int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
}

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// NewPagination builds pagination metadata for a page
func NewPagination(page, limit int, total int64) *PaginationInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Message    *string         `json:"message,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}
