package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promotion is a time-boxed percentage discount on a set of products
type Promotion struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Code            string          `json:"code" gorm:"not null;uniqueIndex:idx_promotions_code"`
	Name            string          `json:"name" gorm:"not null"`
	Description     *string         `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent" gorm:"column:discount_percent;type:numeric(5,2);not null"`
	StartsAt        time.Time       `json:"startsAt" gorm:"column:starts_at;not null;index"`
	EndsAt          time.Time       `json:"endsAt" gorm:"column:ends_at;not null;index"`
	IsActive        bool            `json:"isActive" gorm:"column:is_active;not null"`
	Products        []Product       `json:"products,omitempty" gorm:"many2many:promotion_products;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error { return ensureID(&p.ID) }

// Banner is a storefront hero image
type Banner struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	ImageURL  string    `json:"imageUrl" gorm:"column:image_url;not null"`
	LinkURL   *string   `json:"linkUrl,omitempty" gorm:"column:link_url"`
	SortOrder int       `json:"sortOrder" gorm:"column:sort_order;not null;default:0"`
	IsActive  bool      `json:"isActive" gorm:"column:is_active;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Banner) BeforeCreate(tx *gorm.DB) error { return ensureID(&b.ID) }

// CreatePromotionRequest is the admin payload for a promotion
type CreatePromotionRequest struct {
	Code            string    `json:"code" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	Description     *string   `json:"description,omitempty"`
	DiscountPercent string    `json:"discountPercent" binding:"required"`
	StartsAt        time.Time `json:"startsAt" binding:"required"`
	EndsAt          time.Time `json:"endsAt" binding:"required"`
	IsActive        *bool     `json:"isActive,omitempty"`
	ProductCodes    []string  `json:"productCodes" binding:"required,min=1"`
}

// CreateBannerRequest is the admin payload for a banner
type CreateBannerRequest struct {
	Title     string  `json:"title" binding:"required"`
	ImageURL  string  `json:"imageUrl" binding:"required"`
	LinkURL   *string `json:"linkUrl,omitempty"`
	SortOrder int     `json:"sortOrder"`
	IsActive  *bool   `json:"isActive,omitempty"`
}
