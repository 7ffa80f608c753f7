package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
)

type CategoryLookup interface {
	FindCategoryByCode(ctx context.Context, code string) (*models.Category, error)
}

type BrandLookup interface {
	FindBrandByCode(ctx context.Context, code string) (*models.Brand, error)
}

type ColorLookup interface {
	FindColorByCode(ctx context.Context, code string) (*models.Color, error)
}

type SizeLookup interface {
	FindSizeByCode(ctx context.Context, code string) (*models.Size, error)
}

// CatalogLookup resolves every kind of master data by code
type CatalogLookup interface {
	CategoryLookup
	BrandLookup
	ColorLookup
	SizeLookup
}

// ReferenceNotFoundError reports a master-data code that does not exist
type ReferenceNotFoundError struct {
	Kind  string
	Code  string
	Field string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Code)
}

// catalogResolver turns codes into IDs, failing on the first unknown code
type catalogResolver struct {
	catalog CatalogLookup
}

func (r catalogResolver) categoryID(ctx context.Context, code string) (uuid.UUID, error) {
	category, err := r.catalog.FindCategoryByCode(ctx, code)
	if err != nil {
		return uuid.Nil, notFoundOr(err, "Category", code, models.ColumnCategoryCode)
	}
	return category.ID, nil
}

func (r catalogResolver) brandID(ctx context.Context, code string) (uuid.UUID, error) {
	brand, err := r.catalog.FindBrandByCode(ctx, code)
	if err != nil {
		return uuid.Nil, notFoundOr(err, "Brand", code, models.ColumnBrandCode)
	}
	return brand.ID, nil
}

func (r catalogResolver) colorIDs(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(codes))
	for _, code := range codes {
		color, err := r.catalog.FindColorByCode(ctx, code)
		if err != nil {
			return nil, notFoundOr(err, "Color", code, models.ColumnColorCodes)
		}
		ids = append(ids, color.ID)
	}
	return ids, nil
}

func (r catalogResolver) sizeIDs(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(codes))
	for _, code := range codes {
		size, err := r.catalog.FindSizeByCode(ctx, code)
		if err != nil {
			return nil, notFoundOr(err, "Size", code, models.ColumnSizeCodes)
		}
		ids = append(ids, size.ID)
	}
	return ids, nil
}

func notFoundOr(err error, kind, code, field string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &ReferenceNotFoundError{Kind: kind, Code: code, Field: field}
	}
	return fmt.Errorf("failed to look up %s '%s': %w", strings.ToLower(kind), code, err)
}

// SplitCodes splits a comma-separated list, trimming entries and dropping empty ones
func SplitCodes(value string) []string {
	return cleanCodes(strings.Split(value, ","))
}

// cleanCodes trims and drops empty entries from an already split list
func cleanCodes(values []string) []string {
	codes := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			codes = append(codes, v)
		}
	}
	return codes
}
