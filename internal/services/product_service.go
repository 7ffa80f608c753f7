package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/events"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
)

// ProductCatalog resolves master data and size templates for admin product creation
type ProductCatalog interface {
	CatalogLookup
	FindSizeTemplateByCode(ctx context.Context, code string) (*models.SizeTemplate, error)
}

// ProductStore writes products and reads them back with their children
type ProductStore interface {
	ProductWriter
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ProductService creates single products from the admin API with the same
// rules and order of checks as the importer.
type ProductService struct {
	catalog   ProductCatalog
	resolver  catalogResolver
	products  ProductStore
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewProductService(catalog ProductCatalog, products ProductStore, publisher *events.Publisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		catalog:   catalog,
		resolver:  catalogResolver{catalog: catalog},
		products:  products,
		publisher: publisher,
		logger:    logger.WithField("component", "products"),
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" {
		return nil, invalid("code", "code is required")
	}
	if name == "" {
		return nil, invalid("name", "name is required")
	}

	exists, err := s.products.ProductCodeExists(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if exists {
		return nil, repository.ErrDuplicateCode
	}

	categoryID, err := s.resolver.categoryID(ctx, strings.TrimSpace(req.CategoryCode))
	if err != nil {
		return nil, err
	}
	brandID, err := s.resolver.brandID(ctx, strings.TrimSpace(req.BrandCode))
	if err != nil {
		return nil, err
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return nil, invalid("price", "%s", err.Error())
	}

	colorIDs, err := s.resolver.colorIDs(ctx, cleanCodes(req.ColorCodes))
	if err != nil {
		return nil, err
	}
	sizeIDs, err := s.resolver.sizeIDs(ctx, cleanCodes(req.SizeCodes))
	if err != nil {
		return nil, err
	}
	if req.SizeTemplateCode != nil && strings.TrimSpace(*req.SizeTemplateCode) != "" {
		templateCode := strings.TrimSpace(*req.SizeTemplateCode)
		template, err := s.catalog.FindSizeTemplateByCode(ctx, templateCode)
		if err != nil {
			return nil, notFoundOr(err, "Size template", templateCode, "sizeTemplateCode")
		}
		for _, size := range template.Sizes {
			sizeIDs = append(sizeIDs, size.ID)
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	var description *string
	if req.Description != nil {
		description = optionalString(strings.TrimSpace(*req.Description))
	}

	product := &models.Product{
		Code:        code,
		Name:        name,
		Description: description,
		Price:       price,
		CategoryID:  categoryID,
		BrandID:     brandID,
		IsActive:    isActive,
	}
	draft := &repository.ProductDraft{
		Product:   product,
		ColorIDs:  colorIDs,
		SizeIDs:   sizeIDs,
		ImageURLs: cleanCodes(req.ImageURLs),
	}
	if err := s.products.CreateProduct(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, repository.ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"code":       product.Code,
	}).Info("Product created")
	s.publisher.PublishProductCreated(ctx, product, "admin")

	created, err := s.products.GetProductByID(ctx, product.ID)
	if err != nil {
		return product, nil
	}
	return created, nil
}
