package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
)

var productSorts = map[string]bool{"": true, "newest": true, "price_asc": true, "price_desc": true}

type ProductsHandler struct {
	service      *services.ProductService
	repo         *repository.ProductsRepository
	pricing      *services.PricingService
	defaultLimit int
	maxLimit     int
	logger       *logrus.Entry
}

func NewProductsHandler(
	service *services.ProductService,
	repo *repository.ProductsRepository,
	pricing *services.PricingService,
	defaultLimit, maxLimit int,
	logger *logrus.Logger,
) *ProductsHandler {
	return &ProductsHandler{
		service:      service,
		repo:         repo,
		pricing:      pricing,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.WithField("component", "products-handler"),
	}
}

// CreateProduct creates a single product
// POST /api/v1/admin/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondData(c, http.StatusCreated, product)
}

// bindSearch reads listing filters from the query string
func (h *ProductsHandler) bindSearch(c *gin.Context, activeOnly bool) (*models.SearchProductsRequest, bool) {
	var req models.SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}
	if !productSorts[req.SortBy] {
		respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, "sort must be one of newest, price_asc, price_desc", "sort")
		return nil, false
	}
	for field, value := range map[string]string{"minPrice": req.MinPrice, "maxPrice": req.MaxPrice} {
		if value == "" {
			continue
		}
		if _, err := decimal.NewFromString(strings.TrimSpace(value)); err != nil {
			respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, field+" must be a number", field)
			return nil, false
		}
	}

	list := models.ListRequest{Page: req.Page, Limit: req.Limit}
	list.Normalize(h.defaultLimit, h.maxLimit)
	req.Page, req.Limit = list.Page, list.Limit
	req.ActiveOnly = activeOnly
	return &req, true
}

// ListProducts lists every product, active or not
// GET /api/v1/admin/products
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	req, ok := h.bindSearch(c, false)
	if !ok {
		return
	}
	products, total, err := h.repo.ListProducts(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondPage(c, products, models.NewPagination(req.Page, req.Limit, total))
}

// GetProduct GET /api/v1/admin/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	product, err := h.repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondData(c, http.StatusOK, product)
}

// UpdateProductStatus PUT /api/v1/admin/products/:id/status
func (h *ProductsHandler) UpdateProductStatus(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := h.repo.UpdateProductStatus(c.Request.Context(), id, *req.IsActive); err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	h.logger.WithField("product_id", id).WithField("is_active", *req.IsActive).Info("Product status updated")

	product, err := h.repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondData(c, http.StatusOK, product)
}

// DeleteProduct DELETE /api/v1/admin/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	if err := h.repo.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	h.logger.WithField("product_id", id).Info("Product deleted")
	respondMessage(c, "Product deleted successfully")
}

// StorefrontProducts lists active products with their sale prices
// GET /api/v1/storefront/products
func (h *ProductsHandler) StorefrontProducts(c *gin.Context) {
	req, ok := h.bindSearch(c, true)
	if !ok {
		return
	}
	products, total, err := h.repo.ListProducts(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	priced, err := h.pricing.Storefront(c.Request.Context(), products)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondPage(c, priced, models.NewPagination(req.Page, req.Limit, total))
}

// StorefrontProduct GET /api/v1/storefront/products/:code
func (h *ProductsHandler) StorefrontProduct(c *gin.Context) {
	product, err := h.repo.GetProductByCode(c.Request.Context(), c.Param("code"), true)
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	priced, err := h.pricing.Storefront(c.Request.Context(), []models.Product{*product})
	if err != nil {
		respondServiceError(c, h.logger, err, "Product")
		return
	}
	respondData(c, http.StatusOK, priced[0])
}
