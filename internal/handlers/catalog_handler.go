package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CatalogHandler serves master data: categories, brands, colors, sizes and size templates
type CatalogHandler struct {
	repo         *repository.CatalogRepository
	defaultLimit int
	maxLimit     int
	logger       *logrus.Entry
}

func NewCatalogHandler(repo *repository.CatalogRepository, defaultLimit, maxLimit int, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.WithField("component", "catalog-handler"),
	}
}

func (h *CatalogHandler) bindList(c *gin.Context) (models.ListRequest, bool) {
	var req models.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return req, false
	}
	req.Normalize(h.defaultLimit, h.maxLimit)
	return req, true
}

func bindMaster(c *gin.Context, req *models.CreateMasterRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return false
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "code and name are required")
		return false
	}
	return true
}

// Categories

// ListCategories GET /api/v1/admin/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	categories, total, err := h.repo.ListCategories(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondPage(c, categories, models.NewPagination(req.Page, req.Limit, total))
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}
	category, err := h.repo.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondData(c, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CreateMasterRequest
	if !bindMaster(c, &req) {
		return
	}
	category := &models.Category{Code: req.Code, Name: req.Name}
	if err := h.repo.CreateCategory(c.Request.Context(), category); err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondData(c, http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}
	var req models.CreateMasterRequest
	if !bindMaster(c, &req) {
		return
	}
	category, err := h.repo.UpdateCategory(c.Request.Context(), id, req.Code, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondData(c, http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}
	if err := h.repo.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondMessage(c, "Category deleted successfully")
}

// Brands

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	brands, total, err := h.repo.ListBrands(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondPage(c, brands, models.NewPagination(req.Page, req.Limit, total))
}

func (h *CatalogHandler) GetBrand(c *gin.Context) {
	id, ok := parseID(c, "brand")
	if !ok {
		return
	}
	brand, err := h.repo.GetBrandByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondData(c, http.StatusOK, brand)
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req models.CreateMasterRequest
	if !bindMaster(c, &req) {
		return
	}
	brand := &models.Brand{Code: req.Code, Name: req.Name}
	if err := h.repo.CreateBrand(c.Request.Context(), brand); err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondData(c, http.StatusCreated, brand)
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	id, ok := parseID(c, "brand")
	if !ok {
		return
	}
	var req models.CreateMasterRequest
	if !bindMaster(c, &req) {
		return
	}
	brand, err := h.repo.UpdateBrand(c.Request.Context(), id, req.Code, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondData(c, http.StatusOK, brand)
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	id, ok := parseID(c, "brand")
	if !ok {
		return
	}
	if err := h.repo.DeleteBrand(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondMessage(c, "Brand deleted successfully")
}

// Colors

func bindColor(c *gin.Context) (models.CreateColorRequest, bool) {
	var req models.CreateColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return req, false
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	req.HexCode = strings.ToUpper(strings.TrimSpace(req.HexCode))
	if req.Code == "" || req.Name == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "code and name are required")
		return req, false
	}
	if !hexColorPattern.MatchString(req.HexCode) {
		respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, "hexCode must look like #RRGGBB", "hexCode")
		return req, false
	}
	return req, true
}

func (h *CatalogHandler) ListColors(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	colors, total, err := h.repo.ListColors(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Color")
		return
	}
	respondPage(c, colors, models.NewPagination(req.Page, req.Limit, total))
}

func (h *CatalogHandler) GetColor(c *gin.Context) {
	id, ok := parseID(c, "color")
	if !ok {
		return
	}
	color, err := h.repo.GetColorByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Color")
		return
	}
	respondData(c, http.StatusOK, color)
}

func (h *CatalogHandler) CreateColor(c *gin.Context) {
	req, ok := bindColor(c)
	if !ok {
		return
	}
	color := &models.Color{Code: req.Code, Name: req.Name, HexCode: req.HexCode}
	if err := h.repo.CreateColor(c.Request.Context(), color); err != nil {
		respondServiceError(c, h.logger, err, "Color")
		return
	}
	respondData(c, http.StatusCreated, color)
}

func (h *CatalogHandler) UpdateColor(c *gin.Context) {
	id, ok := parseID(c, "color")
	if !ok {
		return
	}
	req, ok := bindColor(c)
	if !ok {
		return
	}
	color, err := h.repo.UpdateColor(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Color")
		return
	}
	respondData(c, http.StatusOK, color)
}

func (h *CatalogHandler) DeleteColor(c *gin.Context) {
	id, ok := parseID(c, "color")
	if !ok {
		return
	}
	if err := h.repo.DeleteColor(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Color")
		return
	}
	respondMessage(c, "Color deleted successfully")
}

// Sizes

func bindSize(c *gin.Context) (*models.Size, bool) {
	var req models.CreateSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}
	size := &models.Size{
		Code:      strings.TrimSpace(req.Code),
		SizeLabel: strings.TrimSpace(req.SizeLabel),
	}
	if size.Code == "" || size.SizeLabel == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "code and sizeLabel are required")
		return nil, false
	}
	if req.CmValue != nil && strings.TrimSpace(*req.CmValue) != "" {
		cm, err := decimal.NewFromString(strings.TrimSpace(*req.CmValue))
		if err != nil || !cm.IsPositive() {
			respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, "cmValue must be a positive number", "cmValue")
			return nil, false
		}
		size.CmValue = &cm
	}
	return size, true
}

func (h *CatalogHandler) ListSizes(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	sizes, total, err := h.repo.ListSizes(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Size")
		return
	}
	respondPage(c, sizes, models.NewPagination(req.Page, req.Limit, total))
}

func (h *CatalogHandler) GetSize(c *gin.Context) {
	id, ok := parseID(c, "size")
	if !ok {
		return
	}
	size, err := h.repo.GetSizeByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Size")
		return
	}
	respondData(c, http.StatusOK, size)
}

func (h *CatalogHandler) CreateSize(c *gin.Context) {
	size, ok := bindSize(c)
	if !ok {
		return
	}
	if err := h.repo.CreateSize(c.Request.Context(), size); err != nil {
		respondServiceError(c, h.logger, err, "Size")
		return
	}
	respondData(c, http.StatusCreated, size)
}

func (h *CatalogHandler) UpdateSize(c *gin.Context) {
	id, ok := parseID(c, "size")
	if !ok {
		return
	}
	updated, ok := bindSize(c)
	if !ok {
		return
	}
	size, err := h.repo.UpdateSize(c.Request.Context(), id, updated)
	if err != nil {
		respondServiceError(c, h.logger, err, "Size")
		return
	}
	respondData(c, http.StatusOK, size)
}

func (h *CatalogHandler) DeleteSize(c *gin.Context) {
	id, ok := parseID(c, "size")
	if !ok {
		return
	}
	if err := h.repo.DeleteSize(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Size")
		return
	}
	respondMessage(c, "Size deleted successfully")
}

// Size templates

func (h *CatalogHandler) ListSizeTemplates(c *gin.Context) {
	templates, err := h.repo.ListSizeTemplates(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Size template")
		return
	}
	respondData(c, http.StatusOK, templates)
}

func (h *CatalogHandler) GetSizeTemplate(c *gin.Context) {
	id, ok := parseID(c, "size template")
	if !ok {
		return
	}
	template, err := h.repo.GetSizeTemplateByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Size template")
		return
	}
	respondData(c, http.StatusOK, template)
}

// CreateSizeTemplate POST /api/v1/admin/size-templates
func (h *CatalogHandler) CreateSizeTemplate(c *gin.Context) {
	var req models.CreateSizeTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	ctx := c.Request.Context()
	template := &models.SizeTemplate{
		Code: strings.TrimSpace(req.Code),
		Name: strings.TrimSpace(req.Name),
	}
	seen := make(map[string]bool, len(req.SizeCodes))
	for _, code := range services.SplitCodes(strings.Join(req.SizeCodes, ",")) {
		if seen[code] {
			continue
		}
		seen[code] = true
		size, err := h.repo.FindSizeByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				err = &services.ReferenceNotFoundError{Kind: "Size", Code: code, Field: "sizeCodes"}
			}
			respondServiceError(c, h.logger, err, "Size template")
			return
		}
		template.Sizes = append(template.Sizes, *size)
	}
	if len(template.Sizes) == 0 {
		respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, "at least one size code is required", "sizeCodes")
		return
	}

	if err := h.repo.CreateSizeTemplate(ctx, template); err != nil {
		respondServiceError(c, h.logger, err, "Size template")
		return
	}
	respondData(c, http.StatusCreated, template)
}

func (h *CatalogHandler) DeleteSizeTemplate(c *gin.Context) {
	id, ok := parseID(c, "size template")
	if !ok {
		return
	}
	if err := h.repo.DeleteSizeTemplate(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Size template")
		return
	}
	respondMessage(c, "Size template deleted successfully")
}

// Storefront navigation

// StorefrontCategories GET /api/v1/storefront/categories
func (h *CatalogHandler) StorefrontCategories(c *gin.Context) {
	req := models.ListRequest{Page: 1, Limit: h.maxLimit}
	categories, _, err := h.repo.ListCategories(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Category")
		return
	}
	respondData(c, http.StatusOK, categories)
}

// StorefrontBrands GET /api/v1/storefront/brands
func (h *CatalogHandler) StorefrontBrands(c *gin.Context) {
	req := models.ListRequest{Page: 1, Limit: h.maxLimit}
	brands, _, err := h.repo.ListBrands(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Brand")
		return
	}
	respondData(c, http.StatusOK, brands)
}
