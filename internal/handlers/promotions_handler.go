package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
)

// PromotionsHandler serves promotions and storefront banners
type PromotionsHandler struct {
	service *services.PromotionService
	repo    *repository.PromotionsRepository
	logger  *logrus.Entry
}

func NewPromotionsHandler(service *services.PromotionService, repo *repository.PromotionsRepository, logger *logrus.Logger) *PromotionsHandler {
	return &PromotionsHandler{
		service: service,
		repo:    repo,
		logger:  logger.WithField("component", "promotions-handler"),
	}
}

// ListPromotions GET /api/v1/admin/promotions
func (h *PromotionsHandler) ListPromotions(c *gin.Context) {
	promotions, err := h.repo.ListPromotions(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Promotion")
		return
	}
	respondData(c, http.StatusOK, promotions)
}

// CreatePromotion POST /api/v1/admin/promotions
func (h *PromotionsHandler) CreatePromotion(c *gin.Context) {
	var req models.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	promotion, err := h.service.CreatePromotion(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err, "Promotion")
		return
	}
	h.logger.WithField("code", promotion.Code).Info("Promotion created")
	respondData(c, http.StatusCreated, promotion)
}

// DeletePromotion DELETE /api/v1/admin/promotions/:id
func (h *PromotionsHandler) DeletePromotion(c *gin.Context) {
	id, ok := parseID(c, "promotion")
	if !ok {
		return
	}
	if err := h.repo.DeletePromotion(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Promotion")
		return
	}
	respondMessage(c, "Promotion deleted successfully")
}

// ListBanners GET /api/v1/admin/banners
func (h *PromotionsHandler) ListBanners(c *gin.Context) {
	banners, err := h.repo.ListBanners(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, h.logger, err, "Banner")
		return
	}
	respondData(c, http.StatusOK, banners)
}

// CreateBanner POST /api/v1/admin/banners
func (h *PromotionsHandler) CreateBanner(c *gin.Context) {
	var req models.CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	banner := &models.Banner{
		Title:     strings.TrimSpace(req.Title),
		ImageURL:  strings.TrimSpace(req.ImageURL),
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	if err := h.repo.CreateBanner(c.Request.Context(), banner); err != nil {
		respondServiceError(c, h.logger, err, "Banner")
		return
	}
	respondData(c, http.StatusCreated, banner)
}

// DeleteBanner DELETE /api/v1/admin/banners/:id
func (h *PromotionsHandler) DeleteBanner(c *gin.Context) {
	id, ok := parseID(c, "banner")
	if !ok {
		return
	}
	if err := h.repo.DeleteBanner(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Banner")
		return
	}
	respondMessage(c, "Banner deleted successfully")
}

// StorefrontBanners GET /api/v1/storefront/banners
func (h *PromotionsHandler) StorefrontBanners(c *gin.Context) {
	banners, err := h.repo.ListBanners(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, h.logger, err, "Banner")
		return
	}
	respondData(c, http.StatusOK, banners)
}
