package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/services"
)

type CartHandler struct {
	service *services.CartService
	logger  *logrus.Entry
}

func NewCartHandler(service *services.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.WithField("component", "cart-handler"),
	}
}

func (h *CartHandler) respond(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, ErrCodeEmptyCart, "Cart is empty")
	case errors.Is(err, services.ErrCartItemNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "Cart item not found")
	default:
		respondServiceError(c, h.logger, err, "Cart")
	}
}

// GetCart GET /api/v1/storefront/cart/:cartId
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		h.respond(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// AddItem POST /api/v1/storefront/cart/:cartId/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	cart, err := h.service.AddItem(c.Request.Context(), c.Param("cartId"), &req)
	if err != nil {
		h.respond(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RemoveItem DELETE /api/v1/storefront/cart/:cartId/items/:index
func (h *CartHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, "index must be a number", "index")
		return
	}
	cart, err := h.service.RemoveItem(c.Request.Context(), c.Param("cartId"), index)
	if err != nil {
		h.respond(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// ClearCart DELETE /api/v1/storefront/cart/:cartId
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("cartId")); err != nil {
		h.respond(c, err)
		return
	}
	respondMessage(c, "Cart cleared")
}

// Checkout POST /api/v1/storefront/cart/:cartId/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	result, err := h.service.Checkout(c.Request.Context(), c.Param("cartId"), &req)
	if err != nil {
		h.respond(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}
