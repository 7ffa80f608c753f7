package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
)

// Error codes returned in models.ErrorResponse
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeDuplicateCode     = "DUPLICATE_CODE"
	ErrCodeInUse             = "IN_USE"
	ErrCodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

func respondFieldError(c *gin.Context, status int, code, message, field string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func respondPage(c *gin.Context, data interface{}, pagination *models.PaginationInfo) {
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &message,
	})
}

// parseID reads the :id path parameter, answering 400 when it is not a UUID
func parseID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidID, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps domain errors to HTTP responses; anything
// unrecognised is logged and answered with 500.
func respondServiceError(c *gin.Context, logger *logrus.Entry, err error, entity string) {
	var validation *services.ValidationError
	var notFound *services.ReferenceNotFoundError
	var blocked *models.DeleteBlockedError

	switch {
	case errors.As(err, &validation):
		respondFieldError(c, http.StatusBadRequest, ErrCodeValidation, validation.Message, validation.Field)
	case errors.As(err, &notFound):
		respondFieldError(c, http.StatusBadRequest, ErrCodeReferenceNotFound, notFound.Error(), notFound.Field)
	case errors.As(err, &blocked):
		respondError(c, http.StatusConflict, ErrCodeInUse, blocked.Error())
	case errors.Is(err, repository.ErrDuplicateCode):
		respondFieldError(c, http.StatusConflict, ErrCodeDuplicateCode, entity+" code already exists", "code")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, entity+" not found")
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred")
	}
}
