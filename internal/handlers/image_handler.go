package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
	"shoestore-service/internal/services"
	"shoestore-service/internal/storage"
)

const maxImageBytes = 10 << 20

// storefrontImageTypes are the image types served from the upload area
var storefrontImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageHandler stores single product images uploaded from the admin UI
type ImageHandler struct {
	store  storage.ImageStore
	logger *logrus.Entry
}

func NewImageHandler(store storage.ImageStore, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{
		store:  store,
		logger: logger.WithField("component", "image-handler"),
	}
}

// UploadImage stores an image and returns its public URL
// @Summary Upload a product image
// @Description Store an image file; use the returned URL in imageUrls when creating products
// @Tags product-images
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/images [post]
func (h *ImageHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "Images must be 10 MB or smaller")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		respondError(c, http.StatusBadRequest, "FILE_READ_FAILED", "Failed to read uploaded file")
		return
	}

	// sniff the bytes; the client supplied Content-Type is not trusted
	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), storefrontImageTypes...) {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only JPEG, PNG, GIF or WebP images are allowed")
		return
	}

	baseName := path.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	if path.Ext(baseName) == "" {
		baseName += detected.Extension()
	}

	url, err := h.store.Save(c.Request.Context(), services.StorageName(baseName), data)
	if err != nil {
		h.logger.WithError(err).WithField("file", header.Filename).Error("Failed to store image")
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store image")
		return
	}

	respondData(c, http.StatusCreated, models.ExtractedImage{
		Filename: header.Filename,
		URL:      url,
		Size:     len(data),
	})
}
