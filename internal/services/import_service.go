package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/events"
	"shoestore-service/internal/metrics"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/storage"
)

// ProductWriter persists validated products
type ProductWriter interface {
	ProductCodeExists(ctx context.Context, code string) (bool, error)
	CreateProduct(ctx context.Context, draft *repository.ProductDraft) error
}

const unknownRowError = "unknown error"

// ImportService turns an uploaded spreadsheet and optional image archive into products.
// Rows are processed one at a time; each row commits or fails on its own.
type ImportService struct {
	resolver  catalogResolver
	products  ProductWriter
	images    storage.ImageStore
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Entry
}

func NewImportService(
	catalog CatalogLookup,
	products ProductWriter,
	images storage.ImageStore,
	publisher *events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		resolver:  catalogResolver{catalog: catalog},
		products:  products,
		images:    images,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithField("component", "product-import"),
	}
}

// Import decodes the spreadsheet, stores the archive images (if any) and
// imports every row. A returned error means nothing was imported.
func (s *ImportService) Import(ctx context.Context, spreadsheet, archive []byte) (*models.ImportResults, error) {
	source, err := DecodeSpreadsheet(spreadsheet)
	if err != nil {
		return nil, err
	}

	lookup := ImageLookup{}
	var extracted []models.ExtractedImage
	if len(archive) > 0 {
		extracted, lookup, err = ExtractImages(ctx, archive, s.images, MaxArchiveImageBytes)
		if err != nil {
			return nil, err
		}
		s.metrics.ImagesExtracted(len(extracted))
		s.logger.WithField("images", len(extracted)).Info("Extracted product images from archive")
	}

	results := s.ImportRows(ctx, source.All(), lookup)
	s.publisher.PublishImportCompleted(ctx, *results, len(extracted))
	return results, nil
}

// ImportRows validates and creates each row in order. Failures are collected
// as "Row N: message" and never stop the loop.
func (s *ImportService) ImportRows(ctx context.Context, rows iter.Seq[models.ImportRow], images ImageLookup) *models.ImportResults {
	results := &models.ImportResults{Errors: []string{}}

	for row := range rows {
		product, err := s.importRow(ctx, row, images)
		if err != nil {
			message := fmt.Sprintf("Row %d: %s", row.RowNumber, err.Error())
			results.Failed++
			results.Errors = append(results.Errors, message)
			s.metrics.ImportRow(metrics.OutcomeFailed)
			s.logger.WithFields(logrus.Fields{
				"row":  row.RowNumber,
				"code": row.Get(models.ColumnCode),
			}).WithError(err).Warn("Product import row failed")
			continue
		}

		results.Success++
		s.metrics.ImportRow(metrics.OutcomeSuccess)
		s.publisher.PublishProductCreated(ctx, product, "import")
	}

	s.logger.WithFields(logrus.Fields{
		"success": results.Success,
		"failed":  results.Failed,
	}).Info("Product import finished")
	return results
}

func (s *ImportService) importRow(ctx context.Context, row models.ImportRow, images ImageLookup) (product *models.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("row", row.RowNumber).WithField("panic", r).Error("Recovered from panic while importing row")
			product, err = nil, errors.New(unknownRowError)
		}
	}()

	if missing := MissingRequired(row); len(missing) > 0 {
		return nil, fmt.Errorf("Missing required fields (%s)", strings.Join(missing, ", "))
	}

	code := row.Get(models.ColumnCode)
	exists, err := s.products.ProductCodeExists(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if exists {
		return nil, duplicateCodeError(code)
	}

	categoryID, err := s.resolver.categoryID(ctx, row.Get(models.ColumnCategoryCode))
	if err != nil {
		return nil, err
	}
	brandID, err := s.resolver.brandID(ctx, row.Get(models.ColumnBrandCode))
	if err != nil {
		return nil, err
	}

	price, err := ParsePrice(row.Get(models.ColumnPrice))
	if err != nil {
		return nil, err
	}

	colorIDs, err := s.resolver.colorIDs(ctx, SplitCodes(row.Get(models.ColumnColorCodes)))
	if err != nil {
		return nil, err
	}
	sizeIDs, err := s.resolver.sizeIDs(ctx, SplitCodes(row.Get(models.ColumnSizeCodes)))
	if err != nil {
		return nil, err
	}

	product = &models.Product{
		Code:        code,
		Name:        row.Get(models.ColumnName),
		Description: optionalString(row.Get(models.ColumnDescription)),
		Price:       price,
		CategoryID:  categoryID,
		BrandID:     brandID,
		IsActive:    parseIsActive(row),
	}
	draft := &repository.ProductDraft{
		Product:   product,
		ColorIDs:  colorIDs,
		SizeIDs:   sizeIDs,
		ImageURLs: s.resolveImages(row, images),
	}

	if err := s.products.CreateProduct(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, duplicateCodeError(code)
		}
		return nil, err
	}
	return product, nil
}

// resolveImages maps each imageUrls entry to a stored URL. Entries matching
// neither the archive nor an http(s) URL are dropped.
func (s *ImportService) resolveImages(row models.ImportRow, images ImageLookup) []string {
	names := SplitCodes(row.Get(models.ColumnImageURLs))
	urls := make([]string, 0, len(names))
	for _, name := range names {
		if url, ok := images[name]; ok {
			urls = append(urls, url)
			continue
		}
		if url, ok := images[path.Base(name)]; ok {
			urls = append(urls, url)
			continue
		}
		if isRemoteURL(name) {
			urls = append(urls, name)
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"row":   row.RowNumber,
			"image": name,
		}).Warn("Image not found in archive, skipping")
	}
	return urls
}

// ParsePrice accepts any decimal number that is zero or more
func ParsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || price.IsNegative() {
		return decimal.Zero, fmt.Errorf("Invalid price '%s'", value)
	}
	return price, nil
}

// parseIsActive defaults to true when the column is absent or blank;
// otherwise only a case-insensitive "true" activates the product.
func parseIsActive(row models.ImportRow) bool {
	value := row.Get(models.ColumnIsActive)
	if value == "" {
		return true
	}
	return strings.ToLower(value) == "true"
}

func duplicateCodeError(code string) error {
	return fmt.Errorf("Product code '%s' already exists", code)
}

func isRemoteURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
