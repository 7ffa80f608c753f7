package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"shoestore-service/internal/models"
	"shoestore-service/internal/services"
)

type ImportHandler struct {
	service      *services.ImportService
	maxFileBytes int64
	logger       *logrus.Entry
}

func NewImportHandler(service *services.ImportService, maxFileMB int, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		service:      service,
		maxFileBytes: int64(maxFileMB) << 20,
		logger:       logger.WithField("component", "import-handler"),
	}
}

// GetImportTemplate returns the import template file or its definition
// GET /api/v1/admin/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := models.ProductImportTemplate()

	switch c.DefaultQuery("format", "xlsx") {
	case "json":
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	default:
		h.generateXLSXTemplate(c, template)
	}
}

// generateXLSXTemplate writes a workbook with the header row, one example row
// and an Instructions sheet
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		header, _ := excelize.CoordinatesToCellName(i+1, 1)
		example, _ := excelize.CoordinatesToCellName(i+1, 2)

		f.SetCellValue(sheetName, header, col.Name)
		if col.Required {
			f.SetCellStyle(sheetName, header, header, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, header, header, headerStyle)
		}
		// every example is text so prices and size codes keep their exact form
		f.SetCellStr(sheetName, example, col.Example)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Only the first sheet is imported. Replace the example row with your products.")
	f.SetCellValue("Instructions", "A4", "Categories, brands, colors and sizes must exist before importing; refer to them by code.")
	f.SetCellValue("Instructions", "A5", "Upload product photos as a .zip next to the spreadsheet and list their file names in imageUrls.")
	f.SetCellValue("Instructions", "A6", "The first image of a row becomes the primary image. Existing product codes are reported as failures.")

	f.SetCellValue("Instructions", "A8", "Column")
	f.SetCellValue("Instructions", "B8", "Description")
	f.SetCellValue("Instructions", "C8", "Required")
	f.SetCellValue("Instructions", "D8", "Type")
	f.SetCellValue("Instructions", "E8", "Example")

	for i, col := range template.Columns {
		row := i + 9
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 20)
	f.SetColWidth("Instructions", "B", "B", 70)
	f.SetColWidth("Instructions", "C", "D", 12)
	f.SetColWidth("Instructions", "E", "E", 35)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")

	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write import template")
	}
}

// ImportProducts creates products from a spreadsheet and an optional zip of images
// POST /api/v1/admin/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Please upload an Excel file (.xlsx or .xls)")
		return
	}
	if !hasExtension(fileHeader.Filename, ".xlsx", ".xls") {
		h.fail(c, http.StatusBadRequest, "Only .xlsx or .xls files are supported")
		return
	}

	imagesHeader, err := c.FormFile("images")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.fail(c, http.StatusBadRequest, "Failed to read images upload")
		return
	}
	if imagesHeader != nil && !hasExtension(imagesHeader.Filename, ".zip") {
		h.fail(c, http.StatusBadRequest, "Images must be uploaded as a .zip archive")
		return
	}

	spreadsheet, err := h.readUpload(fileHeader)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	var archive []byte
	if imagesHeader != nil {
		if archive, err = h.readUpload(imagesHeader); err != nil {
			h.fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	results, err := h.service.Import(c.Request.Context(), spreadsheet, archive)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrUnreadableSpreadsheet) || errors.Is(err, services.ErrUnreadableArchive) {
			status = http.StatusBadRequest
		}
		h.logger.WithError(err).WithField("file", fileHeader.Filename).Warn("Product import rejected")
		h.fail(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.ImportResponse{
		Success: true,
		Message: fmt.Sprintf("Import completed. %d products imported successfully, %d failed.", results.Success, results.Failed),
		Results: *results,
	})
}

func (h *ImportHandler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, models.ImportErrorResponse{
		Success: false,
		Error:   message,
	})
}

func (h *ImportHandler) readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > h.maxFileBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", header.Filename, h.maxFileBytes>>20)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	if int64(len(data)) > h.maxFileBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", header.Filename, h.maxFileBytes>>20)
	}
	return data, nil
}

func hasExtension(filename string, extensions ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
