package models

// Spreadsheet columns understood by the product importer
const (
	ColumnName         = "name"
	ColumnCode         = "code"
	ColumnDescription  = "description"
	ColumnCategoryCode = "categoryCode"
	ColumnBrandCode    = "brandCode"
	ColumnPrice        = "price"
	ColumnColorCodes   = "colorCodes"
	ColumnSizeCodes    = "sizeCodes"
	ColumnImageURLs    = "imageUrls"
	ColumnIsActive     = "isActive"
)

// ImportColumns lists every recognised import column in template order
var ImportColumns = []string{
	ColumnName, ColumnCode, ColumnDescription, ColumnCategoryCode, ColumnBrandCode,
	ColumnPrice, ColumnColorCodes, ColumnSizeCodes, ColumnImageURLs, ColumnIsActive,
}

// RequiredImportColumns must all be non-empty for a row to be processed
var RequiredImportColumns = []string{
	ColumnName, ColumnCode, ColumnCategoryCode, ColumnBrandCode, ColumnPrice,
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, list
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRow is one decoded spreadsheet data row.
// RowNumber is the 1-based sheet row (the header is row 1).
type ImportRow struct {
	RowNumber int
	Fields    map[string]string
}

// Get returns the trimmed value of a column, or "" when absent
func (r ImportRow) Get(column string) string {
	return r.Fields[column]
}

// ImportResults is the per-batch outcome of an import
type ImportResults struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ImportResponse is the envelope returned by a completed import
type ImportResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Results ImportResults `json:"results"`
}

// ImportErrorResponse is returned when nothing could be imported
type ImportErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ExtractedImage describes one image persisted from an uploaded archive
type ExtractedImage struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int    `json:"size"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: ColumnName, Description: "Product name", Required: true, Type: "string", Example: "Red Flat"},
		{Name: ColumnCode, Description: "Unique product code", Required: true, Type: "string", Example: "PRD-100"},
		{Name: ColumnDescription, Description: "Product description", Required: false, Type: "string", Example: "Soft leather ballet flat"},
		{Name: ColumnCategoryCode, Description: "Existing category code", Required: true, Type: "string", Example: "CASUAL"},
		{Name: ColumnBrandCode, Description: "Existing brand code", Required: true, Type: "string", Example: "VANS"},
		{Name: ColumnPrice, Description: "Price, zero or more", Required: true, Type: "number", Example: "499000"},
		{Name: ColumnColorCodes, Description: "Comma-separated existing color codes", Required: false, Type: "list", Example: "RED,BLACK"},
		{Name: ColumnSizeCodes, Description: "Comma-separated existing size codes", Required: false, Type: "list", Example: "37,38,39"},
		{Name: ColumnImageURLs, Description: "Comma-separated image file names from the zip, or http(s) URLs. First is primary", Required: false, Type: "list", Example: "red-flat-1.jpg,red-flat-2.jpg"},
		{Name: ColumnIsActive, Description: "true to show on the storefront (default true)", Required: false, Type: "boolean", Example: "true"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
