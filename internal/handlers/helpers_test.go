package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shoestore-service/internal/config"
	"shoestore-service/internal/metrics"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
	"shoestore-service/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires every handler against an in-memory sqlite database and a
// temporary image directory
type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	catalog   *repository.CatalogRepository
	products  *repository.ProductsRepository
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	uploadDir := t.TempDir()
	images, err := storage.NewLocalImageStore(uploadDir, "http://shop.test")
	require.NoError(t, err)

	catalogRepo := repository.NewCatalogRepository(db, nil)
	productsRepo := repository.NewProductsRepository(db)
	promotionsRepo := repository.NewPromotionsRepository(db)
	m := metrics.New("test")

	pricing := services.NewPricingService(promotionsRepo)
	importService := services.NewImportService(catalogRepo, productsRepo, images, nil, m, log)
	productService := services.NewProductService(catalogRepo, productsRepo, nil, log)
	promotionService := services.NewPromotionService(promotionsRepo, productsRepo)
	cartService := services.NewCartService(newMemoryCarts(), productsRepo, pricing, nil, m,
		services.CartConfig{Currency: "IDR", StoreWhatsAppNumber: "+62 812-0000"}, log)

	catalogHandler := NewCatalogHandler(catalogRepo, 20, 100, log)
	productsHandler := NewProductsHandler(productService, productsRepo, pricing, 20, 100, log)
	importHandler := NewImportHandler(importService, 1, log)
	imageHandler := NewImageHandler(images, log)
	promotionsHandler := NewPromotionsHandler(promotionService, promotionsRepo, log)
	cartHandler := NewCartHandler(cartService, log)
	healthHandler := NewHealthHandler(db, nil)

	router := gin.New()
	router.GET("/ready", healthHandler.ReadinessCheck)

	admin := router.Group("/api/v1/admin")
	admin.GET("/brands", catalogHandler.ListBrands)
	admin.POST("/brands", catalogHandler.CreateBrand)
	admin.DELETE("/brands/:id", catalogHandler.DeleteBrand)
	admin.POST("/colors", catalogHandler.CreateColor)
	admin.POST("/sizes", catalogHandler.CreateSize)
	admin.POST("/size-templates", catalogHandler.CreateSizeTemplate)
	admin.GET("/products", productsHandler.ListProducts)
	admin.POST("/products", productsHandler.CreateProduct)
	admin.GET("/products/import/template", importHandler.GetImportTemplate)
	admin.POST("/products/import", importHandler.ImportProducts)
	admin.GET("/products/:id", productsHandler.GetProduct)
	admin.PUT("/products/:id/status", productsHandler.UpdateProductStatus)
	admin.DELETE("/products/:id", productsHandler.DeleteProduct)
	admin.POST("/images", imageHandler.UploadImage)
	admin.POST("/promotions", promotionsHandler.CreatePromotion)
	admin.POST("/banners", promotionsHandler.CreateBanner)

	storefront := router.Group("/api/v1/storefront")
	storefront.GET("/products", productsHandler.StorefrontProducts)
	storefront.GET("/products/:code", productsHandler.StorefrontProduct)
	storefront.GET("/banners", promotionsHandler.StorefrontBanners)
	storefront.GET("/cart/:cartId", cartHandler.GetCart)
	storefront.POST("/cart/:cartId/items", cartHandler.AddItem)
	storefront.DELETE("/cart/:cartId/items/:index", cartHandler.RemoveItem)
	storefront.POST("/cart/:cartId/checkout", cartHandler.Checkout)

	return &testEnv{
		db:        db,
		router:    router,
		catalog:   catalogRepo,
		products:  productsRepo,
		uploadDir: uploadDir,
	}
}

// seedCatalog creates CASUAL, VANS, RED, BLACK, 37 and 38
func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.catalog.CreateCategory(ctx, &models.Category{Code: "CASUAL", Name: "Casual"}))
	require.NoError(t, e.catalog.CreateBrand(ctx, &models.Brand{Code: "VANS", Name: "Vans"}))
	require.NoError(t, e.catalog.CreateColor(ctx, &models.Color{Code: "RED", Name: "Red", HexCode: "#FF0000"}))
	require.NoError(t, e.catalog.CreateColor(ctx, &models.Color{Code: "BLACK", Name: "Black", HexCode: "#000000"}))
	require.NoError(t, e.catalog.CreateSize(ctx, &models.Size{Code: "37", SizeLabel: "EU 37"}))
	require.NoError(t, e.catalog.CreateSize(ctx, &models.Size{Code: "38", SizeLabel: "EU 38"}))
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

type jsonBody map[string]interface{}

// upload is one multipart file part
type upload struct {
	field    string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, path string, uploads ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := w.CreateFormFile(u.field, u.filename)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr("Sheet1", cell, value))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// decode unmarshals a response body into a generic map
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

type memoryCarts struct {
	mu    sync.Mutex
	carts map[string]models.Cart
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: make(map[string]models.Cart)}
}

func (m *memoryCarts) Get(_ context.Context, cartID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return &models.Cart{ID: cartID, Items: []models.CartItem{}}, nil
	}
	cart.Items = append([]models.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (m *memoryCarts) Save(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.ID] = *cart
	return nil
}

func (m *memoryCarts) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, cartID)
	return nil
}

// tinyPNG is a valid 1x1 PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
