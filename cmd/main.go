package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"shoestore-service/internal/config"
	"shoestore-service/internal/events"
	"shoestore-service/internal/handlers"
	"shoestore-service/internal/metrics"
	"shoestore-service/internal/middleware"
	"shoestore-service/internal/repository"
	"shoestore-service/internal/services"
	"shoestore-service/internal/storage"
)

// @title Shoe Store API
// @version 1.0.0
// @description Shoe catalog back office, bulk product import and storefront cart

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Redis backs the cart store and the catalog lookup cache
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid REDIS_URL:", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	catalogCache := catalogCacheClient(ctx, redisClient)
	cancel()

	imageStore, err := newImageStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize image storage:", err)
	}
	log.Printf("✓ Image storage initialized (%s)", cfg.StorageDriver)

	// Event publishing is enabled only when NATS_URL is set
	var eventsPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	appMetrics := metrics.New("shoestore")
	log.Println("✓ Prometheus metrics initialized")

	// Repositories
	catalogRepo := repository.NewCatalogRepository(db, catalogCache)
	productsRepo := repository.NewProductsRepository(db)
	promotionsRepo := repository.NewPromotionsRepository(db)
	cartStore := repository.NewRedisCartStore(redisClient, time.Duration(cfg.CartTTLHours)*time.Hour)

	// Services
	pricing := services.NewPricingService(promotionsRepo)
	importService := services.NewImportService(catalogRepo, productsRepo, imageStore, eventsPublisher, appMetrics, logger)
	productService := services.NewProductService(catalogRepo, productsRepo, eventsPublisher, logger)
	promotionService := services.NewPromotionService(promotionsRepo, productsRepo)
	cartService := services.NewCartService(cartStore, productsRepo, pricing, eventsPublisher, appMetrics, services.CartConfig{
		Currency:            cfg.Currency,
		StoreWhatsAppNumber: cfg.StoreWhatsAppNumber,
	}, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, cfg.DefaultPageSize, cfg.MaxPageSize, logger)
	productsHandler := handlers.NewProductsHandler(productService, productsRepo, pricing, cfg.DefaultPageSize, cfg.MaxPageSize, logger)
	importHandler := handlers.NewImportHandler(importService, cfg.MaxImportFileMB, logger)
	imageHandler := handlers.NewImageHandler(imageStore, logger)
	promotionsHandler := handlers.NewPromotionsHandler(promotionService, promotionsRepo, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(appMetrics.Middleware())
	router.Use(middleware.RequestLogger(logger))
	// multipart bodies beyond this spill to temp files
	router.MaxMultipartMemory = int64(cfg.MaxImportFileMB) << 20

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.StorageDriver == "local" {
		router.Static("/uploads", cfg.UploadDir)
	}

	admin := router.Group("/api/v1/admin")
	{
		categories := admin.Group("/categories")
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.GET("/:id", catalogHandler.GetCategory)
			categories.POST("", catalogHandler.CreateCategory)
			categories.PUT("/:id", catalogHandler.UpdateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		brands := admin.Group("/brands")
		{
			brands.GET("", catalogHandler.ListBrands)
			brands.GET("/:id", catalogHandler.GetBrand)
			brands.POST("", catalogHandler.CreateBrand)
			brands.PUT("/:id", catalogHandler.UpdateBrand)
			brands.DELETE("/:id", catalogHandler.DeleteBrand)
		}

		colors := admin.Group("/colors")
		{
			colors.GET("", catalogHandler.ListColors)
			colors.GET("/:id", catalogHandler.GetColor)
			colors.POST("", catalogHandler.CreateColor)
			colors.PUT("/:id", catalogHandler.UpdateColor)
			colors.DELETE("/:id", catalogHandler.DeleteColor)
		}

		sizes := admin.Group("/sizes")
		{
			sizes.GET("", catalogHandler.ListSizes)
			sizes.GET("/:id", catalogHandler.GetSize)
			sizes.POST("", catalogHandler.CreateSize)
			sizes.PUT("/:id", catalogHandler.UpdateSize)
			sizes.DELETE("/:id", catalogHandler.DeleteSize)
		}

		templates := admin.Group("/size-templates")
		{
			templates.GET("", catalogHandler.ListSizeTemplates)
			templates.GET("/:id", catalogHandler.GetSizeTemplate)
			templates.POST("", catalogHandler.CreateSizeTemplate)
			templates.DELETE("/:id", catalogHandler.DeleteSizeTemplate)
		}

		products := admin.Group("/products")
		{
			products.GET("", productsHandler.ListProducts)
			products.POST("", productsHandler.CreateProduct)
			products.GET("/import/template", importHandler.GetImportTemplate)
			products.POST("/import", importHandler.ImportProducts)
			products.GET("/:id", productsHandler.GetProduct)
			products.PUT("/:id/status", productsHandler.UpdateProductStatus)
			products.DELETE("/:id", productsHandler.DeleteProduct)
		}

		admin.POST("/images", imageHandler.UploadImage)

		admin.GET("/promotions", promotionsHandler.ListPromotions)
		admin.POST("/promotions", promotionsHandler.CreatePromotion)
		admin.DELETE("/promotions/:id", promotionsHandler.DeletePromotion)

		admin.GET("/banners", promotionsHandler.ListBanners)
		admin.POST("/banners", promotionsHandler.CreateBanner)
		admin.DELETE("/banners/:id", promotionsHandler.DeleteBanner)
	}

	storefront := router.Group("/api/v1/storefront")
	{
		storefront.GET("/products", productsHandler.StorefrontProducts)
		storefront.GET("/products/:code", productsHandler.StorefrontProduct)
		storefront.GET("/categories", catalogHandler.StorefrontCategories)
		storefront.GET("/brands", catalogHandler.StorefrontBrands)
		storefront.GET("/banners", promotionsHandler.StorefrontBanners)

		cart := storefront.Group("/cart/:cartId")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.DELETE("/items/:index", cartHandler.RemoveItem)
			cart.POST("/checkout", cartHandler.Checkout)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Shoestore service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down shoestore-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Shoestore service stopped")
}

// catalogCacheClient returns client when redis answers a ping. Otherwise the
// catalog runs uncached so imports do not wait on redis dial retries.
func catalogCacheClient(ctx context.Context, client *redis.Client) *redis.Client {
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (catalog cache disabled, carts unavailable until it is reachable)", err)
		return nil
	}
	log.Println("✓ Redis connected successfully")
	return client
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMinIOImageStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
	case "local":
		return storage.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		return nil, errors.New("STORAGE_DRIVER must be local or minio")
	}
}
