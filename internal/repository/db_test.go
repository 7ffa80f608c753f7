package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shoestore-service/internal/config"
	"shoestore-service/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// catalogFixture seeds one category, brand, two colors and two sizes
type catalogFixture struct {
	category *models.Category
	brand    *models.Brand
	red      *models.Color
	black    *models.Color
	size37   *models.Size
	size38   *models.Size
}

func seedCatalog(t *testing.T, repo *CatalogRepository) catalogFixture {
	t.Helper()
	ctx := context.Background()
	f := catalogFixture{
		category: &models.Category{Code: "CASUAL", Name: "Casual"},
		brand:    &models.Brand{Code: "VANS", Name: "Vans"},
		red:      &models.Color{Code: "RED", Name: "Red", HexCode: "#FF0000"},
		black:    &models.Color{Code: "BLACK", Name: "Black", HexCode: "#000000"},
		size37:   &models.Size{Code: "37", SizeLabel: "EU 37"},
		size38:   &models.Size{Code: "38", SizeLabel: "EU 38"},
	}
	require.NoError(t, repo.CreateCategory(ctx, f.category))
	require.NoError(t, repo.CreateBrand(ctx, f.brand))
	require.NoError(t, repo.CreateColor(ctx, f.red))
	require.NoError(t, repo.CreateColor(ctx, f.black))
	require.NoError(t, repo.CreateSize(ctx, f.size37))
	require.NoError(t, repo.CreateSize(ctx, f.size38))
	return f
}

func (f catalogFixture) draft(code string, price int64, active bool) *ProductDraft {
	return &ProductDraft{
		Product: &models.Product{
			Code:       code,
			Name:       "Shoe " + code,
			Price:      decimal.NewFromInt(price),
			CategoryID: f.category.ID,
			BrandID:    f.brand.ID,
			IsActive:   active,
		},
		ColorIDs: []uuid.UUID{f.red.ID},
		SizeIDs:  []uuid.UUID{f.size37.ID},
	}
}
