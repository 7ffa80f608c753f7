package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
)

// fakeCatalog is an in-memory CatalogLookup
type fakeCatalog struct {
	categories map[string]*models.Category
	brands     map[string]*models.Brand
	colors     map[string]*models.Color
	sizes      map[string]*models.Size
	templates  map[string]*models.SizeTemplate
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: map[string]*models.Category{
			"CASUAL": {ID: uuid.New(), Code: "CASUAL", Name: "Casual"},
		},
		brands: map[string]*models.Brand{
			"VANS": {ID: uuid.New(), Code: "VANS", Name: "Vans"},
		},
		colors: map[string]*models.Color{
			"RED":   {ID: uuid.New(), Code: "RED", Name: "Red", HexCode: "#FF0000"},
			"BLACK": {ID: uuid.New(), Code: "BLACK", Name: "Black", HexCode: "#000000"},
		},
		sizes: map[string]*models.Size{
			"37": {ID: uuid.New(), Code: "37", SizeLabel: "EU 37"},
			"38": {ID: uuid.New(), Code: "38", SizeLabel: "EU 38"},
			"39": {ID: uuid.New(), Code: "39", SizeLabel: "EU 39"},
		},
		templates: map[string]*models.SizeTemplate{},
	}
}

func (f *fakeCatalog) FindCategoryByCode(ctx context.Context, code string) (*models.Category, error) {
	if c, ok := f.categories[code]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) FindBrandByCode(ctx context.Context, code string) (*models.Brand, error) {
	if b, ok := f.brands[code]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) FindColorByCode(ctx context.Context, code string) (*models.Color, error) {
	if c, ok := f.colors[code]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) FindSizeByCode(ctx context.Context, code string) (*models.Size, error) {
	if s, ok := f.sizes[code]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) FindSizeTemplateByCode(ctx context.Context, code string) (*models.SizeTemplate, error) {
	if t, ok := f.templates[code]; ok {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

// fakeProducts is an in-memory product store keyed by code
type fakeProducts struct {
	drafts    map[string]*repository.ProductDraft
	order     []string
	createErr map[string]error
	panicOn   string
	// existsLies makes ProductCodeExists report false so the store's
	// uniqueness check is the one that fires
	existsLies bool
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		drafts:    map[string]*repository.ProductDraft{},
		createErr: map[string]error{},
	}
}

func (f *fakeProducts) ProductCodeExists(ctx context.Context, code string) (bool, error) {
	if f.existsLies {
		return false, nil
	}
	_, ok := f.drafts[code]
	return ok, nil
}

func (f *fakeProducts) CreateProduct(ctx context.Context, draft *repository.ProductDraft) error {
	code := draft.Product.Code
	if code == f.panicOn {
		panic("boom")
	}
	if err := f.createErr[code]; err != nil {
		return err
	}
	if _, ok := f.drafts[code]; ok {
		return repository.ErrDuplicateCode
	}
	if draft.Product.ID == uuid.Nil {
		draft.Product.ID = uuid.New()
	}
	f.drafts[code] = draft
	f.order = append(f.order, code)
	return nil
}

func (f *fakeProducts) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for _, d := range f.drafts {
		if d.Product.ID == id {
			return d.Product, nil
		}
	}
	return nil, repository.ErrNotFound
}

// memoryImageStore records saved images
type memoryImageStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{saved: map[string][]byte{}}
}

func (m *memoryImageStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[name] = data
	return "https://cdn.test/uploads/products/" + name, nil
}

// fakeDiscounts returns fixed discounts regardless of time
type fakeDiscounts struct {
	byProduct map[uuid.UUID]decimal.Decimal
	err       error
}

func (f *fakeDiscounts) ActiveDiscounts(ctx context.Context, ids []uuid.UUID, at time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[uuid.UUID]decimal.Decimal{}
	for _, id := range ids {
		if d, ok := f.byProduct[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store down")

// buildWorkbook writes rows (header first) to the first sheet of a new workbook
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

// buildZip packs the given name -> content entries into an archive
func buildZip(t *testing.T, entries map[string]string, dirs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, dir := range dirs {
		_, err := w.Create(dir)
		require.NoError(t, err)
	}
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fmt.Fprint(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
