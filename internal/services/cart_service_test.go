package services

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
)

type memoryCartStore struct {
	carts map[string]*models.Cart
}

func (m *memoryCartStore) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	if c, ok := m.carts[cartID]; ok {
		copied := *c
		copied.Items = append([]models.CartItem(nil), c.Items...)
		return &copied, nil
	}
	return &models.Cart{ID: cartID, Items: []models.CartItem{}}, nil
}

func (m *memoryCartStore) Save(ctx context.Context, cart *models.Cart) error {
	m.carts[cart.ID] = cart
	return nil
}

func (m *memoryCartStore) Delete(ctx context.Context, cartID string) error {
	delete(m.carts, cartID)
	return nil
}

type memoryCatalogProducts struct {
	byCode map[string]*models.Product
}

func (m *memoryCatalogProducts) GetProductByCode(ctx context.Context, code string, activeOnly bool) (*models.Product, error) {
	p, ok := m.byCode[code]
	if !ok || (activeOnly && !p.IsActive) {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memoryCatalogProducts) GetProductsByCodes(ctx context.Context, codes []string) ([]models.Product, error) {
	var out []models.Product
	seen := map[string]bool{}
	for _, code := range codes {
		if p, ok := m.byCode[code]; ok && !seen[code] {
			seen[code] = true
			out = append(out, *p)
		}
	}
	return out, nil
}

type cartFixture struct {
	svc      *CartService
	carts    *memoryCartStore
	products *memoryCatalogProducts
	runner   *models.Product
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	red := &models.Color{ID: uuid.New(), Code: "RED", Name: "Red"}
	size38 := &models.Size{ID: uuid.New(), Code: "38", SizeLabel: "EU 38"}

	runner := &models.Product{
		ID:       uuid.New(),
		Code:     "PRD-1",
		Name:     "Runner",
		Price:    decimal.RequireFromString("100000"),
		IsActive: true,
		Colors:   []models.ProductColor{{ColorID: red.ID, Color: red}},
		Sizes:    []models.ProductSize{{SizeID: size38.ID, Size: size38}},
	}
	flat := &models.Product{
		ID:       uuid.New(),
		Code:     "PRD-2",
		Name:     "Flat",
		Price:    decimal.RequireFromString("50000"),
		IsActive: true,
	}

	products := &memoryCatalogProducts{byCode: map[string]*models.Product{
		runner.Code: runner,
		flat.Code:   flat,
	}}
	carts := &memoryCartStore{carts: map[string]*models.Cart{}}
	pricing := NewPricingService(&fakeDiscounts{byProduct: map[uuid.UUID]decimal.Decimal{
		runner.ID: decimal.NewFromInt(10),
	}})

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewCartService(carts, products, pricing, nil, nil, CartConfig{
		Currency:            "IDR",
		StoreWhatsAppNumber: "+62 812-3456-789",
	}, logger)

	return &cartFixture{svc: svc, carts: carts, products: products, runner: runner}
}

func TestCart_AddMergesSameLine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", ColorCode: "RED", SizeCode: "38", Quantity: 1})
	require.NoError(t, err)
	cart, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", ColorCode: "RED", SizeCode: "38", Quantity: 2})
	require.NoError(t, err)
	cart, err = f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-2", Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "Red", cart.Lines[0].ColorName)
	assert.Equal(t, "EU 38", cart.Lines[0].SizeLabel)
	assert.Equal(t, "90000", cart.Lines[0].UnitPrice.String())
	assert.Equal(t, "270000", cart.Lines[0].LineTotal.String())
	assert.Equal(t, "320000", cart.Total.String())
	assert.Equal(t, "IDR", cart.Currency)
}

func TestCart_AddValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   models.AddCartItemRequest
		field string
	}{
		{name: "unknown product", req: models.AddCartItemRequest{ProductCode: "NOPE", Quantity: 1}, field: "productCode"},
		{name: "foreign color", req: models.AddCartItemRequest{ProductCode: "PRD-1", ColorCode: "BLUE", Quantity: 1}, field: "colorCode"},
		{name: "foreign size", req: models.AddCartItemRequest{ProductCode: "PRD-1", SizeCode: "44", Quantity: 1}, field: "sizeCode"},
		{name: "zero quantity", req: models.AddCartItemRequest{ProductCode: "PRD-1", Quantity: 0}, field: "quantity"},
		{name: "too many", req: models.AddCartItemRequest{ProductCode: "PRD-1", Quantity: 100}, field: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			_, err := f.svc.AddItem(context.Background(), "cart-1", &tt.req)
			require.Error(t, err)

			switch e := err.(type) {
			case *ValidationError:
				assert.Equal(t, tt.field, e.Field)
			case *ReferenceNotFoundError:
				assert.Equal(t, tt.field, e.Field)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
			assert.Empty(t, f.carts.carts)
		})
	}
}

func TestCart_InactiveProductRejected(t *testing.T) {
	f := newCartFixture(t)
	f.runner.IsActive = false

	_, err := f.svc.AddItem(context.Background(), "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", Quantity: 1})
	var notFound *ReferenceNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCart_MergeCappedAt99(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-2", Quantity: 60})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-2", Quantity: 40})
	require.Error(t, err)
	assert.Equal(t, 60, f.carts.carts["cart-1"].Items[0].Quantity)
}

func TestCart_InvalidCartID(t *testing.T) {
	f := newCartFixture(t)
	_, err := f.svc.GetCart(context.Background(), "bad id!")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "cartId", validation.Field)
}

func TestCart_RemoveItem(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-2", Quantity: 1})
	require.NoError(t, err)

	cart, err := f.svc.RemoveItem(ctx, "cart-1", 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "PRD-2", cart.Lines[0].ProductCode)

	_, err = f.svc.RemoveItem(ctx, "cart-1", 5)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCart_DeactivatedProductIsUnavailable(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-2", Quantity: 2})
	require.NoError(t, err)

	f.runner.IsActive = false
	cart, err := f.svc.GetCart(ctx, "cart-1")
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.False(t, cart.Lines[0].Available)
	assert.True(t, cart.Lines[1].Available)
	assert.Equal(t, "100000", cart.Total.String())
}

func TestCheckout_BuildsMessageAndClearsCart(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "cart-1", &models.AddCartItemRequest{ProductCode: "PRD-1", ColorCode: "RED", SizeCode: "38", Quantity: 2})
	require.NoError(t, err)

	note := "Leave at the door"
	result, err := f.svc.Checkout(ctx, "cart-1", &models.CheckoutRequest{
		CustomerName: "Sari",
		Phone:        "0812",
		Address:      "Jl. Merdeka 1",
		Note:         &note,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Message, "1. Runner (PRD-1) - Color: Red, Size: EU 38 x2 = IDR 180000.00")
	assert.Contains(t, result.Message, "Total: IDR 180000.00")
	assert.Contains(t, result.Message, "Name: Sari")
	assert.Contains(t, result.Message, "Note: Leave at the door")
	assert.Equal(t, "180000", result.Total.String())

	require.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/628123456789?text="))
	parsed, err := url.Parse(result.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, result.Message, parsed.Query().Get("text"))
	assert.NotContains(t, result.WhatsAppURL, "+")

	assert.Empty(t, f.carts.carts)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCartFixture(t)
	_, err := f.svc.Checkout(context.Background(), "cart-1", &models.CheckoutRequest{CustomerName: "A", Phone: "1", Address: "x"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSalePrice(t *testing.T) {
	tests := []struct {
		price, percent, want string
	}{
		{"100000", "10", "90000"},
		{"99.99", "15", "84.99"},
		{"10", "33.33", "6.67"},
		{"250", "100", "0"},
	}
	for _, tt := range tests {
		got := SalePrice(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.percent))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s - %s%% = %s, want %s", tt.price, tt.percent, got, tt.want)
	}
}
