package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/events"
	"shoestore-service/internal/metrics"
	"shoestore-service/internal/models"
	"shoestore-service/internal/repository"
)

const maxLineQuantity = 99

var (
	cartIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
)

type CartStore interface {
	Get(ctx context.Context, cartID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type CartProducts interface {
	ProductsByCode
	GetProductByCode(ctx context.Context, code string, activeOnly bool) (*models.Product, error)
}

type CartConfig struct {
	Currency            string
	StoreWhatsAppNumber string
}

// CartService keeps shopper carts and turns them into a WhatsApp order message
type CartService struct {
	carts     CartStore
	products  CartProducts
	pricing   *PricingService
	publisher *events.Publisher
	metrics   *metrics.Metrics
	cfg       CartConfig
	logger    *logrus.Entry
}

func NewCartService(
	carts CartStore,
	products CartProducts,
	pricing *PricingService,
	publisher *events.Publisher,
	m *metrics.Metrics,
	cfg CartConfig,
	logger *logrus.Logger,
) *CartService {
	return &CartService{
		carts:     carts,
		products:  products,
		pricing:   pricing,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		logger:    logger.WithField("component", "cart"),
	}
}

func validateCartID(cartID string) error {
	if !cartIDPattern.MatchString(cartID) {
		return invalid("cartId", "cartId must be 1-64 letters, digits, '-' or '_'")
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.PricedCart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

// AddItem adds a product variant to the cart, merging with an identical line
func (s *CartService) AddItem(ctx context.Context, cartID string, req *models.AddCartItemRequest) (*models.PricedCart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	if req.Quantity < 1 || req.Quantity > maxLineQuantity {
		return nil, invalid("quantity", "quantity must be between 1 and %d", maxLineQuantity)
	}

	item := models.CartItem{
		ProductCode: strings.TrimSpace(req.ProductCode),
		ColorCode:   strings.TrimSpace(req.ColorCode),
		SizeCode:    strings.TrimSpace(req.SizeCode),
		Quantity:    req.Quantity,
	}

	product, err := s.products.GetProductByCode(ctx, item.ProductCode, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ReferenceNotFoundError{Kind: "Product", Code: item.ProductCode, Field: "productCode"}
		}
		return nil, err
	}
	if item.ColorCode != "" && colorName(product, item.ColorCode) == "" {
		return nil, invalid("colorCode", "color '%s' is not available for product '%s'", item.ColorCode, product.Code)
	}
	if item.SizeCode != "" && sizeLabel(product, item.SizeCode) == "" {
		return nil, invalid("sizeCode", "size '%s' is not available for product '%s'", item.SizeCode, product.Code)
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].SameLine(item) {
			if cart.Items[i].Quantity+item.Quantity > maxLineQuantity {
				return nil, invalid("quantity", "quantity must be between 1 and %d", maxLineQuantity)
			}
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.price(ctx, cart)
}

// RemoveItem drops the line at index (0-based)
func (s *CartService) RemoveItem(ctx context.Context, cartID string, index int) (*models.PricedCart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cart.Items) {
		return nil, ErrCartItemNotFound
	}
	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.price(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, cartID)
}

// Checkout builds the order message for the available lines, announces it and clears the cart
func (s *CartService) Checkout(ctx context.Context, cartID string, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	available := make([]models.PricedCartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Available {
			available = append(available, line)
		}
	}
	if len(available) == 0 {
		return nil, ErrEmptyCart
	}
	cart.Lines = available

	message := s.orderMessage(cart, req)
	result := &models.CheckoutResult{
		Message:     message,
		WhatsAppURL: WhatsAppURL(s.cfg.StoreWhatsAppNumber, message),
		Total:       cart.Total,
		Currency:    cart.Currency,
	}

	s.publisher.PublishCheckoutRequested(ctx, cart, req)
	s.metrics.Checkout()

	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.WithError(err).WithField("cart_id", cartID).Warn("Failed to clear cart after checkout")
	}
	s.logger.WithFields(logrus.Fields{
		"cart_id": cartID,
		"lines":   len(cart.Lines),
		"total":   cart.Total.StringFixed(2),
	}).Info("Checkout message generated")
	return result, nil
}

// price resolves cart items against the catalog. Lines whose product is gone
// or inactive are kept but marked unavailable and left out of the total.
func (s *CartService) price(ctx context.Context, cart *models.Cart) (*models.PricedCart, error) {
	priced := &models.PricedCart{
		ID:       cart.ID,
		Lines:    make([]models.PricedCartLine, 0, len(cart.Items)),
		Total:    decimal.Zero,
		Currency: s.cfg.Currency,
	}
	if len(cart.Items) == 0 {
		return priced, nil
	}

	codes := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		codes = append(codes, item.ProductCode)
	}
	products, err := s.products.GetProductsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	storefront, err := s.pricing.Storefront(ctx, products)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.StorefrontProduct, len(storefront))
	for _, p := range storefront {
		byCode[p.Code] = p
	}

	for _, item := range cart.Items {
		line := models.PricedCartLine{CartItem: item, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}
		if p, ok := byCode[item.ProductCode]; ok {
			line.Name = p.Name
			line.ColorName = colorName(&p.Product, item.ColorCode)
			line.SizeLabel = sizeLabel(&p.Product, item.SizeCode)
			line.UnitPrice = p.SalePrice
			line.LineTotal = p.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			line.Available = p.IsActive
		}
		if line.Available {
			priced.Total = priced.Total.Add(line.LineTotal)
		}
		priced.Lines = append(priced.Lines, line)
	}
	return priced, nil
}

func (s *CartService) orderMessage(cart *models.PricedCart, req *models.CheckoutRequest) string {
	var b strings.Builder
	b.WriteString("Hello, I would like to order:\n\n")
	for i, line := range cart.Lines {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, line.Name, line.ProductCode)
		var variant []string
		if line.ColorName != "" {
			variant = append(variant, "Color: "+line.ColorName)
		}
		if line.SizeLabel != "" {
			variant = append(variant, "Size: "+line.SizeLabel)
		}
		if len(variant) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(variant, ", "))
		}
		fmt.Fprintf(&b, " x%d = %s %s\n", line.Quantity, cart.Currency, line.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n\n", cart.Currency, cart.Total.StringFixed(2))
	fmt.Fprintf(&b, "Name: %s\nPhone: %s\nAddress: %s", req.CustomerName, req.Phone, req.Address)
	if req.Note != nil && strings.TrimSpace(*req.Note) != "" {
		fmt.Fprintf(&b, "\nNote: %s", strings.TrimSpace(*req.Note))
	}
	return b.String()
}

// WhatsAppURL builds a click-to-chat link carrying message as its text
func WhatsAppURL(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", nonDigits.ReplaceAllString(number, ""), text)
}

func colorName(product *models.Product, code string) string {
	for _, pc := range product.Colors {
		if pc.Color != nil && pc.Color.Code == code {
			return pc.Color.Name
		}
	}
	return ""
}

func sizeLabel(product *models.Product, code string) string {
	for _, ps := range product.Sizes {
		if ps.Size != nil && ps.Size.Code == code {
			return ps.Size.SizeLabel
		}
	}
	return ""
}
