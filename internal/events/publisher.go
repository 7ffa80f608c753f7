package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shoestore-service/internal/models"
)

// Subjects published by the service
const (
	SubjectProductCreated    = "product.created"
	SubjectImportCompleted   = "product.import.completed"
	SubjectCheckoutRequested = "checkout.requested"
)

// Event is the envelope every message is wrapped in
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type ProductCreatedData struct {
	ProductID string          `json:"productId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"isActive"`
	Origin    string          `json:"origin"`
}

type ImportCompletedData struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Images  int `json:"images"`
}

type CheckoutRequestedData struct {
	CartID       string                  `json:"cartId"`
	CustomerName string                  `json:"customerName"`
	Phone        string                  `json:"phone"`
	Lines        []models.PricedCartLine `json:"lines"`
	Total        decimal.Decimal         `json:"total"`
	Currency     string                  `json:"currency"`
}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher sends domain events over core NATS.
// A nil *Publisher is valid and drops every event.
type Publisher struct {
	conn   conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS at natsURL
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("shoestore-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newPublisher(nc, logger), nil
}

func newPublisher(c conn, logger *logrus.Logger) *Publisher {
	return &Publisher{
		conn:   c,
		logger: logger.WithField("component", "events.publisher"),
	}
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.WithError(err).Warn("Failed to drain NATS connection")
	}
}

// PublishProductCreated announces a product created by hand ("admin") or by the importer ("import")
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product, origin string) {
	if p == nil || product == nil {
		return
	}
	p.publish(ctx, SubjectProductCreated, ProductCreatedData{
		ProductID: product.ID.String(),
		Code:      product.Code,
		Name:      product.Name,
		Price:     product.Price,
		IsActive:  product.IsActive,
		Origin:    origin,
	})
}

func (p *Publisher) PublishImportCompleted(ctx context.Context, results models.ImportResults, images int) {
	if p == nil {
		return
	}
	p.publish(ctx, SubjectImportCompleted, ImportCompletedData{
		Success: results.Success,
		Failed:  results.Failed,
		Images:  images,
	})
}

func (p *Publisher) PublishCheckoutRequested(ctx context.Context, cart *models.PricedCart, req *models.CheckoutRequest) {
	if p == nil || cart == nil || req == nil {
		return
	}
	p.publish(ctx, SubjectCheckoutRequested, CheckoutRequestedData{
		CartID:       cart.ID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Lines:        cart.Lines,
		Total:        cart.Total,
		Currency:     cart.Currency,
	})
}

// publish never fails the caller; errors are only logged
func (p *Publisher) publish(ctx context.Context, subject string, data interface{}) {
	if err := ctx.Err(); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Skipping event, context done")
		return
	}

	payload, err := json.Marshal(Event{
		ID:        uuid.New().String(),
		Type:      subject,
		Source:    "shoestore-service",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
		return
	}
	p.logger.WithField("subject", subject).Debug("Published event")
}
