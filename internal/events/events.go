// Package events publishes order lifecycle events. Publishing happens after
// the order transaction commits and never fails the request.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventory-service/internal/domain"
)

const TypeOrderCreated = "order.created"

type OrderCreatedEvent struct {
	EventID     string             `json:"event_id"`
	Type        string             `json:"type"`
	OrderID     int64              `json:"order_id"`
	UserID      int64              `json:"user_id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []domain.OrderItem `json:"items"`
	Status      domain.OrderStatus `json:"status"`
	Timestamp   time.Time          `json:"timestamp"`
	RequestID   string             `json:"request_id,omitempty"`
}

// NewOrderCreated builds the event for a freshly committed order
func NewOrderCreated(order *domain.Order, requestID string) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:     uuid.New().String(),
		Type:        TypeOrderCreated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		Status:      order.Status,
		Timestamp:   time.Now().UTC(),
		RequestID:   requestID,
	}
}

// OrderPublisher delivers order events to downstream consumers
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event. It is used when
// no Kafka brokers are configured.
func NewNopPublisher() OrderPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
