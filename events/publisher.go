package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meethahouse/dessert-api/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue       = "kitchen_orders"
	EventOrderCreated  = "order.created"
	publishTimeout     = 5 * time.Second
	orderEventMimeType = "application/json"
)

// OrderPublisher announces new orders to the kitchen.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
}

// OrderEvent is the message body placed on the kitchen queue.
type OrderEvent struct {
	Type          string    `json:"type"`
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	DessertID     string    `json:"dessert_id"`
	DessertName   string    `json:"dessert_name"`
	Quantity      int       `json:"quantity"`
	TotalAmount   int       `json:"total_amount"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewOrderEvent omits buyer name and phone; the kitchen only needs the line.
func NewOrderEvent(order models.Order) OrderEvent {
	return OrderEvent{
		Type:          EventOrderCreated,
		ID:            order.ID,
		OrderID:       order.OrderID,
		DessertID:     order.DessertID,
		DessertName:   order.DessertName,
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount,
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt,
	}
}

type Publisher struct {
	pool      *ChannelPool
	queueName string
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{pool: pool, queueName: queueName}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	body, err := json.Marshal(NewOrderEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ch, err := p.pool.Get()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.Put(ch)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  orderEventMimeType,
		Type:         EventOrderCreated,
		MessageId:    order.ID,
		Timestamp:    order.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.OrderID, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.pool.Close()
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderCreated(context.Context, models.Order) error { return nil }
