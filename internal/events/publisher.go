package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Mariosyian/marketplace/internal/domain"
)

const purchaseTopic = "purchases"

// PurchaseEvent is published after a successful checkout.
type PurchaseEvent struct {
	InvoiceID   string            `json:"invoice_id"`
	Items       []domain.LineItem `json:"items"`
	ItemTotal   float64           `json:"item_total"`
	Shipping    float64           `json:"shipping"`
	OrderTotal  float64           `json:"order_total"`
	Currency    string            `json:"currency"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Publisher writes purchase events to Kafka. With no brokers configured it
// is disabled and every publish is a no-op, so the storefront runs fine
// without a broker.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  purchaseTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) PublishPurchase(ctx context.Context, event PurchaseEvent) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.InvoiceID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("purchase.completed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish purchase event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
