package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Activity event types emitted by the storefront.
const (
	TypeCartReconciled = "storefront.cart.reconciled"
	TypeOrderPlaced    = "storefront.order.placed"
)

// Event is the envelope written to the activity topic.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// CartReconciled records the outcome of pushing the local cart upstream.
type CartReconciled struct {
	CartID      string `json:"cartId"`
	ItemsSynced int    `json:"itemsSynced"`
	ItemsFailed int    `json:"itemsFailed"`
}

// OrderPlaced records a submitted order.
type OrderPlaced struct {
	OrderID       string  `json:"orderId"`
	CartID        string  `json:"cartId"`
	PaymentMethod string  `json:"paymentMethod"`
	Total         float64 `json:"total"`
}

// Publisher emits activity events. Publishing is advisory; callers treat
// failures as log-worthy, never as operation failures.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
	Close() error
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload any) {
	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Events] Failed to marshal %s: %v", eventType, err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: data,
		Time:  event.OccurredAt,
	})
	if err != nil {
		log.Printf("[Events] Failed to publish %s: %v", eventType, err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop discards events; used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) {}
func (Noop) Close() error                         { return nil }
