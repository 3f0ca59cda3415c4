// Package events publishes product sync notifications to a Redis stream so
// downstream consumers (site refresh, alerting) can react without polling
// the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akikodev/deals-scraper/internal/models"
)

type EventType string

const EventTypeProductSynced EventType = "PRODUCT_SYNCED"

// ProductSyncedPayload is the wire form of one sync notification.
type ProductSyncedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ASIN      string    `json:"asin"`
	Source    string    `json:"source,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Price     *string   `json:"price,omitempty"`
}

type Publisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewPublisher(addr, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishProductSynced emits one event for a synced record. Failures are
// returned for logging only; a lost event never fails the sync that caused
// it.
func (p *Publisher) PublishProductSynced(ctx context.Context, rec models.ProductRecord) error {
	payload := ProductSyncedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeProductSynced),
		Timestamp: time.Now().UTC(),
		ASIN:      rec.ASIN,
		Source:    rec.Source,
		Title:     rec.Title,
		Price:     rec.Price,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event for %s: %w", rec.ASIN, err)
	}

	p.logger.Debug("published event", "asin", rec.ASIN, "event_id", payload.EventID)
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
