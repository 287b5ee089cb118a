package messaging

import (
	"context"
	"log"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// LogPublisher writes inventory events to the process log. The server uses
// it when no Kafka brokers are configured.
type LogPublisher struct{}

var _ port.EventPublisher = LogPublisher{}

func (LogPublisher) PublishInventoryEvent(ctx context.Context, event domain.InventoryEvent) error {
	log.Printf("event %s: %s item=%d quantity=%d delta=%d", event.ID, event.Type, event.ItemID, event.Quantity, event.Delta)
	return nil
}

func (LogPublisher) Close() error {
	return nil
}
