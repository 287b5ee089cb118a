package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type EventPublisher interface {
	PublishInventoryEvent(ctx context.Context, event domain.InventoryEvent) error
	Close() error
}
