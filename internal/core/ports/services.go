package ports

import (
	"context"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// EventPublisher announces location writes and order status changes.
type EventPublisher interface {
	PublishLocationEvent(ctx context.Context, event *domain.LocationEvent) error
	PublishOrderStatus(ctx context.Context, event *domain.OrderStatusEvent) error
}

// EventSubscriber consumes the events of EventPublisher, durably.
type EventSubscriber interface {
	SubscribeLocationEvents(ctx context.Context, handler func(ctx context.Context, event *domain.LocationEvent) error) error
	SubscribeOrderStatus(ctx context.Context, handler func(ctx context.Context, event *domain.OrderStatusEvent) error) error
}

// CacheService backs the map dashboard cache. Delete removes all keys at
// once so an entity's pins and GeoJSON are invalidated together.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, keys ...string) error
}

// WorkflowStarter hands purchase order creation to the workflow engine.
// The returned run ID is reported to the caller with 202 Accepted.
type WorkflowStarter interface {
	StartPurchase(ctx context.Context, orderID int64, actor string) (runID string, err error)
}
