package ports

import (
	"context"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

// ActionDispatcher delivers action requests downstream. Delivery is
// fire-and-forget; an error only means the request could not be handed
// to the transport.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req *domain.ActionRequest) error
}

// LapEventPublisher fans completed laps out to other consumers.
type LapEventPublisher interface {
	PublishLap(ctx context.Context, ev *domain.LapEvent) error
}

// PositionSubscriber delivers position reports in observation order,
// one at a time.
type PositionSubscriber interface {
	SubscribePositions(ctx context.Context, handler func(ctx context.Context, r *domain.PositionReport) error) error
}

// CacheService stores values with expiry. The lap status is only ever
// written here for outside readers; the service never reads it back.
type CacheService interface {
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}
