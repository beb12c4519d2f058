package invalidate

import (
	"context"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// Sink consumes invalidation signals (view cache, event stream, ...).
type Sink interface {
	Invalidate(ctx context.Context, views []View) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, views []View) error

func (f SinkFunc) Invalidate(ctx context.Context, views []View) error {
	return f(ctx, views)
}

// Bus fans signals out to every sink. A failing sink is logged and does not
// stop the others.
type Bus struct {
	sinks []Sink
}

func NewBus(sinks ...Sink) *Bus {
	b := &Bus{}
	for _, s := range sinks {
		if s != nil {
			b.sinks = append(b.sinks, s)
		}
	}
	return b
}

func (b *Bus) Publish(ctx context.Context, views []View) {
	if b == nil || len(views) == 0 {
		return
	}
	log := logger.FromCtx(ctx).With(zap.Strings("views", Strings(views)))

	for _, s := range b.sinks {
		if err := s.Invalidate(ctx, views); err != nil {
			log.Warn("invalidation sink failed", zap.Error(err))
		}
	}
	log.Debug("views invalidated")
}
