package kafkax

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-be/internal/invalidate"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
)

const EventViewsInvalidated = "ViewsInvalidated"

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type ViewsInvalidatedPayload struct {
	Views []string `json:"views"`
}

func NewEnvelope(eventType, producer, traceID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		TraceID:      traceID,
		Payload:      raw,
	}, nil
}

func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

// InvalidationSink publishes ViewsInvalidated events so other instances can
// drop their cached views.
type InvalidationSink struct {
	p        *Producer
	producer string
}

func NewInvalidationSink(p *Producer, producer string) *InvalidationSink {
	return &InvalidationSink{p: p, producer: producer}
}

func (s *InvalidationSink) Invalidate(ctx context.Context, views []invalidate.View) error {
	if s == nil || s.p == nil {
		return nil
	}
	env, err := NewEnvelope(EventViewsInvalidated, s.producer, logger.RequestIDFrom(ctx),
		ViewsInvalidatedPayload{Views: invalidate.Strings(views)})
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return s.p.Publish([]byte(EventViewsInvalidated), value)
}
