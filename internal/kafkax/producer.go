package kafkax

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrQueueFull      = errors.New("kafka producer queue full")
	ErrProducerClosed = errors.New("kafka producer closed")
)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues messages in memory and writes them from one goroutine.
// Publish never blocks the caller: a full queue drops the message.
type Producer struct {
	w     MessageWriter
	inbox chan kafka.Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	sent    metrics.Counter
	dropped metrics.Counter
	failed  metrics.Counter
}

// NewProducer returns nil when no brokers are configured.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func NewProducerWithWriter(w MessageWriter, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	return &Producer{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the write loop until ctx is done or Close is called. Queued
// messages are flushed before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.done:
		}
	}()

	go func() {
		defer close(p.done)
		for m := range p.inbox {
			wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := p.w.WriteMessages(wctx, m)
			cancel()
			if err != nil {
				p.failed.Inc()
				logger.L().Warn("kafka write failed",
					zap.String("layer", "kafka"),
					zap.ByteString("key", m.Key),
					zap.Error(err),
				)
				continue
			}
			p.sent.Inc()
		}
		if err := p.w.Close(); err != nil {
			logger.L().Warn("kafka writer close failed", zap.Error(err))
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	default:
		p.dropped.Inc()
		return ErrQueueFull
	}
}

// Close stops accepting messages; the loop drains what is queued.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the write loop has flushed and exited.
func (p *Producer) WaitClosed() {
	<-p.done
}

type Stats struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
}

func (p *Producer) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	return Stats{Sent: p.sent.Load(), Dropped: p.dropped.Load(), Failed: p.failed.Load()}
}
