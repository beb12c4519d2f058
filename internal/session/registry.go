package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a container that was torn down.
var ErrClosed = fmt.Errorf("session state closed: %w", apperr.ErrRemoteUnavailable)

// Container is per-identity state held for the lifetime of a session.
type Container interface {
	Load(ctx context.Context) error
	Close()
	LastUsed() time.Time
}

type slot[C Container] struct {
	c    C
	once sync.Once
	// guarded by Registry.mu
	handedOut time.Time
}

func (s *slot[C]) idleSince() time.Time {
	if last := s.c.LastUsed(); last.After(s.handedOut) {
		return last
	}
	return s.handedOut
}

// Registry keeps one container per identity. Containers are built and
// loaded lazily on first use and closed once idle for longer than the TTL.
type Registry[C Container] struct {
	name    string
	idleTTL time.Duration
	build   func(gateway.Identity) C

	mu    sync.Mutex
	slots map[string]*slot[C]
}

func NewRegistry[C Container](name string, idleTTL time.Duration, build func(gateway.Identity) C) *Registry[C] {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry[C]{
		name:    name,
		idleTTL: idleTTL,
		build:   build,
		slots:   make(map[string]*slot[C]),
	}
}

// Get returns the container for id, loading it on first access. A failed
// first load is not returned: the container is flagged and stays usable.
func (r *Registry[C]) Get(ctx context.Context, id gateway.Identity) (C, error) {
	var zero C
	if id.IsZero() {
		return zero, apperr.ErrAuthenticationRequired
	}

	key := id.Key()
	r.mu.Lock()
	s, ok := r.slots[key]
	if !ok {
		s = &slot[C]{c: r.build(id)}
		r.slots[key] = s
	}
	s.handedOut = time.Now()
	r.mu.Unlock()

	s.once.Do(func() {
		if err := s.c.Load(ctx); err != nil {
			logger.FromCtx(ctx).Warn("initial load failed",
				zap.String("registry", r.name),
				zap.String("owner", key),
				zap.Error(err),
			)
		}
	})
	return s.c, nil
}

// Drop closes and forgets the container for id, if any.
func (r *Registry[C]) Drop(id gateway.Identity) {
	r.mu.Lock()
	s, ok := r.slots[id.Key()]
	delete(r.slots, id.Key())
	r.mu.Unlock()

	if ok {
		s.c.Close()
	}
}

func (r *Registry[C]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Sweep closes containers idle since before now-TTL and returns how many
// were removed. A container handed out by Get counts as used at that moment.
func (r *Registry[C]) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	var idle []C
	for key, s := range r.slots {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s.c)
			delete(r.slots, key)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry[C]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				logger.L().Debug("idle session state swept",
					zap.String("registry", r.name),
					zap.Int("closed", n),
				)
			}
		}
	}
}

// Close tears down every container.
func (r *Registry[C]) Close() {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[string]*slot[C])
	r.mu.Unlock()

	for _, s := range slots {
		s.c.Close()
	}
}
