package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainer struct {
	loads   atomic.Int32
	closed  atomic.Bool
	loadErr error
	clock   Clock
}

func (f *fakeContainer) Load(ctx context.Context) error {
	f.loads.Add(1)
	return f.loadErr
}

func (f *fakeContainer) Close() { f.closed.Store(true) }

func (f *fakeContainer) LastUsed() time.Time { return f.clock.LastUsed() }

func newTestRegistry(loadErr error) (*Registry[*fakeContainer], *[]*fakeContainer) {
	built := &[]*fakeContainer{}
	r := NewRegistry("test", time.Minute, func(gateway.Identity) *fakeContainer {
		f := &fakeContainer{loadErr: loadErr}
		f.clock.Touch()
		*built = append(*built, f)
		return f
	})
	return r, built
}

func TestRegistry_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadsOncePerIdentity", func(t *testing.T) {
		r, built := newTestRegistry(nil)

		a, err := r.Get(ctx, gateway.Identity{SessionKey: "s1"})
		require.NoError(t, err)
		again, err := r.Get(ctx, gateway.Identity{SessionKey: "s1"})
		require.NoError(t, err)
		_, err = r.Get(ctx, gateway.Identity{UserID: 1})
		require.NoError(t, err)

		assert.Same(t, a, again)
		assert.Equal(t, int32(1), a.loads.Load())
		assert.Len(t, *built, 2)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("LoadFailureStillReturnsContainer", func(t *testing.T) {
		r, _ := newTestRegistry(apperr.Remote(errors.New("down")))

		c, err := r.Get(ctx, gateway.Identity{UserID: 3})
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("ZeroIdentity", func(t *testing.T) {
		r, built := newTestRegistry(nil)

		_, err := r.Get(ctx, gateway.Identity{})
		assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)
		assert.Empty(t, *built)
	})
}

func TestRegistry_DropAndSweep(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(nil)

	a, _ := r.Get(ctx, gateway.Identity{SessionKey: "a"})
	b, _ := r.Get(ctx, gateway.Identity{SessionKey: "b"})

	r.Drop(gateway.Identity{SessionKey: "a"})
	assert.True(t, a.closed.Load())
	assert.Equal(t, 1, r.Len())

	assert.Zero(t, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.True(t, b.closed.Load())
	assert.Zero(t, r.Len())

	// a fresh container is built after eviction
	b2, _ := r.Get(ctx, gateway.Identity{SessionKey: "b"})
	assert.NotSame(t, b, b2)
}

func TestRegistry_SweepSkipsJustHandedOut(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(nil)

	c, err := r.Get(ctx, gateway.Identity{UserID: 4})
	require.NoError(t, err)
	c.clock.last.Store(time.Now().Add(-time.Hour).UnixNano())

	again, err := r.Get(ctx, gateway.Identity{UserID: 4})
	require.NoError(t, err)
	require.Same(t, c, again)

	assert.Zero(t, r.Sweep(time.Now()))
	assert.False(t, c.closed.Load())
	assert.Equal(t, 1, r.Len())

	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.True(t, c.closed.Load())
}

func TestRegistry_Close(t *testing.T) {
	r, built := newTestRegistry(nil)
	for _, key := range []string{"x", "y", "z"} {
		_, err := r.Get(context.Background(), gateway.Identity{SessionKey: key})
		require.NoError(t, err)
	}

	r.Close()
	assert.Zero(t, r.Len())
	for _, f := range *built {
		assert.True(t, f.closed.Load())
	}
}

func TestNotifier(t *testing.T) {
	t.Run("LatestWins", func(t *testing.T) {
		var n Notifier[int]
		ch, cancel := n.Subscribe(0)
		defer cancel()

		for i := 1; i <= 5; i++ {
			n.Publish(i)
		}
		assert.Equal(t, 5, <-ch)

		select {
		case v := <-ch:
			t.Fatalf("unexpected pending value %d", v)
		default:
		}
	})

	t.Run("CancelClosesChannel", func(t *testing.T) {
		var n Notifier[string]
		ch, cancel := n.Subscribe("init")
		assert.Equal(t, "init", <-ch)

		cancel()
		cancel()
		_, ok := <-ch
		assert.False(t, ok)
		n.Publish("dropped")
	})

	t.Run("CloseEndsSubscribers", func(t *testing.T) {
		var n Notifier[int]
		ch, _ := n.Subscribe(1)
		n.Close()

		assert.Equal(t, 1, <-ch)
		_, ok := <-ch
		assert.False(t, ok)

		late, _ := n.Subscribe(2)
		_, ok = <-late
		assert.False(t, ok)
	})
}
