package cart

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCart(t *testing.T, repo *memRepo) *Container {
	t.Helper()
	c := NewContainer(owner, repo, testCatalog())
	t.Cleanup(c.Close)
	return c
}

func TestContainer_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newMemRepo(CartItem{ID: "l1", ProductID: "mug", Quantity: 2, Price: decimal.NewFromInt(8), Product: ProductSnapshot{Stock: 20}})
		c := newCart(t, repo)

		require.NoError(t, c.Load(ctx))
		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, StatusConfirmed, items[0].Status)
		assert.Equal(t, 2, c.TotalItems())
		assert.True(t, decimal.NewFromInt(16).Equal(c.TotalPrice()))
	})

	t.Run("ErrorEmptiesAndFlags", func(t *testing.T) {
		repo := newMemRepo(CartItem{ID: "l1", ProductID: "mug", Quantity: 2, Product: ProductSnapshot{Stock: 20}})
		c := newCart(t, repo)
		require.NoError(t, c.Load(ctx))

		repo.listErr = errStoreDown
		err := c.Load(ctx)

		assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
		snap := c.Snapshot()
		assert.Empty(t, snap.Items)
		assert.NotEmpty(t, snap.Error)
		assert.Zero(t, snap.TotalItems)
	})
}

func TestContainer_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("NewLine", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)

		res, err := c.Add(ctx, "tote", 2)
		require.NoError(t, err)
		assert.False(t, res.Clamped)
		require.NotNil(t, res.Item)
		assert.Equal(t, StatusConfirmed, res.Item.Status)
		assert.Equal(t, "Canvas Tote", res.Item.Product.Name)
		assert.Equal(t, "tote.jpg", res.Item.Product.Image)
		assert.NotEmpty(t, res.Item.ID)

		q, ok := repo.quantity("tote")
		assert.True(t, ok)
		assert.Equal(t, 2, q)
	})

	t.Run("IncrementsExisting", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)

		first, err := c.Add(ctx, "mug", 1)
		require.NoError(t, err)
		second, err := c.Add(ctx, "mug", 3)
		require.NoError(t, err)

		assert.Equal(t, first.Item.ID, second.Item.ID)
		assert.Equal(t, 4, second.Item.Quantity)
		assert.Len(t, c.Items(), 1)
	})

	t.Run("ClampsToStockWithWarning", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)

		res, err := c.Add(ctx, "tote", 10)
		require.NoError(t, err)
		assert.True(t, res.Clamped)
		assert.Equal(t, 5, res.Item.Quantity)
		assert.NotEmpty(t, res.Warning)
		assert.Equal(t, res.Warning, c.Snapshot().Warning)

		res, err = c.Add(ctx, "tote", 1)
		require.NoError(t, err)
		assert.True(t, res.Clamped)
		assert.Equal(t, 5, res.Item.Quantity)
	})

	t.Run("GatewayFailureRollsBack", func(t *testing.T) {
		repo := newMemRepo()
		repo.setHook(func(op string) error { return errStoreDown })
		c := newCart(t, repo)

		_, err := c.Add(ctx, "tote", 1)

		assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
		assert.Empty(t, c.Items())
		assert.NotEmpty(t, c.Snapshot().Error)
	})

	t.Run("FailedIncrementKeepsConfirmed", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)
		_, err := c.Add(ctx, "mug", 2)
		require.NoError(t, err)

		repo.setHook(func(op string) error { return errStoreDown })
		_, err = c.Add(ctx, "mug", 5)

		assert.Error(t, err)
		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, StatusConfirmed, items[0].Status)
	})

	t.Run("Rejections", func(t *testing.T) {
		c := newCart(t, newMemRepo())

		_, err := c.Add(ctx, "mug", 0)
		assert.ErrorIs(t, err, apperr.ErrValidationFailed)

		_, err = c.Add(ctx, "ghost", 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = c.Add(ctx, "old", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)

		_, err = c.Add(ctx, "poster", 1)
		assert.ErrorIs(t, err, ErrOutOfStock)

		assert.Empty(t, c.Items())
	})
}

func TestContainer_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := newCart(t, repo)

	res, err := c.Add(ctx, "tote", 1)
	require.NoError(t, err)
	id := res.Item.ID

	res, err = c.UpdateQuantity(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Item.Quantity)
	assert.Empty(t, c.Snapshot().Warning)

	res, err = c.UpdateQuantity(ctx, id, 99)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, 5, res.Item.Quantity)

	_, err = c.UpdateQuantity(ctx, "nope", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	res, err = c.UpdateQuantity(ctx, id, 0)
	require.NoError(t, err)
	assert.Nil(t, res.Item)
	assert.Empty(t, c.Items())
	_, ok := repo.quantity("tote")
	assert.False(t, ok)
}

func TestContainer_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)
		res, err := c.Add(ctx, "mug", 1)
		require.NoError(t, err)

		require.NoError(t, c.Remove(ctx, res.Item.ID))
		assert.Empty(t, c.Items())
		assert.ErrorIs(t, c.Remove(ctx, res.Item.ID), ErrItemNotFound)
	})

	t.Run("FailureRestoresLine", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)
		res, err := c.Add(ctx, "mug", 2)
		require.NoError(t, err)

		repo.setHook(func(op string) error { return errStoreDown })
		err = c.Remove(ctx, res.Item.ID)

		assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	})
}

func TestContainer_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)
		_, _ = c.Add(ctx, "mug", 1)
		_, _ = c.Add(ctx, "tote", 1)

		require.NoError(t, c.Clear(ctx))
		assert.Empty(t, c.Items())
		assert.Zero(t, c.TotalItems())
		assert.Contains(t, repo.log(), "clear")
	})

	t.Run("FailureRestoresLines", func(t *testing.T) {
		repo := newMemRepo()
		c := newCart(t, repo)
		_, _ = c.Add(ctx, "mug", 1)
		_, _ = c.Add(ctx, "tote", 2)

		repo.setHook(func(op string) error {
			if op == "clear" {
				return errStoreDown
			}
			return nil
		})
		err := c.Clear(ctx)

		assert.Error(t, err)
		assert.Equal(t, 3, c.TotalItems())
		assert.NotEmpty(t, c.Snapshot().Error)
	})
}

// Totals are always the sum over current lines, whatever the sequence.
func TestContainer_TotalsMatchLines(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	products := []string{"tote", "mug"}

	repo := newMemRepo()
	c := newCart(t, repo)

	for i := 0; i < 200; i++ {
		failing := rng.Intn(5) == 0
		repo.setHook(func(op string) error {
			if failing {
				return errStoreDown
			}
			return nil
		})

		items := c.Items()
		switch op := rng.Intn(3); {
		case op == 0 || len(items) == 0:
			_, _ = c.Add(ctx, products[rng.Intn(len(products))], rng.Intn(4)+1)
		case op == 1:
			_, _ = c.UpdateQuantity(ctx, items[rng.Intn(len(items))].ID, rng.Intn(8)-1)
		default:
			_ = c.Remove(ctx, items[rng.Intn(len(items))].ID)
		}

		snap := c.Snapshot()
		wantItems, wantPrice := 0, decimal.Zero
		for _, it := range snap.Items {
			assert.GreaterOrEqual(t, it.Quantity, 1)
			assert.LessOrEqual(t, it.Quantity, it.Product.Stock)
			wantItems += it.Quantity
			wantPrice = wantPrice.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		require.Equal(t, wantItems, snap.TotalItems, "step %d", i)
		require.True(t, wantPrice.Equal(snap.TotalPrice), "step %d", i)
	}
}

func TestContainer_SupersedesQueuedWrites(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := newCart(t, repo)

	res, err := c.Add(ctx, "mug", 1)
	require.NoError(t, err)
	id := res.Item.ID

	started := make(chan struct{})
	release := make(chan struct{})
	repo.setHook(func(op string) error {
		if op == "upsert:mug:2" {
			close(started)
			<-release
		}
		return nil
	})

	done := make(chan error, 3)
	go func() { _, err := c.UpdateQuantity(ctx, id, 2); done <- err }()
	<-started

	go func() { _, err := c.UpdateQuantity(ctx, id, 3); done <- err }()
	require.Eventually(t, func() bool { return c.Items()[0].Quantity == 3 }, time.Second, time.Millisecond)

	go func() { _, err := c.UpdateQuantity(ctx, id, 4); done <- err }()
	require.Eventually(t, func() bool { return c.Items()[0].Quantity == 4 }, time.Second, time.Millisecond)

	close(release)
	for i := 0; i < 3; i++ {
		assert.NoError(t, <-done)
	}

	// the write for 3 was overtaken while queued and never reached the store
	assert.Equal(t, []string{"upsert:mug:1", "upsert:mug:2", "upsert:mug:4"}, repo.log())
	items := c.Items()
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, StatusConfirmed, items[0].Status)
}

func TestContainer_StaleFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := newCart(t, repo)

	res, err := c.Add(ctx, "mug", 1)
	require.NoError(t, err)
	id := res.Item.ID

	started := make(chan struct{})
	release := make(chan struct{})
	repo.setHook(func(op string) error {
		if op == "upsert:mug:2" {
			close(started)
			<-release
			return errStoreDown
		}
		return nil
	})

	first := make(chan error, 1)
	go func() { _, err := c.UpdateQuantity(ctx, id, 2); first <- err }()
	<-started

	second := make(chan error, 1)
	go func() { _, err := c.UpdateQuantity(ctx, id, 5); second <- err }()
	require.Eventually(t, func() bool { return c.Items()[0].Quantity == 5 }, time.Second, time.Millisecond)

	close(release)
	assert.Error(t, <-first)
	assert.NoError(t, <-second)

	items := c.Items()
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, StatusConfirmed, items[0].Status)
	q, _ := repo.quantity("mug")
	assert.Equal(t, 5, q)
}

func TestContainer_CloseDiscardsLateResults(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewContainer(owner, repo, testCatalog())

	started := make(chan struct{})
	release := make(chan struct{})
	repo.setHook(func(op string) error {
		close(started)
		<-release
		return errStoreDown
	})

	updates, cancel := c.Subscribe()
	defer cancel()

	done := make(chan error, 1)
	go func() { _, err := c.Add(ctx, "mug", 1); done <- err }()
	<-started

	c.Close()
	before := c.Items()
	close(release)
	assert.Error(t, <-done)

	// no rollback was applied after teardown
	assert.Equal(t, before, c.Items())
	assert.Len(t, before, 1)

	// drain whatever was buffered; the channel must be closed
	for range updates {
	}

	_, err := c.Add(ctx, "tote", 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestContainer_LoadDiscardsEarlierWrites(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := newCart(t, repo)

	started := make(chan struct{})
	release := make(chan struct{})
	repo.setHook(func(op string) error {
		if op == "upsert:mug:1" {
			close(started)
			<-release
			return errStoreDown
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { _, err := c.Add(ctx, "mug", 1); done <- err }()
	<-started

	repo.mu.Lock()
	repo.rows["tote"] = CartItem{ID: "srv", ProductID: "tote", Quantity: 2, Product: ProductSnapshot{Stock: 5}}
	repo.mu.Unlock()
	require.NoError(t, c.Load(ctx))

	close(release)
	assert.Error(t, <-done)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "srv", items[0].ID)
	assert.Empty(t, c.Snapshot().Error)
}

func TestContainer_SubscribeLatestWins(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, newMemRepo())

	updates, cancel := c.Subscribe()
	initial := <-updates
	assert.Empty(t, initial.Items)

	// nobody reads while these run; the writer must not block
	for i := 0; i < 4; i++ {
		_, err := c.Add(ctx, "mug", 1)
		require.NoError(t, err)
	}

	latest := <-updates
	assert.Equal(t, 4, latest.TotalItems)
	assert.Equal(t, StatusConfirmed, latest.Items[0].Status)

	cancel()
	_, ok := <-updates
	assert.False(t, ok)
}

func TestContainer_DifferentLinesRunConcurrently(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := newCart(t, repo)

	release := make(chan struct{})
	repo.setHook(func(op string) error {
		if op == "upsert:mug:1" {
			<-release
		}
		return nil
	})

	blocked := make(chan error, 1)
	go func() { _, err := c.Add(ctx, "mug", 1); blocked <- err }()
	require.Eventually(t, func() bool { return len(c.Items()) == 1 }, time.Second, time.Millisecond)

	// tote is not held up by the stalled mug write
	_, err := c.Add(ctx, "tote", 1)
	require.NoError(t, err)

	close(release)
	assert.NoError(t, <-blocked)
	assert.Equal(t, 2, c.TotalItems())
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(CartItem{ID: "l1", ProductID: "mug", Quantity: 1, Product: ProductSnapshot{Stock: 3}})
	reg := NewRegistry(repo, testCatalog(), time.Minute)
	defer reg.Close()

	_, err := reg.Get(ctx, gateway.Identity{})
	assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)

	a, err := reg.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, a.TotalItems())

	b, err := reg.Get(ctx, owner)
	require.NoError(t, err)
	assert.Same(t, a, b)

	other, err := reg.Get(ctx, gateway.Identity{UserID: 7})
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, reg.Len())

	assert.Zero(t, reg.Sweep(time.Now()))
	assert.Equal(t, 2, reg.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, reg.Len())

	_, err = a.Add(ctx, "tote", 1)
	assert.ErrorIs(t, err, ErrClosed)
}
