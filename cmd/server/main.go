package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/category"
	"storefront-be/internal/checkout"
	"storefront-be/internal/config"
	"storefront-be/internal/dashboard"
	"storefront-be/internal/db"
	"storefront-be/internal/gateway"
	"storefront-be/internal/httpapi"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/kafkax"
	"storefront-be/internal/logger"
	"storefront-be/internal/media"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/shipping"
	"storefront-be/internal/slideshow"
	"storefront-be/internal/user"
	"storefront-be/internal/viewcache"
	"storefront-be/internal/wishlist"

	"go.uber.org/zap"
)

const (
	sweepInterval    = time.Minute
	dashboardTimeout = 3 * time.Second
	eventBuffer      = 256
)

// app holds the long-running pieces that need starting and stopping.
type app struct {
	router    http.Handler
	events    *kafkax.Producer
	carts     *cart.Registry
	wishlists *wishlist.Registry
	limiter   *middleware.Limiter
}

func newApp(ctx context.Context, cfg *config.Config, database *sql.DB) (*app, error) {
	gw := gateway.New(database, cfg.GatewayTimeout)

	var cache *viewcache.Cache
	if rdb := viewcache.Connect(ctx, cfg.RedisAddr); rdb != nil {
		cache = viewcache.New(rdb, cfg.ViewCacheTTL)
	}

	events := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaInvalidationTopic, eventBuffer)
	var sinks []invalidate.Sink
	if cache != nil {
		sinks = append(sinks, cache)
	}
	if events != nil {
		sinks = append(sinks, kafkax.NewInvalidationSink(events, "storefront-be"))
	}
	bus := invalidate.NewBus(sinks...)

	authz := user.NewAuthorizer(user.NewRepository(gw))

	productRepo := product.NewRepository(gw)
	shippingSvc := shipping.NewService(shipping.NewRepository(gw), authz, cache)
	orderRepo := order.NewRepository(gw)

	uploads, err := media.NewCloudinaryService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, authz)
	if err != nil {
		return nil, err
	}

	a := &app{
		events:    events,
		carts:     cart.NewRegistry(cart.NewRepository(gw), productRepo, cfg.SessionIdleTTL),
		wishlists: wishlist.NewRegistry(wishlist.NewRepository(gw), productRepo, cfg.SessionIdleTTL),
		limiter:   middleware.NewLimiter(cfg.InternalSecretKey),
	}
	a.router = httpapi.NewRouter(httpapi.Deps{
		Gateway:    gw,
		Events:     events,
		Bus:        bus,
		Products:   product.NewService(productRepo, authz, cache),
		Categories: category.NewService(category.NewRepository(gw), authz, cache),
		Shipping:   shippingSvc,
		Slides:     slideshow.NewService(slideshow.NewRepository(gw), authz, cache),
		Carts:      a.carts,
		Wishlists:  a.wishlists,
		Dashboard:  dashboard.NewService(orderRepo, dashboardTimeout),
		Checkout:   checkout.NewService(productRepo, shippingSvc, orderRepo),
		Media:      uploads,
		Admin:      authz,
		Limiter:    a.limiter,

		JWTSecret:     cfg.JWTSecret,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.AppEnv == "production",
	})
	return a, nil
}

// start launches the background loops; they stop when ctx is cancelled.
func (a *app) start(ctx context.Context) {
	if a.events != nil {
		a.events.Start(ctx)
	}
	go a.carts.Run(ctx, sweepInterval)
	go a.wishlists.Run(ctx, sweepInterval)
	go a.limiter.Run(ctx)
}

func (a *app) close() {
	a.carts.Close()
	a.wishlists.Close()
	if a.events != nil {
		a.events.Close()
		a.events.WaitClosed()
	}
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	if err := run(cfg); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := newApp(ctx, cfg, database)
	if err != nil {
		return err
	}
	a.start(ctx)
	defer a.close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
