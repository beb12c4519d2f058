package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/cart"
	"storefront-be/internal/category"
	"storefront-be/internal/checkout"
	"storefront-be/internal/dashboard"
	"storefront-be/internal/gateway"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/kafkax"
	"storefront-be/internal/logger"
	"storefront-be/internal/media"
	"storefront-be/internal/middleware"
	"storefront-be/internal/product"
	"storefront-be/internal/shipping"
	"storefront-be/internal/slideshow"
	"storefront-be/internal/utils"
	"storefront-be/internal/wishlist"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type CartStore interface {
	Get(ctx context.Context, id gateway.Identity) (*cart.Container, error)
	Len() int
}

type WishlistStore interface {
	Get(ctx context.Context, id gateway.Identity) (*wishlist.Container, error)
	Len() int
}

type Uploader interface {
	Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*media.Image, error)
}

type AdminChecker interface {
	RequireAdmin(ctx context.Context) (uint, error)
}

type StatsReporter interface {
	Stats() gateway.Stats
}

// Deps are the services the router dispatches to.
type Deps struct {
	Gateway    StatsReporter
	Events     *kafkax.Producer
	Bus        *invalidate.Bus
	Products   product.Service
	Categories category.Service
	Shipping   shipping.Service
	Slides     slideshow.Service
	Carts      CartStore
	Wishlists  WishlistStore
	Dashboard  dashboard.Service
	Checkout   checkout.Service
	Media      Uploader
	Admin      AdminChecker
	Limiter    *middleware.Limiter

	JWTSecret     string
	CORSOrigin    string
	SecureCookies bool
}

type Handler struct {
	Deps
}

func NewRouter(d Deps) *chi.Mux {
	h := &Handler{Deps: d}
	if h.Limiter == nil {
		h.Limiter = middleware.NewLimiter("")
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware, logger.LoggingMiddleware)
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(middleware.Session(d.SecureCookies), middleware.Auth(d.JWTSecret), h.Limiter.Middleware)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		h.registerCatalog(r)
		h.registerCart(r)
		h.registerWishlist(r)
		r.Get("/dashboard", h.getDashboard)
		r.Post("/checkout", h.postCheckout)
		r.Route("/admin", h.registerAdmin)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.Gateway != nil {
		body["gateway"] = h.Gateway.Stats()
	}
	if utils.IsInternalRequest(r.Context()) {
		body["events"] = h.Events.Stats()
		if h.Carts != nil {
			body["carts"] = h.Carts.Len()
		}
		if h.Wishlists != nil {
			body["wishlists"] = h.Wishlists.Len()
		}
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

var errBadJSON = errors.New("invalid json body")

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadJSON
	}
	return nil
}

// writeError maps an error kind to its status. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadJSON) {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := apperr.HTTPStatus(err)
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "http"),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)

	var conflict *checkout.StockConflictError
	switch {
	case errors.As(err, &conflict):
		utils.WriteJSON(w, status, map[string]any{"error": err.Error(), "conflicts": conflict.Conflicts})
		return
	case status == http.StatusInternalServerError:
		log.Error("unhandled error", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", status)
		return
	case status == http.StatusServiceUnavailable:
		log.Warn("upstream unavailable", zap.Error(err))
	}
	utils.WriteJSONError(w, err.Error(), status)
}
