package httpapi

import (
	"net/http"

	"storefront-be/internal/gateway"
	"storefront-be/internal/utils"
	"storefront-be/internal/wishlist"

	"github.com/go-chi/chi/v5"
)

type toggleRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) registerWishlist(r chi.Router) {
	r.Get("/wishlist", h.getWishlist)
	r.Post("/wishlist/toggle", h.toggleWishlist)
	r.Get("/wishlist/{productID}", h.wishlistMembership)
	r.Delete("/wishlist/{productID}", h.removeWishlistItem)
}

func (h *Handler) wishlist(r *http.Request) (*wishlist.Container, error) {
	id, err := gateway.CurrentUser(r.Context())
	if err != nil {
		return nil, err
	}
	return h.Wishlists.Get(r.Context(), id)
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.wishlist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wl.Snapshot())
}

func (h *Handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wl, err := h.wishlist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := wl.Toggle(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) wishlistMembership(w http.ResponseWriter, r *http.Request) {
	wl, err := h.wishlist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pid := chi.URLParam(r, "productID")
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"product_id":  pid,
		"in_wishlist": wl.IsInWishlist(pid),
	})
}

func (h *Handler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	wl, err := h.wishlist(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := wl.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wl.Snapshot())
}
