package httpapi

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/gateway"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartMutationResponse struct {
	Result cart.MutationResult `json:"result"`
	Cart   cart.Snapshot       `json:"cart"`
}

func (h *Handler) registerCart(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Delete("/cart", h.clearCart)
	r.Post("/cart/refresh", h.refreshCart)
	r.Post("/cart/items", h.addCartItem)
	r.Patch("/cart/items/{id}", h.updateCartItem)
	r.Delete("/cart/items/{id}", h.removeCartItem)
}

func (h *Handler) cart(r *http.Request) (*cart.Container, error) {
	id, err := gateway.CurrentOwner(r.Context())
	if err != nil {
		return nil, err
	}
	return h.Carts.Get(r.Context(), id)
}

// emptyGuestCart reports whether the caller is a guest whose session was
// minted by this request. Such a session has no stored cart.
func emptyGuestCart(r *http.Request) bool {
	_, signedIn := utils.GetUserIDFromContext(r.Context())
	return !signedIn && utils.IsNewSession(r.Context())
}

func writeEmptyCart(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusOK, cart.Snapshot{Items: []cart.CartItem{}})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	if emptyGuestCart(r) {
		writeEmptyCart(w)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) refreshCart(w http.ResponseWriter, r *http.Request) {
	if emptyGuestCart(r) {
		writeEmptyCart(w)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if emptyGuestCart(r) {
		writeEmptyCart(w)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Clear(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := c.Add(r.Context(), req.ProductID, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartMutationResponse{Result: res, Cart: c.Snapshot()})
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := c.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartMutationResponse{Result: res, Cart: c.Snapshot()})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}
