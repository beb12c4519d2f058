package httpapi

import (
	"net/http"

	"storefront-be/internal/gateway"
	"storefront-be/internal/utils"
)

type checkoutRequest struct {
	Region string `json:"region"`
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	summary, err := h.Dashboard.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) postCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := gateway.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.Carts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.Checkout.Checkout(r.Context(), c, req.Region)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}
