package httpapi

import (
	"net/http"
	"strconv"

	"storefront-be/internal/apperr"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) registerCatalog(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/slideshow", h.listSlides)
	r.Get("/shipping-rules", h.listShippingRules)
	r.Get("/shipping-rules/quote", h.quoteShipping)
}

func listOptions(r *http.Request) product.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return product.ListOptions{
		Page:     page,
		Limit:    limit,
		Category: q.Get("category"),
		Search:   q.Get("q"),
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.Products.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) listSlides(w http.ResponseWriter, r *http.Request) {
	items, err := h.Slides.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) listShippingRules(w http.ResponseWriter, r *http.Request) {
	items, err := h.Shipping.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) quoteShipping(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subtotal, err := decimal.NewFromString(q.Get("subtotal"))
	if err != nil {
		writeError(w, r, apperr.Validation("subtotal must be a decimal"))
		return
	}
	quote, err := h.Shipping.Quote(r.Context(), q.Get("region"), subtotal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}
