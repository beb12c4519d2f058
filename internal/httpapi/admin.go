package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"storefront-be/internal/apperr"
	"storefront-be/internal/category"
	"storefront-be/internal/export"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/media"
	"storefront-be/internal/product"
	"storefront-be/internal/shipping"
	"storefront-be/internal/slideshow"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 12 << 20

var errConfirmRequired = apperr.Validation("delete requires confirm=true")

func (h *Handler) registerAdmin(r chi.Router) {
	r.Get("/products", h.adminListProducts)
	r.Get("/products/export", h.exportProducts)
	r.Post("/products", create(h, h.Products.Create))
	r.Patch("/products/{id}", update(h, h.Products.Update, func(in *product.UpdateProductInput, id string) { in.ID = id }))
	r.Delete("/products/{id}", remove(h, h.Products.Delete))

	r.Post("/categories", create(h, h.Categories.Create))
	r.Patch("/categories/{id}", update(h, h.Categories.Update, func(in *category.UpdateCategoryInput, id string) { in.ID = id }))
	r.Delete("/categories/{id}", remove(h, h.Categories.Delete))

	r.Get("/shipping-rules", list(h.Shipping.AdminList))
	r.Post("/shipping-rules", create(h, h.Shipping.Create))
	r.Patch("/shipping-rules/{id}", update(h, h.Shipping.Update, func(in *shipping.UpdateRuleInput, id string) { in.ID = id }))
	r.Delete("/shipping-rules/{id}", remove(h, h.Shipping.Delete))

	r.Get("/slideshow", list(h.Slides.AdminList))
	r.Post("/slideshow", create(h, h.Slides.Create))
	r.Patch("/slideshow/{id}", update(h, h.Slides.Update, func(in *slideshow.UpdateSlideInput, id string) { in.ID = id }))
	r.Delete("/slideshow/{id}", remove(h, h.Slides.Delete))

	r.Post("/uploads", h.uploadImage)
}

func (h *Handler) publish(ctx context.Context, views []invalidate.View) {
	h.Bus.Publish(ctx, views)
}

func list[T any](fn func(ctx context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, items)
	}
}

func create[In, Out any](h *Handler, fn func(ctx context.Context, in In) (invalidate.Result[Out], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decode(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		res, err := fn(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.publish(r.Context(), res.Invalidated)
		utils.WriteJSON(w, http.StatusCreated, res)
	}
}

func update[In, Out any](h *Handler, fn func(ctx context.Context, in In) (invalidate.Result[Out], error), setID func(*In, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decode(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		setID(&in, chi.URLParam(r, "id"))

		res, err := fn(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.publish(r.Context(), res.Invalidated)
		utils.WriteJSON(w, http.StatusOK, res)
	}
}

// remove requires ?confirm=true before the service is reached.
func remove(h *Handler, fn func(ctx context.Context, id string) (invalidate.Result[string], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !ok {
			writeError(w, r, errConfirmRequired)
			return
		}
		res, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.publish(r.Context(), res.Invalidated)
		utils.WriteJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.Products.AdminList(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.Products(r.Context(), h.Products, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// uploadImage authorizes before reading the body so anonymous callers
// cannot make the server buffer a multipart upload.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Admin.RequireAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, apperr.Validation("multipart form with an image field is required"))
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		writeError(w, r, apperr.Validation("image is required"))
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "products"
	}

	img, err := h.Media.Upload(r.Context(), files[0], folder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, img)
}
