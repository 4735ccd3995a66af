package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	products, err := h.catalog.ListProducts(r.Context(), search)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.views.render(w, r, http.StatusOK, "index", &pageData{Search: search, Products: products})
}

// ProductDetail shows one product with every other product as a recommendation.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	recommended, err := h.catalog.Recommendations(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.views.render(w, r, http.StatusOK, "product", &pageData{Product: product, Products: recommended})
}
