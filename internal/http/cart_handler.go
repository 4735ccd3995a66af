package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// formQuantity reads the quantity field. A missing field counts as 1.
func formQuantity(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.PostFormValue("quantity"))
	if raw == "" {
		return 1, true
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return qty, true
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	qty, ok := formQuantity(r)
	if !ok {
		h.badRequest(w, r, "Cantidad inválida")
		return
	}

	if err := h.cart.AddToCart(r.Context(), identity, chi.URLParam(r, "id"), qty); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	view, err := h.cart.ViewCart(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, r, http.StatusOK, "cart", &pageData{Cart: view})
}

// UpdateCart sets a line's quantity. Zero or less removes the line.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	qty, ok := formQuantity(r)
	if !ok {
		h.badRequest(w, r, "Cantidad inválida")
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), identity, chi.URLParam(r, "id"), qty); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	if err := h.cart.RemoveFromCart(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
