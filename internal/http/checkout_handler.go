package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
)

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	view, err := h.orders.CheckoutPreview(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, r, http.StatusOK, "checkout", &pageData{Cart: view, Form: map[string]string{"nombre": identity.Name}})
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Formulario inválido")
		return
	}
	details := domain.ShippingDetails{
		RecipientName: r.PostForm.Get("nombre"),
		Address:       r.PostForm.Get("direccion"),
		PaymentMethod: r.PostForm.Get("metodo_pago"),
	}

	order, err := h.orders.ConfirmOrder(r.Context(), identity, details)
	switch {
	case err == nil:
		h.log.WithContext(r.Context()).Info("order confirmed", "order_id", order.ID)
		h.views.render(w, r, http.StatusOK, "order_confirmation", &pageData{Order: order})
	case errors.Is(err, service.ErrEmptyCart):
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	case errors.Is(err, service.ErrCartChanged):
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
	case errors.Is(err, service.ErrMissingShippingDetails):
		view, previewErr := h.orders.CheckoutPreview(r.Context(), identity)
		if previewErr != nil {
			h.fail(w, r, previewErr)
			return
		}
		h.views.render(w, r, http.StatusOK, "checkout", &pageData{
			Error: "Completa nombre, dirección y método de pago",
			Cart:  view,
			Form: map[string]string{
				"nombre":      details.RecipientName,
				"direccion":   details.Address,
				"metodo_pago": details.PaymentMethod,
			},
		})
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())

	orders, err := h.orders.ListOrders(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, r, http.StatusOK, "orders", &pageData{Orders: orders})
}
