package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/service"
)

// fail maps service errors that are not handled in place onto a redirect or an error page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, service.ErrProductNotFound):
		h.views.render(w, r, http.StatusNotFound, "error", &pageData{Error: "Producto no encontrado"})
	case errors.Is(err, service.ErrInvalidQuantity):
		h.views.render(w, r, http.StatusBadRequest, "error", &pageData{Error: "La cantidad debe ser al menos 1"})
	default:
		h.log.WithContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.views.render(w, r, http.StatusInternalServerError, "error", &pageData{Error: "Ocurrió un error inesperado"})
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.views.render(w, r, http.StatusBadRequest, "error", &pageData{Error: msg})
}
