package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/service"
)

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, "register", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Formulario inválido")
		return
	}
	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")

	err := h.auth.Register(r.Context(), name, email, r.PostForm.Get("password"))
	if err != nil {
		form := map[string]string{"name": name, "email": email}
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			h.views.render(w, r, http.StatusOK, "register", &pageData{Error: "El correo ya está registrado", Form: form})
		case errors.Is(err, service.ErrInvalidRegistration):
			h.views.render(w, r, http.StatusOK, "register", &pageData{Error: "Nombre, correo y contraseña son obligatorios", Form: form})
		default:
			h.fail(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, "login", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Formulario inválido")
		return
	}
	email := r.PostForm.Get("email")

	token, _, err := h.auth.Login(r.Context(), email, r.PostForm.Get("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.views.render(w, r, http.StatusOK, "login", &pageData{
			Error: "Usuario o contraseña incorrectos",
			Form:  map[string]string{"email": email},
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		h.log.WithContext(r.Context()).Warn("failed to delete session", "error", err)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
