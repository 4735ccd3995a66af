package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"index",
	"register",
	"login",
	"product",
	"cart",
	"checkout",
	"order_confirmation",
	"orders",
	"error",
}

type pageData struct {
	User     *domain.Identity
	Search   string
	Error    string
	Year     int
	Form     map[string]string
	Products []*domain.Product
	Product  *domain.Product
	Cart     *domain.CartView
	Order    *domain.Order
	Orders   []*domain.Order
}

// Renderer holds one template set per page, each combined with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	log   *logger.Logger
}

func NewRenderer(log *logger.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), log: log}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (v *Renderer) render(w http.ResponseWriter, req *http.Request, status int, page string, data *pageData) {
	t, ok := v.pages[page]
	if !ok {
		v.log.WithContext(req.Context()).Error("unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &pageData{}
	}
	if identity, ok := identityFromContext(req.Context()); ok {
		data.User = &identity
	}
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		v.log.WithContext(req.Context()).Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
