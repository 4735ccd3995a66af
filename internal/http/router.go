package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthReporter reports the last known dependency health.
type HealthReporter interface {
	Report() (bool, map[string]string)
}

type RouterConfig struct {
	RequestTimeout time.Duration
	Health         HealthReporter
	Gatherer       prometheus.Gatherer
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.LoadSession)

		r.Get("/", h.Index)
		r.Get("/register", h.RegisterForm)
		r.Post("/register", h.Register)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.Get("/producto/{id}", h.ProductDetail)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Get("/logout", h.Logout)
			r.Post("/agregar_carrito/{id}", h.AddToCart)
			r.Get("/cart", h.ViewCart)
			r.Post("/update_cart/{id}", h.UpdateCart)
			r.Post("/remove_from_cart/{id}", h.RemoveFromCart)
			r.Get("/checkout", h.Checkout)
			r.Post("/confirm_order", h.ConfirmOrder)
			r.Get("/orders", h.Orders)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

func healthHandler(reporter HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{"status": "ok"}
		if reporter != nil {
			healthy, deps := reporter.Report()
			body["dependencies"] = deps
			if !healthy {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
