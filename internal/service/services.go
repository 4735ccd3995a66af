package service

import (
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type Stores struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Cache    cache.ProductCache
	Sessions session.Store
}

type Services struct {
	Auth    *AuthService
	Catalog *CatalogService
	Cart    *CartService
	Orders  *OrderService
}

// NewServices wires the storefront. The product cache only serves catalog
// pages; cart views and checkout read prices from the product store.
func NewServices(st Stores, log *logger.Logger, m *metrics.Metrics) *Services {
	return &Services{
		Auth:    NewAuthService(st.Users, st.Sessions, log, m),
		Catalog: NewCatalogService(st.Products, st.Cache, log),
		Cart:    NewCartService(st.Users, st.Products, log, m),
		Orders:  NewOrderService(st.Users, st.Orders, st.Products, log, m),
	}
}
