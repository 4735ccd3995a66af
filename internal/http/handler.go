package http

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, domain.Identity, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, search string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Recommendations(ctx context.Context, productID string) ([]*domain.Product, error)
}

type CartService interface {
	AddToCart(ctx context.Context, identity domain.Identity, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, identity domain.Identity, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, identity domain.Identity, productID string) error
	ViewCart(ctx context.Context, identity domain.Identity) (*domain.CartView, error)
}

type OrderService interface {
	CheckoutPreview(ctx context.Context, identity domain.Identity) (*domain.CartView, error)
	ConfirmOrder(ctx context.Context, identity domain.Identity, details domain.ShippingDetails) (*domain.Order, error)
	ListOrders(ctx context.Context, identity domain.Identity) ([]*domain.Order, error)
}

type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type Handler struct {
	auth    AuthService
	catalog CatalogService
	cart    CartService
	orders  OrderService
	views   *Renderer
	log     *logger.Logger
	cookie  CookieConfig
}

func NewHandler(
	auth AuthService,
	catalog CatalogService,
	cart CartService,
	orders OrderService,
	views *Renderer,
	log *logger.Logger,
	cookie CookieConfig,
) *Handler {
	return &Handler{
		auth:    auth,
		catalog: catalog,
		cart:    cart,
		orders:  orders,
		views:   views,
		log:     log,
		cookie:  cookie,
	}
}
