package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/stretchr/testify/require"
)

const validToken = "token-1"

var ana = domain.Identity{UserID: "u1", Name: "Ana", Email: "ana@example.com"}

type mockAuth struct {
	registerErr error
	loginErr    error
	resolveErr  error
	registered  []string
	loggedOut   []string
}

func (m *mockAuth) Register(_ context.Context, name, email, _ string) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	m.registered = append(m.registered, name+"|"+email)
	return nil
}

func (m *mockAuth) Login(_ context.Context, _, _ string) (string, domain.Identity, error) {
	if m.loginErr != nil {
		return "", domain.Identity{}, m.loginErr
	}
	return validToken, ana, nil
}

func (m *mockAuth) Logout(_ context.Context, token string) error {
	m.loggedOut = append(m.loggedOut, token)
	return nil
}

func (m *mockAuth) Resolve(_ context.Context, token string) (domain.Identity, error) {
	if m.resolveErr != nil {
		return domain.Identity{}, m.resolveErr
	}
	if token != validToken {
		return domain.Identity{}, service.ErrUnauthenticated
	}
	return ana, nil
}

type mockCatalog struct {
	products []*domain.Product
	err      error
	search   string
}

func (m *mockCatalog) ListProducts(_ context.Context, search string) ([]*domain.Product, error) {
	m.search = search
	return m.products, m.err
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, service.ErrProductNotFound
}

func (m *mockCatalog) Recommendations(_ context.Context, id string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out, m.err
}

type cartCall struct {
	op        string
	userID    string
	productID string
	quantity  int
}

type mockCart struct {
	calls []cartCall
	view  *domain.CartView
	err   error
}

func (m *mockCart) AddToCart(_ context.Context, identity domain.Identity, productID string, quantity int) error {
	m.calls = append(m.calls, cartCall{"add", identity.UserID, productID, quantity})
	return m.err
}

func (m *mockCart) UpdateQuantity(_ context.Context, identity domain.Identity, productID string, quantity int) error {
	m.calls = append(m.calls, cartCall{"update", identity.UserID, productID, quantity})
	return m.err
}

func (m *mockCart) RemoveFromCart(_ context.Context, identity domain.Identity, productID string) error {
	m.calls = append(m.calls, cartCall{"remove", identity.UserID, productID, 0})
	return m.err
}

func (m *mockCart) ViewCart(context.Context, domain.Identity) (*domain.CartView, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.view == nil {
		return &domain.CartView{}, nil
	}
	return m.view, nil
}

type mockOrders struct {
	view       *domain.CartView
	order      *domain.Order
	confirmErr error
	details    domain.ShippingDetails
	orders     []*domain.Order
}

func (m *mockOrders) CheckoutPreview(context.Context, domain.Identity) (*domain.CartView, error) {
	if m.view == nil {
		return &domain.CartView{}, nil
	}
	return m.view, nil
}

func (m *mockOrders) ConfirmOrder(_ context.Context, _ domain.Identity, details domain.ShippingDetails) (*domain.Order, error) {
	m.details = details
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return m.order, nil
}

func (m *mockOrders) ListOrders(context.Context, domain.Identity) ([]*domain.Order, error) {
	return m.orders, nil
}

type mockHealth struct {
	healthy bool
	deps    map[string]string
}

func (m mockHealth) Report() (bool, map[string]string) {
	return m.healthy, m.deps
}

type fixture struct {
	auth    *mockAuth
	catalog *mockCatalog
	cart    *mockCart
	orders  *mockOrders
	health  mockHealth
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:    &mockAuth{},
		catalog: &mockCatalog{},
		cart:    &mockCart{},
		orders:  &mockOrders{},
		health:  mockHealth{healthy: true, deps: map[string]string{"mongo": "ok"}},
	}

	views, err := NewRenderer(logger.NewNop())
	require.NoError(t, err)

	h := NewHandler(f.auth, f.catalog, f.cart, f.orders, views, logger.NewNop(), CookieConfig{TTL: time.Hour})
	f.router = NewRouter(h, RouterConfig{RequestTimeout: 5 * time.Second, Health: f.health})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func get(path string, authenticated bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: validToken})
	}
	return req
}

func postForm(path string, form url.Values, authenticated bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authenticated {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: validToken})
	}
	return req
}
