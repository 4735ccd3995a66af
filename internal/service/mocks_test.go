package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/google/uuid"
)

// mockUserRepository keeps users in memory and bumps CartVersion on every cart write
type mockUserRepository struct {
	m     sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) AddCartLine(_ context.Context, userID string, line domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return err
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == line.ProductID {
			u.Cart[i].Quantity += line.Quantity
			u.CartVersion++
			return nil
		}
	}
	u.Cart = append(u.Cart, line)
	u.CartVersion++
	return nil
}

func (m *mockUserRepository) SetCartLineQuantity(_ context.Context, userID, productID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return err
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity = quantity
			u.CartVersion++
		}
	}
	return nil
}

func (m *mockUserRepository) RemoveCartLine(_ context.Context, userID, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return err
	}
	kept := u.Cart[:0]
	for _, line := range u.Cart {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	u.Cart = kept
	u.CartVersion++
	return nil
}

func (m *mockUserRepository) lookup(userID string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) seed(user *domain.User) {
	m.m.Lock()
	defer m.m.Unlock()
	m.users[user.ID] = user
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Cart = append([]domain.CartLine{}, u.Cart...)
	return &c
}

type mockProductRepository struct {
	m        sync.Mutex
	products []*domain.Product
	err      error
	gets     int
}

func (m *mockProductRepository) ListProducts(_ context.Context, _ string) ([]*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductRepository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) setPrice(id string, price float64) {
	m.m.Lock()
	defer m.m.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			updated := *p
			updated.Price = price
			m.products[i] = &updated
		}
	}
}

func (m *mockProductRepository) remove(id string) {
	m.m.Lock()
	defer m.m.Unlock()
	kept := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.products = kept
}

func (m *mockProductRepository) getCalls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.gets
}

type mockCache struct {
	m        sync.Mutex
	products map[string]*domain.Product
	err      error
	sets     chan string
}

func newMockCache() *mockCache {
	return &mockCache{
		products: make(map[string]*domain.Product),
		sets:     make(chan string, 16),
	}
}

func (m *mockCache) Get(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (m *mockCache) Set(_ context.Context, product *domain.Product) error {
	m.m.Lock()
	m.products[product.ID] = product
	m.m.Unlock()
	select {
	case m.sets <- product.ID:
	default:
	}
	return nil
}

type mockSessionStore struct {
	m        sync.Mutex
	sessions map[string]domain.Identity
	err      error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]domain.Identity)}
}

func (m *mockSessionStore) Create(_ context.Context, identity domain.Identity) (string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return "", m.err
	}
	token := uuid.NewString()
	m.sessions[token] = identity
	return token, nil
}

func (m *mockSessionStore) Get(_ context.Context, token string) (domain.Identity, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	identity, ok := m.sessions[token]
	if !ok {
		return domain.Identity{}, session.ErrSessionNotFound
	}
	return identity, nil
}

func (m *mockSessionStore) Delete(_ context.Context, token string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.sessions, token)
	return nil
}

// mockOrderRepository clears the cart through the user mock so version checks behave like the real store
type mockOrderRepository struct {
	m      sync.Mutex
	users  *mockUserRepository
	orders []*domain.Order
	events []*repository.OutboxEvent
	err    error
}

func (m *mockOrderRepository) PlaceOrder(_ context.Context, order *domain.Order, cartVersion int64, event *repository.OutboxEvent) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}

	m.users.m.Lock()
	defer m.users.m.Unlock()
	u, ok := m.users.users[order.UserID]
	if !ok || u.CartVersion != cartVersion {
		return repository.ErrCartChanged
	}
	u.Cart = []domain.CartLine{}
	u.CartVersion++

	m.orders = append(m.orders, order)
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockOrderRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

// testStore wires every service against the same in-memory state
type testStore struct {
	users    *mockUserRepository
	products *mockProductRepository
	orders   *mockOrderRepository
	metrics  *metrics.Metrics
	cart     *CartService
	checkout *OrderService
}

func newTestStore(products ...*domain.Product) *testStore {
	users := newMockUserRepository()
	productRepo := &mockProductRepository{products: products}
	orders := &mockOrderRepository{users: users}
	m := metrics.NewUnregistered()
	log := logger.NewNop()

	return &testStore{
		users:    users,
		products: productRepo,
		orders:   orders,
		metrics:  m,
		cart:     NewCartService(users, productRepo, log, m),
		checkout: NewOrderService(users, orders, productRepo, log, m),
	}
}

func (s *testStore) addUser(id string) domain.Identity {
	s.users.seed(&domain.User{ID: id, Name: "Ana", Email: id + "@example.com", Cart: []domain.CartLine{}})
	return domain.Identity{UserID: id, Name: "Ana", Email: id + "@example.com"}
}
