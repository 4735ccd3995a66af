package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type CartService struct {
	users    repository.UserRepository
	products ProductLookup
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewCartService(users repository.UserRepository, products ProductLookup, log *logger.Logger, m *metrics.Metrics) *CartService {
	return &CartService{
		users:    users,
		products: products,
		log:      log.With("service", "CartService"),
		metrics:  m,
	}
}

// AddToCart increments the line for productID or appends a new one. The
// product is not checked against the catalog.
func (s *CartService) AddToCart(ctx context.Context, identity domain.Identity, productID string, quantity int) error {
	if identity.UserID == "" {
		return ErrUnauthenticated
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	err := s.users.AddCartLine(ctx, identity.UserID, domain.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
	if err != nil {
		return s.mutationError(ctx, "add", err)
	}
	s.metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity below 1
// removes the line so stored quantities are always positive.
func (s *CartService) UpdateQuantity(ctx context.Context, identity domain.Identity, productID string, quantity int) error {
	if identity.UserID == "" {
		return ErrUnauthenticated
	}
	if quantity < 1 {
		return s.RemoveFromCart(ctx, identity, productID)
	}

	if err := s.users.SetCartLineQuantity(ctx, identity.UserID, productID, quantity); err != nil {
		return s.mutationError(ctx, "update", err)
	}
	s.metrics.CartMutations.WithLabelValues("update").Inc()
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, identity domain.Identity, productID string) error {
	if identity.UserID == "" {
		return ErrUnauthenticated
	}

	if err := s.users.RemoveCartLine(ctx, identity.UserID, productID); err != nil {
		return s.mutationError(ctx, "remove", err)
	}
	s.metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

// ViewCart prices every line at current catalog prices. Lines whose product
// no longer exists are left out of the view but kept in storage.
func (s *CartService) ViewCart(ctx context.Context, identity domain.Identity) (*domain.CartView, error) {
	return loadCartView(ctx, s.users, s.products, s.log, identity)
}

func (s *CartService) mutationError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUnauthenticated
	}
	s.log.WithContext(ctx).Error("cart mutation failed", "op", op, "error", err)
	return err
}

func loadUser(ctx context.Context, users repository.UserRepository, identity domain.Identity) (*domain.User, error) {
	if identity.UserID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := users.GetUserByID(ctx, identity.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
