package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/google/uuid"
)

const EventOrderPlaced = "order.placed"

type OrderService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	products ProductLookup
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewOrderService(
	users repository.UserRepository,
	orders repository.OrderRepository,
	products ProductLookup,
	log *logger.Logger,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		users:    users,
		orders:   orders,
		products: products,
		log:      log.With("service", "OrderService"),
		metrics:  m,
		now:      time.Now,
	}
}

// CheckoutPreview is the cart view shown on the confirmation step.
func (s *OrderService) CheckoutPreview(ctx context.Context, identity domain.Identity) (*domain.CartView, error) {
	return loadCartView(ctx, s.users, s.products, s.log, identity)
}

// ConfirmOrder snapshots the cart into an order priced at current catalog
// prices, then empties the cart. Both writes happen in one transaction.
func (s *OrderService) ConfirmOrder(ctx context.Context, identity domain.Identity, details domain.ShippingDetails) (*domain.Order, error) {
	user, err := loadUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}
	if len(user.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	details.RecipientName = strings.TrimSpace(details.RecipientName)
	details.Address = strings.TrimSpace(details.Address)
	details.PaymentMethod = strings.TrimSpace(details.PaymentMethod)
	if details.RecipientName == "" || details.Address == "" || details.PaymentMethod == "" {
		return nil, ErrMissingShippingDetails
	}

	resolved, err := resolveLines(ctx, s.products, s.log, user.Cart)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		RecipientName: details.RecipientName,
		Address:       details.Address,
		PaymentMethod: details.PaymentMethod,
		Lines:         make([]domain.OrderLine, 0, len(resolved)),
		CreatedAt:     s.now().UTC(),
	}
	for _, r := range resolved {
		line := domain.OrderLine{
			ProductID: r.line.ProductID,
			Quantity:  r.line.Quantity,
		}
		if r.product != nil {
			line.ProductName = r.product.Name
			line.UnitPrice = r.product.Price
			line.Subtotal = r.product.Price * float64(r.line.Quantity)
		}
		order.Lines = append(order.Lines, line)
		order.Total += line.Subtotal
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	event := &repository.OutboxEvent{
		ID:          uuid.NewString(),
		AggregateID: order.ID,
		EventType:   EventOrderPlaced,
		Payload:     payload,
		CreatedAt:   order.CreatedAt,
	}

	if err := s.orders.PlaceOrder(ctx, order, user.CartVersion, event); err != nil {
		if errors.Is(err, repository.ErrCartChanged) {
			s.log.WithContext(ctx).Info("cart changed during checkout", "user_id", user.ID)
			return nil, ErrCartChanged
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.OrderTotal.Observe(order.Total)
	s.log.WithContext(ctx).Info("order placed", "order_id", order.ID, "user_id", user.ID, "total", order.Total)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, identity domain.Identity) ([]*domain.Order, error) {
	if identity.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return s.orders.ListOrdersByUserID(ctx, identity.UserID)
}
