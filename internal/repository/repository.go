package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
	outboxCollection   = "outbox"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrProductNotFound = errors.New("product not found")
	ErrCartChanged     = errors.New("cart changed since it was read")
)

// UserRepository stores users together with their embedded cart.
// Cart mutations touch a single line and bump cart_version.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	AddCartLine(ctx context.Context, userID string, line domain.CartLine) error
	SetCartLineQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartLine(ctx context.Context, userID, productID string) error
}

type ProductRepository interface {
	ListProducts(ctx context.Context, search string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type OutboxEvent struct {
	ID          string     `bson:"_id"`
	AggregateID string     `bson:"aggregate_id"`
	EventType   string     `bson:"event_type"`
	Payload     []byte     `bson:"payload"`
	Processed   bool       `bson:"processed"`
	CreatedAt   time.Time  `bson:"created_at"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty"`
}

type OrderRepository interface {
	// PlaceOrder inserts the order and its outbox event and empties the user's
	// cart in one transaction. The cart is only cleared when its version still
	// equals cartVersion, otherwise nothing is written and ErrCartChanged is returned.
	PlaceOrder(ctx context.Context, order *domain.Order, cartVersion int64, event *OutboxEvent) error
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int64) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id string) error
}
