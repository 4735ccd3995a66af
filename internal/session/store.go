// Package session maps opaque session tokens to the identity that logged in.
package session

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Store interface {
	Create(ctx context.Context, identity domain.Identity) (string, error)
	// Get resolves a token and extends its lifetime.
	Get(ctx context.Context, token string) (domain.Identity, error)
	Delete(ctx context.Context, token string) error
}

var ErrSessionNotFound = errors.New("session not found")
