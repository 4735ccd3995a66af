package service

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/repository"
)

var (
	ErrDuplicateEmail         = repository.ErrDuplicateEmail
	ErrProductNotFound        = repository.ErrProductNotFound
	ErrCartChanged            = repository.ErrCartChanged
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidRegistration    = errors.New("name, email and password are required")
	ErrUnauthenticated        = errors.New("not authenticated")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrMissingShippingDetails = errors.New("recipient, address and payment method are required")
)
