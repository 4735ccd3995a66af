package service

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type resolvedLine struct {
	line    domain.CartLine
	product *domain.Product // nil when the product no longer exists
}

// resolveLines looks up every cart line. Lines whose product is gone stay in
// the result with a nil product; any other lookup failure aborts.
func resolveLines(ctx context.Context, products ProductLookup, log *logger.Logger, lines []domain.CartLine) ([]resolvedLine, error) {
	out := make([]resolvedLine, 0, len(lines))
	for _, line := range lines {
		product, err := products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			log.WithContext(ctx).Debug("cart line references missing product", "product_id", line.ProductID)
			out = append(out, resolvedLine{line: line})
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, resolvedLine{line: line, product: product})
	}
	return out, nil
}

// loadCartView prices the identity's stored cart.
func loadCartView(ctx context.Context, users repository.UserRepository, products ProductLookup, log *logger.Logger, identity domain.Identity) (*domain.CartView, error) {
	user, err := loadUser(ctx, users, identity)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveLines(ctx, products, log, user.Cart)
	if err != nil {
		return nil, err
	}
	return buildCartView(resolved, user.CartVersion), nil
}

func buildCartView(resolved []resolvedLine, version int64) *domain.CartView {
	view := &domain.CartView{
		Items:   make([]domain.CartViewItem, 0, len(resolved)),
		Lines:   len(resolved),
		Version: version,
	}
	for _, r := range resolved {
		if r.product == nil {
			continue
		}
		subtotal := r.product.Price * float64(r.line.Quantity)
		view.Items = append(view.Items, domain.CartViewItem{
			Product:  *r.product,
			Quantity: r.line.Quantity,
			Subtotal: subtotal,
		})
		view.Total += subtotal
	}
	return view
}
