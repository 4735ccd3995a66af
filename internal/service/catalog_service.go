package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"golang.org/x/sync/singleflight"
)

// ProductLookup resolves a single product or returns ErrProductNotFound.
// Cart and order pricing must be given the uncached store so totals use current prices.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type CatalogService struct {
	products repository.ProductRepository
	cache    cache.ProductCache
	log      *logger.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCatalogService(products repository.ProductRepository, c cache.ProductCache, log *logger.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    c,
		log:      log.With("service", "CatalogService"),
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]*domain.Product, error) {
	return s.products.ListProducts(ctx, search)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithContext(ctx).Warn("product cache get failed", "product_id", id, "error", err)
		}

		product, err = s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func(p *domain.Product) {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, p); err != nil {
				s.log.Warn("product cache set failed", "product_id", p.ID, "error", err)
			}
		}(product)

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	// copy so callers never share the cached pointer
	product := *v.(*domain.Product)
	return &product, nil
}

// Recommendations lists every product except the one being viewed.
func (s *CatalogService) Recommendations(ctx context.Context, productID string) ([]*domain.Product, error) {
	all, err := s.products.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out, nil
}
