package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection(productsCollection),
	}
}

// ListProducts returns products in the collection's natural order. A non-blank
// search keeps only products whose name contains it, ignoring case.
func (m *MongoProductRepository) ListProducts(ctx context.Context, search string) ([]*domain.Product, error) {
	filter := bson.M{}
	if term := strings.TrimSpace(search); term != "" {
		filter["name"] = bson.M{
			"$regex":   regexp.QuoteMeta(term),
			"$options": "i",
		}
	}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]*domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *MongoProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// SeedIfEmpty loads catalog entries into an empty collection and reports how
// many were inserted. The storefront itself never writes products otherwise.
func (m *MongoProductRepository) SeedIfEmpty(ctx context.Context, products []*domain.Product) (int, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 || len(products) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = p
	}
	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to insert products: %w", err)
	}
	return len(products), nil
}
