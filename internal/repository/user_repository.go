package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxAddAttempts bounds the increment/push loop in AddCartLine. A retry only
// happens when a concurrent request pushed the same product in between.
const maxAddAttempts = 3

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(usersCollection),
	}
}

func (m *mongoUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.Cart == nil {
		// $push fails on a null field, the cart must start as an empty array
		user.Cart = []domain.CartLine{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := m.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (m *mongoUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *mongoUserRepository) AddCartLine(ctx context.Context, userID string, line domain.CartLine) error {
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}

	for attempt := 0; attempt < maxAddAttempts; attempt++ {
		// Existing line: increment it in place
		result, err := m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product_id": line.ProductID},
			bson.M{"$inc": bson.M{
				"cart.$[elem].quantity": line.Quantity,
				"cart_version":          1,
			}},
			lineFilter(line.ProductID),
		)
		if err != nil {
			return fmt.Errorf("failed to increment cart line: %w", err)
		}
		if result.MatchedCount > 0 {
			return nil
		}

		// New line: push only if no line for the product appeared meanwhile
		result, err = m.collection.UpdateOne(ctx,
			bson.M{"_id": userID, "cart.product_id": bson.M{"$ne": line.ProductID}},
			bson.M{
				"$push": bson.M{"cart": line},
				"$inc":  bson.M{"cart_version": 1},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to push cart line: %w", err)
		}
		if result.MatchedCount > 0 {
			return nil
		}

		if err := m.ensureExists(ctx, userID); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed to add cart line after %d attempts: %w", maxAddAttempts, ErrCartChanged)
}

func (m *mongoUserRepository) SetCartLineQuantity(ctx context.Context, userID, productID string, quantity int) error {
	result, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "cart.product_id": productID},
		bson.M{
			"$set": bson.M{"cart.$[elem].quantity": quantity},
			"$inc": bson.M{"cart_version": 1},
		},
		lineFilter(productID),
	)
	if err != nil {
		return fmt.Errorf("failed to update cart line quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		// no line for the product is not an error, a missing user is
		return m.ensureExists(ctx, userID)
	}
	return nil
}

func (m *mongoUserRepository) RemoveCartLine(ctx context.Context, userID, productID string) error {
	result, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"product_id": productID}},
			"$inc":  bson.M{"cart_version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) ensureExists(ctx context.Context, userID string) error {
	count, err := m.collection.CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func lineFilter(productID string) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})
}
