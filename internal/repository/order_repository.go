package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	outbox *mongo.Collection
	users  *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		client: db.Client(),
		orders: db.Collection(ordersCollection),
		outbox: db.Collection(outboxCollection),
		users:  db.Collection(usersCollection),
	}
}

func (r *MongoOrderRepository) PlaceOrder(ctx context.Context, order *domain.Order, cartVersion int64, event *OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}

		if event != nil {
			if _, err := r.outbox.InsertOne(sc, event); err != nil {
				return nil, fmt.Errorf("insert outbox event: %w", err)
			}
		}

		result, err := r.users.UpdateOne(sc,
			bson.M{"_id": order.UserID, "cart_version": cartVersion},
			bson.M{
				"$set": bson.M{"cart": []domain.CartLine{}},
				"$inc": bson.M{"cart_version": 1},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("clear cart: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, ErrCartChanged
		}
		return nil, nil
	})
	return err
}

func (r *MongoOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetUnprocessedEvents(ctx context.Context, limit int64) ([]*OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cursor, err := r.outbox.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*OutboxEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode outbox events: %w", err)
	}
	return events, nil
}

func (r *MongoOrderRepository) MarkEventAsProcessed(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.outbox.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"processed": true, "processed_at": now}},
	)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	_, err = r.outbox.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "processed", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}
