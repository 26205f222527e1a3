package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the marketplace invariants rely on.
// Call once at startup; MongoDB enforces the constraints even when two
// requests slip through nearly concurrently.
func EnsureIndexes(ctx context.Context) error {
	// one cart document per user
	if _, err := CartsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"userId": 1},
		Options: options.Index().SetUnique(true).SetName("unique_user_cart"),
	}); err != nil {
		return err
	}

	// idempotency records: unique key + TTL cleanup
	if _, err := IdempotencyCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expires_at": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	}); err != nil {
		return err
	}

	// one complaint per user per order; complaints without an order are exempt
	if _, err := ComplaintsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "orderId", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetName("unique_user_order_complaint").
			SetPartialFilterExpression(bson.M{"orderId": bson.M{"$exists": true}}),
	}); err != nil {
		return err
	}

	// bid listings are always newest-first per product
	_, err := BidsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "productId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	})
	return err
}
