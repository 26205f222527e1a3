package models

import "time"

// Meta is a generic key-value map for transaction metadata
type Meta map[string]interface{}

// Transaction records a payment attempt against an order.
type Transaction struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"userid,omitempty" json:"userid,omitempty"`
	OrderID        string    `bson:"orderid" json:"orderid"`
	IntentID       string    `bson:"intent_id" json:"intent_id"`
	Amount         float64   `bson:"amount" json:"amount"` // gateway currency
	OriginalAmount float64   `bson:"original_amount" json:"original_amount"`
	Currency       string    `bson:"currency" json:"currency"`
	Status         string    `bson:"state" json:"state"` // initiated, success, failed
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
	IdempotencyKey string    `bson:"external_ref,omitempty" json:"external_ref,omitempty"`
	Meta           Meta      `bson:"meta,omitempty" json:"meta,omitempty"`
}

// IdempotencyRecord represents an idempotency key record stored in Mongo.
type IdempotencyRecord struct {
	Key         string                 `bson:"key" json:"key"`
	Method      string                 `bson:"method" json:"method"`
	Path        string                 `bson:"path" json:"path"`
	UserID      string                 `bson:"userid" json:"userid"`
	RequestHash string                 `bson:"request_hash" json:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at" json:"expires_at"`
}
