package models

import "time"

// Bid statuses
const (
	BidPending  = "pending"
	BidAccepted = "accepted"
	BidRejected = "rejected"
)

type Bid struct {
	BidID     string    `json:"bidid" bson:"bidid"`
	ProductID string    `json:"productId" bson:"productId"`
	UserID    string    `json:"userId" bson:"userId"`
	Amount    float64   `json:"amount" bson:"amount"`
	IsWinning bool      `json:"isWinning" bson:"isWinning"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
