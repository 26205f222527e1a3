package models

import "time"

// CartItem is one line of a user's cart.
type CartItem struct {
	ItemID    string    `json:"itemId" bson:"itemId"`
	ProductID string    `json:"productId" bson:"productId"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

// Cart is the single per-user staging area prior to checkout.
type Cart struct {
	CartID    string     `json:"cartid" bson:"cartid"`
	UserID    string     `json:"userId" bson:"userId"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}
