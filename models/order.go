package models

import "time"

// Order statuses
const (
	OrderPending        = "pending"
	OrderCashOnDelivery = "cash-on-delivery"
	OrderPaid           = "paid"
	OrderShipped        = "shipped"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// ShippingDetails is the freeform delivery address captured at checkout.
type ShippingDetails struct {
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	Pincode string `json:"pincode,omitempty" bson:"pincode,omitempty"`
}

type Order struct {
	OrderID         string          `json:"orderid" bson:"orderid"`
	ProductID       string          `json:"productId" bson:"productId"`
	ProductName     string          `json:"productName" bson:"productName"`
	FarmerID        string          `json:"farmerId" bson:"farmerId"`
	BuyerID         string          `json:"buyerId" bson:"buyerId"`
	Quantity        int             `json:"quantity" bson:"quantity"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice"` // frozen at creation
	Status          string          `json:"status" bson:"status"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	PaymentAmount   float64         `json:"paymentAmount,omitempty" bson:"paymentAmount,omitempty"` // gateway currency
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	Shipping        ShippingDetails `json:"shipping" bson:"shipping"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}
