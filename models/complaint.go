package models

import "time"

// Complaint statuses
const (
	ComplaintPending  = "pending"
	ComplaintInReview = "in_review"
	ComplaintResolved = "resolved"
	ComplaintIgnored  = "ignored"
)

type Complaint struct {
	ComplaintID string    `json:"complaintid" bson:"complaintid"`
	UserID      string    `json:"userId" bson:"userId"`
	OrderID     string    `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Subject     string    `json:"subject" bson:"subject"`
	Description string    `json:"description" bson:"description"`
	Status      string    `json:"status" bson:"status"`
	Resolution  string    `json:"resolution,omitempty" bson:"resolution,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}
