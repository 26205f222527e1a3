package models

import "time"

type Campaign struct {
	CampaignID    string    `json:"campaignid" bson:"campaignid"`
	Name          string    `json:"name" bson:"name"`
	TargetProduct string    `json:"targetProduct" bson:"targetProduct"`
	Budget        float64   `json:"budget" bson:"budget"`
	StartDate     time.Time `json:"startDate" bson:"startDate"`
	EndDate       time.Time `json:"endDate" bson:"endDate"` // defaults to startDate + 30 days
	CreatedBy     string    `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
