package models

import "time"

// Product categories (fixed set)
var ProductCategories = []string{
	"vegetables", "fruits", "grains", "dairy", "seeds", "fertilizers", "equipment",
}

type Product struct {
	ProductID   string    `json:"productid" bson:"productid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Grade       string    `json:"grade" bson:"grade"` // A, B or C
	Images      []string  `json:"images" bson:"images"`
	Stock       int       `json:"stock" bson:"stock"`
	IsBidding   bool      `json:"isBidding" bson:"isBidding"`
	FarmerID    string    `json:"farmerId" bson:"farmerId"`
	Version     int64     `json:"-" bson:"version"` // bumped on every price/stock write
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func ValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidGrade(grade string) bool {
	return grade == "A" || grade == "B" || grade == "C"
}
