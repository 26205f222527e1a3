package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection        *mongo.Collection
	ProductsCollection    *mongo.Collection
	BidsCollection        *mongo.Collection
	OrdersCollection      *mongo.Collection
	CartsCollection       *mongo.Collection
	ComplaintsCollection  *mongo.Collection
	CampaignsCollection   *mongo.Collection
	TransactionCollection *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("agrodb")
	UserCollection = database.Collection("users")
	ProductsCollection = database.Collection("products")
	BidsCollection = database.Collection("bids")
	OrdersCollection = database.Collection("orders")
	CartsCollection = database.Collection("carts")
	ComplaintsCollection = database.Collection("complaints")
	CampaignsCollection = database.Collection("campaigns")
	TransactionCollection = database.Collection("transactions")
	IdempotencyCollection = database.Collection("idempotency")
}
