package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PlaceOrder reserves stock and persists an order. The decrement is a
// conditional update filtered on stock >= quantity, so two buyers racing for
// the last unit cannot both succeed; the total is frozen from the price at
// creation time and never recomputed.
func PlaceOrder(ctx context.Context, buyerID, productID string, quantity int, status string, shipping models.ShippingDetails) (*models.Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&product); err != nil {
		return nil, ErrProductNotFound
	}

	result, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": productID, "stock": bson.M{"$gte": quantity}},
		bson.M{
			"$inc": bson.M{"stock": -quantity, "version": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 0 {
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	order := models.Order{
		OrderID:     utils.GenerateID("o", 10),
		ProductID:   product.ProductID,
		ProductName: product.Name,
		FarmerID:    product.FarmerID,
		BuyerID:     buyerID,
		Quantity:    quantity,
		TotalPrice:  product.Price * float64(quantity),
		Status:      status,
		Shipping:    shipping,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		// give the reserved stock back; the order never existed
		restoreStock(ctx, productID, quantity)
		return nil, err
	}
	return &order, nil
}

func restoreStock(ctx context.Context, productID string, quantity int) {
	db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": productID},
		bson.M{"$inc": bson.M{"stock": quantity, "version": 1}},
	)
}

// CreateOrder handles a direct purchase of a single product.
func CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	buyerID := utils.GetUserIDFromRequest(r)
	if buyerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID     string                 `json:"productId"`
		Quantity      int                    `json:"quantity"`
		PaymentMethod string                 `json:"paymentMethod"`
		Shipping      models.ShippingDetails `json:"shipping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}
	if input.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Quantity must be positive")
		return
	}
	if input.Shipping.Address == "" || input.Shipping.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Shipping name and address are required")
		return
	}

	status := models.OrderPending
	if input.PaymentMethod == "cod" {
		status = models.OrderCashOnDelivery
	}

	order, err := PlaceOrder(ctx, buyerID, input.ProductID, input.Quantity, status, input.Shipping)
	switch {
	case errors.Is(err, ErrProductNotFound):
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
		return
	case errors.Is(err, ErrInsufficientStock):
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Insufficient stock")
		return
	case err != nil:
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to create order")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, order)
}
