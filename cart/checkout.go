package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/orders"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// SkippedItem reports a cart line that could not be fulfilled.
type SkippedItem struct {
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// placeFunc matches orders.PlaceOrder.
type placeFunc func(ctx context.Context, buyerID, productID string, quantity int, status string, shipping models.ShippingDetails) (*models.Order, error)

// checkoutItems converts cart lines into orders one by one, in array order.
// A line that fails is recorded with its reason and the remaining lines
// still go through; the total covers created orders only.
func checkoutItems(ctx context.Context, place placeFunc, userID string, items []models.CartItem, status string, shipping models.ShippingDetails) ([]models.Order, []SkippedItem, float64) {
	created := []models.Order{}
	skipped := []SkippedItem{}
	var total float64

	for _, item := range items {
		order, err := place(ctx, userID, item.ProductID, item.Quantity, status, shipping)
		if err != nil {
			skipped = append(skipped, SkippedItem{
				ItemID:    item.ItemID,
				ProductID: item.ProductID,
				Reason:    err.Error(),
			})
			continue
		}
		created = append(created, *order)
		total += order.TotalPrice
	}
	return created, skipped, total
}

// CheckoutCart converts cart items into orders best-effort, in array order.
// A line whose product vanished or lacks stock is skipped and reported; the
// rest still go through. The cart is deleted at the end either way.
func CheckoutCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Shipping      models.ShippingDetails `json:"shipping"`
		PaymentMethod string                 `json:"paymentMethod"` // "stripe" or "cod"
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
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

	var cart models.Cart
	if err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Cart not found")
		return
	}
	if len(cart.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Cart is empty")
		return
	}

	created, skipped, total := checkoutItems(ctx, orders.PlaceOrder, userID, cart.Items, status, input.Shipping)

	// The cart goes away even when some lines were skipped. Known quirk of
	// the checkout flow; skipped items are reported so the client can re-add.
	if _, err := db.CartsCollection.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		log.Println("CheckoutCart: cart delete error:", err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"orders":     created,
		"skipped":    skipped,
		"totalPrice": total,
	})
}
