package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/emailer"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// validTransitions is the only path an order may take. Anything not listed
// here is rejected as a state conflict, including repeats of the current
// status.
var validTransitions = map[string][]string{
	models.OrderPending:        {models.OrderPaid, models.OrderCancelled},
	models.OrderCashOnDelivery: {models.OrderShipped},
	models.OrderPaid:           {models.OrderShipped},
	models.OrderShipped:        {models.OrderDelivered},
}

func validStatus(s string) bool {
	switch s {
	case models.OrderPending, models.OrderCashOnDelivery, models.OrderPaid,
		models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
		return true
	}
	return false
}

func canTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// canManage reports whether the caller may move this order to the requested
// status. Buyers may only cancel their own pending orders; farmers move their
// own orders through shipping; admins may do either.
func canManage(order *models.Order, userID string, roles []string, target string) bool {
	for _, role := range roles {
		if role == models.RoleAdmin {
			return true
		}
	}
	if order.BuyerID == userID {
		return target == models.OrderCancelled
	}
	if order.FarmerID == userID {
		return target == models.OrderShipped || target == models.OrderDelivered
	}
	return false
}

func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	roles := utils.GetRolesFromRequest(r)
	orderID := ps.ByName("orderid")

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}
	if !validStatus(input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Unknown order status: "+input.Status)
		return
	}

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Order not found")
		return
	}

	if !canManage(&order, userID, roles, input.Status) {
		utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Not allowed to update this order")
		return
	}
	if !canTransition(order.Status, input.Status) {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict,
			"Cannot move order from "+order.Status+" to "+input.Status)
		return
	}

	// the filter repeats the current status so a concurrent update loses
	result, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID, "status": order.Status},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update order")
		return
	}
	if result.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Order changed concurrently, retry")
		return
	}

	if input.Status == models.OrderCancelled {
		restoreStock(ctx, order.ProductID, order.Quantity)
	}

	notifyBuyer(order.BuyerID, orderID, input.Status)

	order.Status = input.Status
	utils.RespondWithJSON(w, http.StatusOK, order)
}

func notifyBuyer(buyerID, orderID, status string) {
	var buyer struct {
		Email string `bson:"email"`
	}
	err := db.UserCollection.FindOne(context.Background(), bson.M{"userid": buyerID}).Decode(&buyer)
	if err != nil || buyer.Email == "" {
		log.Printf("order %s: no buyer email for notification: %v", orderID, err)
		return
	}
	emailer.NotifyOrderStatus(buyer.Email, orderID, status)
}
