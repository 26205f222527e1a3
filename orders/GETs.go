package orders

import (
	"context"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	roles := utils.GetRolesFromRequest(r)

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": ps.ByName("orderid")}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Order not found")
		return
	}

	if !canView(&order, userID, roles) {
		utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Not allowed to view this order")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}

func canView(order *models.Order, userID string, roles []string) bool {
	for _, role := range roles {
		if role == models.RoleAdmin {
			return true
		}
	}
	return order.BuyerID == userID || order.FarmerID == userID
}

// GetBuyerOrders lists the caller's own orders, newest first.
func GetBuyerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	listOrders(ctx, w, bson.M{"buyerId": userID}, r.URL.Query().Get("status"))
}

// GetFarmerOrders lists orders placed against the caller's products.
func GetFarmerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	listOrders(ctx, w, bson.M{"farmerId": userID}, r.URL.Query().Get("status"))
}

func listOrders(ctx context.Context, w http.ResponseWriter, filter bson.M, status string) {
	if status != "" {
		filter["status"] = status
	}

	cursor, err := db.OrdersCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}
