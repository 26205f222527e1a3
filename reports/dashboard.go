package reports

import (
	"context"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// revenueStatuses are the order states that count as money earned.
var revenueStatuses = []string{models.OrderPaid, models.OrderShipped, models.OrderDelivered}

type statusCount struct {
	Status string  `bson:"_id" json:"status"`
	Count  int64   `bson:"count" json:"count"`
	Total  float64 `bson:"total" json:"total"`
}

type productVolume struct {
	ProductID   string `bson:"_id" json:"productId"`
	ProductName string `bson:"productName" json:"productName"`
	Quantity    int64  `bson:"quantity" json:"quantity"`
}

type roleCount struct {
	Role  string `bson:"_id" json:"role"`
	Count int64  `bson:"count" json:"count"`
}

// GetDashboard returns the admin overview: revenue, order breakdown by
// status, top products by units sold, user counts per role and bid volume.
func GetDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	ordersByStatus, err := aggregateOrders(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to aggregate orders")
		return
	}

	var revenue float64
	var totalOrders int64
	for _, sc := range ordersByStatus {
		totalOrders += sc.Count
		for _, s := range revenueStatuses {
			if sc.Status == s {
				revenue += sc.Total
			}
		}
	}

	topProducts, err := aggregateTopProducts(ctx, 5)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to aggregate products")
		return
	}

	usersByRole, err := aggregateUsersByRole(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to aggregate users")
		return
	}

	bidVolume, err := db.BidsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to count bids")
		return
	}
	openComplaints, err := db.ComplaintsCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []string{models.ComplaintPending, models.ComplaintInReview}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to count complaints")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"revenue":        revenue,
		"totalOrders":    totalOrders,
		"ordersByStatus": ordersByStatus,
		"topProducts":    topProducts,
		"usersByRole":    usersByRole,
		"bidVolume":      bidVolume,
		"openComplaints": openComplaints,
	})
}

func aggregateOrders(ctx context.Context) ([]statusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$totalPrice"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []statusCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregateTopProducts(ctx context.Context, limit int) ([]productVolume, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderCancelled}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$productId",
			"productName": bson.M{"$first": "$productName"},
			"quantity":    bson.M{"$sum": "$quantity"},
		}}},
		{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []productVolume{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregateUsersByRole(ctx context.Context) ([]roleCount, error) {
	// role is an array; unwind so a user counts once per role held
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$role"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$role",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := db.UserCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []roleCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSalesReport breaks revenue down per farmer over an optional date range
// (?from=2026-01-01&to=2026-02-01).
func GetSalesReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	match := bson.M{"status": bson.M{"$in": revenueStatuses}}
	createdAt := bson.M{}
	if from := utils.ParseDate(r.URL.Query().Get("from")); from != nil {
		createdAt["$gte"] = *from
	}
	if to := utils.ParseDate(r.URL.Query().Get("to")); to != nil {
		createdAt["$lte"] = *to
	}
	if len(createdAt) > 0 {
		match["createdAt"] = createdAt
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$farmerId",
			"revenue": bson.M{"$sum": "$totalPrice"},
			"orders":  bson.M{"$sum": 1},
			"units":   bson.M{"$sum": "$quantity"},
		}}},
		{{Key: "$sort", Value: bson.M{"revenue": -1}}},
	}

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to aggregate sales")
		return
	}
	defer cursor.Close(ctx)

	rows := []bson.M{}
	if err := cursor.All(ctx, &rows); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode sales report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rows)
}
