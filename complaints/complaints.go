package complaints

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// complaintTransitions is the support workflow. Terminal states have no
// entry.
var complaintTransitions = map[string][]string{
	models.ComplaintPending:  {models.ComplaintInReview, models.ComplaintResolved, models.ComplaintIgnored},
	models.ComplaintInReview: {models.ComplaintResolved, models.ComplaintIgnored},
}

func canTransition(from, to string) bool {
	for _, next := range complaintTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateComplaint files a support complaint, optionally tied to an order.
// A user may only file one complaint per order; the unique index backs the
// check under concurrency.
func CreateComplaint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		OrderID     string `json:"orderId"`
		Subject     string `json:"subject"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}

	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	if input.Subject == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Missing required field: subject")
		return
	}
	if input.Description == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Missing required field: description")
		return
	}

	if input.OrderID != "" {
		var order models.Order
		if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": input.OrderID}).Decode(&order); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Order not found")
			return
		}
		if order.BuyerID != userID {
			utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "You can only complain about your own orders")
			return
		}
	}

	now := time.Now()
	complaint := models.Complaint{
		ComplaintID: utils.GenerateID("c", 10),
		UserID:      userID,
		OrderID:     input.OrderID,
		Subject:     input.Subject,
		Description: input.Description,
		Status:      models.ComplaintPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := db.ComplaintsCollection.InsertOne(ctx, complaint); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "You have already filed a complaint for this order")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to save complaint")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, complaint)
}

// GetMyComplaints lists the caller's complaints, newest first.
func GetMyComplaints(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	listComplaints(ctx, w, bson.M{"userId": userID})
}

// GetAllComplaints is the admin queue, filterable by status.
func GetAllComplaints(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	listComplaints(ctx, w, filter)
}

func listComplaints(ctx context.Context, w http.ResponseWriter, filter bson.M) {
	cursor, err := db.ComplaintsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch complaints")
		return
	}
	defer cursor.Close(ctx)

	complaints := []models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode complaints")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, complaints)
}

// UpdateComplaintStatus moves a complaint through the support workflow.
// Admin only; a resolution note may accompany the resolved state.
func UpdateComplaintStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	complaintID := ps.ByName("complaintid")

	var input struct {
		Status     string `json:"status"`
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}
	if input.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Missing required field: status")
		return
	}

	var complaint models.Complaint
	if err := db.ComplaintsCollection.FindOne(ctx, bson.M{"complaintid": complaintID}).Decode(&complaint); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Complaint not found")
		return
	}

	if !canTransition(complaint.Status, input.Status) {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict,
			"Cannot move complaint from "+complaint.Status+" to "+input.Status)
		return
	}

	update := bson.M{"status": input.Status, "updatedAt": time.Now()}
	if strings.TrimSpace(input.Resolution) != "" {
		update["resolution"] = strings.TrimSpace(input.Resolution)
	}

	result, err := db.ComplaintsCollection.UpdateOne(ctx,
		bson.M{"complaintid": complaintID, "status": complaint.Status},
		bson.M{"$set": update},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update complaint")
		return
	}
	if result.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Complaint changed concurrently, retry")
		return
	}

	complaint.Status = input.Status
	utils.RespondWithJSON(w, http.StatusOK, complaint)
}
