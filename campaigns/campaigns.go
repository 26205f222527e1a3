package campaigns

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDuration = 30 * 24 * time.Hour

// campaignEndDate fills in the end date when the caller leaves it out.
func campaignEndDate(start, end time.Time) time.Time {
	if end.IsZero() {
		return start.Add(defaultDuration)
	}
	return end
}

// CreateCampaign starts a promotional campaign for one of the farmer's
// products.
func CreateCampaign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var input struct {
		Name          string    `json:"name"`
		TargetProduct string    `json:"targetProduct"`
		Budget        float64   `json:"budget"`
		StartDate     time.Time `json:"startDate"`
		EndDate       time.Time `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Missing required field: name")
		return
	}
	if input.Budget <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Budget must be positive")
		return
	}
	if input.StartDate.IsZero() {
		input.StartDate = time.Now()
	}

	if input.TargetProduct != "" {
		var product models.Product
		if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": input.TargetProduct}).Decode(&product); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Target product not found")
			return
		}
		if product.FarmerID != userID {
			utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "You can only promote your own products")
			return
		}
	}

	campaign := models.Campaign{
		CampaignID:    utils.GenerateID("cmp", 8),
		Name:          input.Name,
		TargetProduct: input.TargetProduct,
		Budget:        input.Budget,
		StartDate:     input.StartDate,
		EndDate:       campaignEndDate(input.StartDate, input.EndDate),
		CreatedBy:     userID,
		CreatedAt:     time.Now(),
	}

	if _, err := db.CampaignsCollection.InsertOne(ctx, campaign); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to save campaign")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, campaign)
}

// GetCampaigns lists campaigns; ?active=true keeps only those running now.
func GetCampaigns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("active") == "true" {
		now := time.Now()
		filter["startDate"] = bson.M{"$lte": now}
		filter["endDate"] = bson.M{"$gte": now}
	}

	cursor, err := db.CampaignsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"startDate": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch campaigns")
		return
	}
	defer cursor.Close(ctx)

	campaigns := []models.Campaign{}
	if err := cursor.All(ctx, &campaigns); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode campaigns")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, campaigns)
}

func GetCampaign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var campaign models.Campaign
	if err := db.CampaignsCollection.FindOne(ctx, bson.M{"campaignid": ps.ByName("campaignid")}).Decode(&campaign); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Campaign not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, campaign)
}

// UpdateCampaign edits name, budget or dates on the caller's own campaign.
func UpdateCampaign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	campaignID := ps.ByName("campaignid")

	var input struct {
		Name      *string    `json:"name"`
		Budget    *float64   `json:"budget"`
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}

	update := bson.M{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Name cannot be empty")
			return
		}
		update["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Budget != nil {
		if *input.Budget <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Budget must be positive")
			return
		}
		update["budget"] = *input.Budget
	}
	if input.StartDate != nil {
		update["startDate"] = *input.StartDate
	}
	if input.EndDate != nil {
		update["endDate"] = *input.EndDate
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "No fields to update")
		return
	}

	result, err := db.CampaignsCollection.UpdateOne(ctx,
		bson.M{"campaignid": campaignID, "createdBy": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update campaign")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Campaign not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Campaign updated"})
}

func DeleteCampaign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	result, err := db.CampaignsCollection.DeleteOne(ctx,
		bson.M{"campaignid": ps.ByName("campaignid"), "createdBy": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to delete campaign")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Campaign not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Campaign deleted"})
}
