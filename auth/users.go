package auth

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProfile returns the caller's own user document, password omitted.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": userID},
		options.FindOne().SetProjection(bson.M{"password": 0, "refresh_token": 0}),
	).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile updates contact details; identity and role fields are immutable here.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid input")
		return
	}

	update := bson.M{}
	if input.Phone != "" {
		update["phone"] = input.Phone
	}
	if input.Address != "" {
		update["address"] = input.Address
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Nothing to update")
		return
	}

	_, err := db.UserCollection.UpdateOne(r.Context(), bson.M{"userid": userID}, bson.M{"$set": update})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Profile updated"})
}

// ListUsers returns all accounts (admin only; gated at the route).
func ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}

	cursor, err := db.UserCollection.Find(ctx, filter,
		options.Find().SetProjection(bson.M{"password": 0, "refresh_token": 0}).SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch users")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode users")
		return
	}
	if len(users) == 0 {
		users = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

// DeleteUser removes an account (admin only) and emails the owner afterwards.
func DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	targetID := ps.ByName("userid")

	var user models.User
	if err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": targetID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "User not found")
		return
	}

	if _, err := db.UserCollection.DeleteOne(r.Context(), bson.M{"userid": targetID}); err != nil {
		log.Printf("DeleteUser: delete failed for %s: %v", targetID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to delete user")
		return
	}

	emailer.NotifyAccountDeleted(user.Email)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "User deleted"})
}
