package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"agrotech/db"
	"agrotech/emailer"
	"agrotech/rdx"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

func GenerateOTP(length int) string {
	return utils.GenerateRandomDigitString(length)
}

// RequestOTPHandler re-issues a verification code for an unverified account.
func RequestOTPHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Email is required")
		return
	}

	count, err := db.UserCollection.CountDocuments(context.TODO(), bson.M{"email": input.Email})
	if err != nil || count == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "No account for that email")
		return
	}

	otp := GenerateOTP(6)
	if err := emailer.SendOTP(input.Email, otp); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrExternal, "Failed to send OTP")
		return
	}
	if err := rdx.SetWithExpiry("otp:"+input.Email, otp, otpTTL); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to store OTP")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "OTP sent"})
}

func VerifyOTPHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid input")
		return
	}

	storedOTP, err := rdx.RdxGet("otp:" + input.Email)
	if err != nil || storedOTP != input.OTP {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Invalid or expired OTP")
		return
	}

	var user struct {
		Username string `bson:"username"`
	}
	err = db.UserCollection.FindOneAndUpdate(
		context.TODO(),
		bson.M{"email": input.Email},
		bson.M{"$set": bson.M{"email_verified": true}},
	).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to verify user")
		return
	}

	rdx.RdxDel("otp:" + input.Email) // Clean up OTP
	emailer.NotifyWelcome(input.Email, user.Username)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "User verified successfully"})
}
