package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"agrotech/db"
	"agrotech/emailer"
	"agrotech/models"
	"agrotech/rdx"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Orders are priced in INR; the gateway charges in USD at a fixed rate. The
// rate is configurable, not fetched live.
const (
	defaultExchangeRate = 0.012
	gatewayCurrency     = "usd"
	lockTTL             = 5 * time.Second
)

type PaymentService struct {
	Gateway Gateway
}

func NewService(gw Gateway) *PaymentService {
	return &PaymentService{Gateway: gw}
}

func exchangeRate() float64 {
	if raw := os.Getenv("PAYMENT_EXCHANGE_RATE"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate > 0 {
			return rate
		}
	}
	return defaultExchangeRate
}

// gatewayAmount converts an INR total into minor units of the gateway
// currency, rounded to the nearest cent.
func gatewayAmount(totalINR, rate float64) int64 {
	return int64(math.Round(totalINR * rate * 100))
}

var (
	errOrderMismatch = errors.New("payment intent does not belong to this order")
	errNotCompleted  = errors.New("payment not completed")
	errNotBuyer      = errors.New("order belongs to another buyer")
	errNotPayable    = errors.New("order is not awaiting payment")
)

// confirmOutcome decides what a confirm call may do with the order before
// the gateway is consulted. alreadyPaid means this exact intent was applied
// before and the settled order should be returned as-is; only a pending
// order owned by the caller may proceed to application.
func confirmOutcome(order *models.Order, callerID, intentID string) (alreadyPaid bool, err error) {
	if order.BuyerID != callerID {
		return false, errNotBuyer
	}
	if order.Status == models.OrderPaid && order.PaymentIntentID == intentID {
		return true, nil
	}
	if order.Status != models.OrderPending {
		return false, errNotPayable
	}
	return false, nil
}

// checkIntent validates a retrieved intent against the order the caller
// claims to be paying for.
func checkIntent(intent *Intent, orderID string) error {
	if intent.Metadata["orderId"] != orderID {
		return errOrderMismatch
	}
	if intent.Status != IntentSucceeded {
		return fmt.Errorf("%w, gateway status is %q", errNotCompleted, intent.Status)
	}
	return nil
}

// InitiatePayment creates a gateway intent for a pending order owned by the
// caller and records an initiated transaction. The intent id is not stored on
// the order yet; that only happens at confirm time.
func (p *PaymentService) InitiatePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	orderID := ps.ByName("orderid")

	acquired, err := rdx.RdxSetNX("payment_lock:"+userID, "1", lockTTL)
	if err != nil || !acquired {
		utils.RespondWithError(w, http.StatusTooManyRequests, utils.ErrConflict, "Another payment is in progress, retry shortly")
		return
	}
	defer rdx.RdxDel("payment_lock:" + userID)

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Order not found")
		return
	}
	if order.BuyerID != userID {
		utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Not your order")
		return
	}
	if order.Status != models.OrderPending {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Order is not awaiting payment")
		return
	}

	rate := exchangeRate()
	amount := gatewayAmount(order.TotalPrice, rate)
	intent, err := p.Gateway.CreatePaymentIntent(amount, gatewayCurrency, map[string]string{
		"orderId":        order.OrderID,
		"productName":    order.ProductName,
		"originalAmount": fmt.Sprintf("%.2f", order.TotalPrice),
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, utils.ErrExternal, "Payment gateway error: "+err.Error())
		return
	}

	now := time.Now()
	txn := models.Transaction{
		ID:             utils.GetUUID(),
		UserID:         userID,
		OrderID:        order.OrderID,
		IntentID:       intent.ID,
		Amount:         float64(amount) / 100,
		OriginalAmount: order.TotalPrice,
		Currency:       gatewayCurrency,
		Status:         "initiated",
		CreatedAt:      now,
		UpdatedAt:      now,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Meta:           models.Meta{"productName": order.ProductName, "rate": rate},
	}
	if _, err := db.TransactionCollection.InsertOne(ctx, txn); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to record transaction")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
		"amount":          intent.Amount,
		"currency":        intent.Currency,
	})
}

// ConfirmPayment reconciles a gateway intent against its order. The paid
// state is applied with a filter on the current pending status, so a repeat
// confirm of an already-applied intent changes nothing.
func (p *PaymentService) ConfirmPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var input struct {
		PaymentIntentID string `json:"paymentIntentId"`
		OrderID         string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}
	if input.PaymentIntentID == "" || input.OrderID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "paymentIntentId and orderId are required")
		return
	}

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": input.OrderID}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Order not found")
		return
	}

	alreadyPaid, err := confirmOutcome(&order, userID, input.PaymentIntentID)
	switch {
	case errors.Is(err, errNotBuyer):
		utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Not your order")
		return
	case errors.Is(err, errNotPayable):
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, err.Error())
		return
	}
	// Repeat confirm of a settled order is a success, not an error.
	if alreadyPaid {
		utils.RespondWithJSON(w, http.StatusOK, order)
		return
	}

	intent, err := p.Gateway.RetrievePaymentIntent(input.PaymentIntentID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, utils.ErrExternal, "Payment gateway error: "+err.Error())
		return
	}

	switch err := checkIntent(intent, input.OrderID); {
	case errors.Is(err, errOrderMismatch):
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, err.Error())
		return
	case errors.Is(err, errNotCompleted):
		utils.RespondWithError(w, http.StatusConflict, utils.ErrExternal, err.Error())
		return
	}

	now := time.Now()
	result, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": input.OrderID, "status": models.OrderPending},
		bson.M{"$set": bson.M{
			"status":          models.OrderPaid,
			"paymentIntentId": intent.ID,
			"paymentAmount":   float64(intent.Amount) / 100,
			"paidAt":          now,
			"updatedAt":       now,
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update order")
		return
	}
	if result.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Order is not awaiting payment")
		return
	}

	_, _ = db.TransactionCollection.UpdateOne(ctx,
		bson.M{"intent_id": intent.ID},
		bson.M{"$set": bson.M{"state": "success", "updated_at": now}},
	)

	notifyPaid(order.BuyerID, input.OrderID)

	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": input.OrderID}).Decode(&order); err == nil {
		utils.RespondWithJSON(w, http.StatusOK, order)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"orderid": input.OrderID, "status": models.OrderPaid})
}

func notifyPaid(buyerID, orderID string) {
	var buyer struct {
		Email string `bson:"email"`
	}
	if err := db.UserCollection.FindOne(context.Background(), bson.M{"userid": buyerID}).Decode(&buyer); err == nil && buyer.Email != "" {
		emailer.NotifyOrderStatus(buyer.Email, orderID, models.OrderPaid)
	}
}

// GetUserTransactions lists the caller's payment attempts, newest first.
func (p *PaymentService) GetUserTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	cursor, err := db.TransactionCollection.Find(ctx, bson.M{"userid": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch transactions")
		return
	}
	defer cursor.Close(ctx)

	txns := []models.Transaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode transactions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, txns)
}
