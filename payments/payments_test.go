package payments

import (
	"net/http/httptest"
	"testing"

	"agrotech/models"

	"github.com/stretchr/testify/assert"
)

func TestGatewayAmount(t *testing.T) {
	// 2500 INR at 0.012 INR->USD is 30 USD, 3000 cents
	assert.Equal(t, int64(3000), gatewayAmount(2500, 0.012))
	// rounds to the nearest cent
	assert.Equal(t, int64(120), gatewayAmount(99.99, 0.012))
	assert.Equal(t, int64(0), gatewayAmount(0, 0.012))
}

func TestCheckIntent(t *testing.T) {
	intent := &Intent{
		ID:       "pi_1",
		Status:   IntentSucceeded,
		Metadata: map[string]string{"orderId": "o_abc"},
	}

	assert.NoError(t, checkIntent(intent, "o_abc"))

	err := checkIntent(intent, "o_other")
	assert.ErrorIs(t, err, errOrderMismatch)

	intent.Status = "requires_payment_method"
	err = checkIntent(intent, "o_abc")
	assert.ErrorIs(t, err, errNotCompleted)
	assert.Contains(t, err.Error(), "requires_payment_method")
}

func TestConfirmOutcome(t *testing.T) {
	pending := &models.Order{OrderID: "o_1", BuyerID: "u_buyer", Status: models.OrderPending}

	alreadyPaid, err := confirmOutcome(pending, "u_buyer", "pi_1")
	assert.NoError(t, err)
	assert.False(t, alreadyPaid)

	// only the buyer may settle the order
	_, err = confirmOutcome(pending, "u_stranger", "pi_1")
	assert.ErrorIs(t, err, errNotBuyer)

	// a repeat confirm with the applied intent is a no-op success
	paid := &models.Order{OrderID: "o_1", BuyerID: "u_buyer", Status: models.OrderPaid, PaymentIntentID: "pi_1"}
	alreadyPaid, err = confirmOutcome(paid, "u_buyer", "pi_1")
	assert.NoError(t, err)
	assert.True(t, alreadyPaid)

	// a different intent cannot re-settle a paid order
	_, err = confirmOutcome(paid, "u_buyer", "pi_2")
	assert.ErrorIs(t, err, errNotPayable)

	// shipped, delivered and cancelled orders take no payment at all
	for _, status := range []string{models.OrderShipped, models.OrderDelivered, models.OrderCancelled, models.OrderCashOnDelivery} {
		order := &models.Order{OrderID: "o_1", BuyerID: "u_buyer", Status: status}
		_, err = confirmOutcome(order, "u_buyer", "pi_1")
		assert.ErrorIs(t, err, errNotPayable, status)
	}
}

func TestLocalGatewayRoundTrip(t *testing.T) {
	gw := NewLocalGateway()

	intent, err := gw.CreatePaymentIntent(3000, "usd", map[string]string{"orderId": "o_1"})
	assert.NoError(t, err)
	assert.Equal(t, IntentSucceeded, intent.Status)
	assert.NotEmpty(t, intent.ClientSecret)

	got, err := gw.RetrievePaymentIntent(intent.ID)
	assert.NoError(t, err)
	assert.Equal(t, intent.ID, got.ID)
	assert.Equal(t, "o_1", got.Metadata["orderId"])

	_, err = gw.RetrievePaymentIntent("pi_missing")
	assert.Error(t, err)

	_, err = gw.CreatePaymentIntent(0, "usd", nil)
	assert.Error(t, err)
}

func TestRequestHashDiffersByBodyAndUser(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/payments/confirm", nil)

	a := requestHash(r, []byte(`{"orderId":"o_1"}`), "u_1")
	b := requestHash(r, []byte(`{"orderId":"o_2"}`), "u_1")
	c := requestHash(r, []byte(`{"orderId":"o_1"}`), "u_2")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, requestHash(r, []byte(`{"orderId":"o_1"}`), "u_1"))
}
