package bids

import (
	"testing"
	"time"

	"agrotech/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestValidateBid(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		amount  float64
		wantErr error
	}{
		{
			name:    "bidding disabled",
			product: models.Product{Price: 50, IsBidding: false},
			amount:  100,
			wantErr: ErrNotBiddable,
		},
		{
			name:    "equal to current price",
			product: models.Product{Price: 50, IsBidding: true},
			amount:  50,
			wantErr: ErrBidTooLow,
		},
		{
			name:    "below current price",
			product: models.Product{Price: 50, IsBidding: true},
			amount:  10,
			wantErr: ErrBidTooLow,
		},
		{
			name:    "above current price",
			product: models.Product{Price: 50, IsBidding: true},
			amount:  100,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBid(&tt.product, tt.amount)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestDemotionSparesOnlyTheWinner(t *testing.T) {
	now := time.Now()

	filter, update := demotion("pA", "b_win", false, now)

	// scoped to the product, excluding the winning bid
	assert.Equal(t, "pA", filter["productId"])
	assert.Equal(t, bson.M{"$ne": "b_win"}, filter["bidid"])

	set := update["$set"].(bson.M)
	assert.Equal(t, false, set["isWinning"])
	_, rejected := set["status"]
	assert.False(t, rejected, "placing a bid must not reject the others")
}

func TestDemotionOnAcceptRejectsLosers(t *testing.T) {
	now := time.Now()

	filter, update := demotion("pA", "b_win", true, now)

	assert.Equal(t, bson.M{"$ne": "b_win"}, filter["bidid"])

	set := update["$set"].(bson.M)
	assert.Equal(t, false, set["isWinning"])
	assert.Equal(t, models.BidRejected, set["status"])
}
