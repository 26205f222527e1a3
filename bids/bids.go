package bids

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"agrotech/bidlive"
	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotBiddable = errors.New("bidding is not enabled for this product")
	ErrBidTooLow   = errors.New("bid must exceed the current price")
)

// validateBid applies the placement rules against a product snapshot.
func validateBid(p *models.Product, amount float64) error {
	if !p.IsBidding {
		return ErrNotBiddable
	}
	if amount <= p.Price {
		return ErrBidTooLow
	}
	return nil
}

// bumpPrice raises the product price to amount with an optimistic version
// check, so two concurrent bids cannot both win the same price read. The
// caller retries with a fresh snapshot on conflict.
func bumpPrice(ctx context.Context, p *models.Product, amount float64) (bool, error) {
	result, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": p.ProductID, "version": p.Version, "isBidding": true},
		bson.M{
			"$set": bson.M{"price": amount, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

const bumpRetries = 3

// demotion builds the filter and update that strip the winning flag from
// every other bid on the product, keeping at most one winner. The accept
// path also marks the losers rejected.
func demotion(productID, winnerBidID string, rejectLosers bool, now time.Time) (bson.M, bson.M) {
	set := bson.M{"isWinning": false, "updatedAt": now}
	if rejectLosers {
		set["status"] = models.BidRejected
	}
	return bson.M{"productId": productID, "bidid": bson.M{"$ne": winnerBidID}},
		bson.M{"$set": set}
}

// PlaceBid creates a bid, marks it winning, demotes the others and raises
// the product price to the bid amount.
func PlaceBid(hub *bidlive.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		productID := ps.ByName("productid")
		userID := utils.GetUserIDFromRequest(r)
		if userID == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Amount <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid bid amount")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		// optimistic loop: re-read and re-validate when another bid won the
		// version race between our read and our write
		var product models.Product
		bumped := false
		for attempt := 0; attempt < bumpRetries && !bumped; attempt++ {
			err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&product)
			if err != nil {
				utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
				return
			}
			if err := validateBid(&product, input.Amount); err != nil {
				utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, err.Error())
				return
			}
			bumped, err = bumpPrice(ctx, &product, input.Amount)
			if err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update product price")
				return
			}
		}
		if !bumped {
			utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Product is changing too quickly, retry the bid")
			return
		}

		bid := models.Bid{
			BidID:     utils.GenerateID("b", 10),
			ProductID: productID,
			UserID:    userID,
			Amount:    input.Amount,
			IsWinning: true,
			Status:    models.BidPending,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if _, err := db.BidsCollection.InsertOne(ctx, bid); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to place bid")
			return
		}

		// demote every other bid on the product
		filter, update := demotion(productID, bid.BidID, false, time.Now())
		if _, err := db.BidsCollection.UpdateMany(ctx, filter, update); err != nil {
			log.Printf("PlaceBid: demote others failed for %s: %v", productID, err)
		}

		hub.Publish(bidlive.Event{
			Type:      "bid_placed",
			ProductID: productID,
			BidID:     bid.BidID,
			Amount:    bid.Amount,
			Timestamp: time.Now().Unix(),
		})

		utils.RespondWithJSON(w, http.StatusCreated, bid)
	}
}

// AcceptBid marks one bid accepted and winning, rejects all others and sets
// the product price to the accepted amount. Only the product owner may accept.
func AcceptBid(hub *bidlive.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		bidID := ps.ByName("bidid")
		farmerID := utils.GetUserIDFromRequest(r)

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var bid models.Bid
		if err := db.BidsCollection.FindOne(ctx, bson.M{"bidid": bidID}).Decode(&bid); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Bid not found")
			return
		}

		var product models.Product
		if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": bid.ProductID}).Decode(&product); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
			return
		}
		if product.FarmerID != farmerID {
			utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Only the product owner can accept bids")
			return
		}

		now := time.Now()
		if _, err := db.BidsCollection.UpdateOne(ctx,
			bson.M{"bidid": bidID},
			bson.M{"$set": bson.M{"status": models.BidAccepted, "isWinning": true, "updatedAt": now}},
		); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to accept bid")
			return
		}

		filter, update := demotion(bid.ProductID, bidID, true, now)
		if _, err := db.BidsCollection.UpdateMany(ctx, filter, update); err != nil {
			log.Printf("AcceptBid: reject others failed for %s: %v", bid.ProductID, err)
		}

		if _, err := db.ProductsCollection.UpdateOne(ctx,
			bson.M{"productid": bid.ProductID},
			bson.M{"$set": bson.M{"price": bid.Amount, "updatedAt": now}, "$inc": bson.M{"version": 1}},
		); err != nil {
			log.Printf("AcceptBid: price update failed for %s: %v", bid.ProductID, err)
		}

		hub.Publish(bidlive.Event{
			Type:      "bid_accepted",
			ProductID: bid.ProductID,
			BidID:     bidID,
			Amount:    bid.Amount,
			Timestamp: now.Unix(),
		})

		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Bid accepted"})
	}
}

// RejectBid marks a single bid rejected; the product is untouched.
func RejectBid(hub *bidlive.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		bidID := ps.ByName("bidid")
		farmerID := utils.GetUserIDFromRequest(r)

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var bid models.Bid
		if err := db.BidsCollection.FindOne(ctx, bson.M{"bidid": bidID}).Decode(&bid); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Bid not found")
			return
		}

		var product models.Product
		if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": bid.ProductID}).Decode(&product); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
			return
		}
		if product.FarmerID != farmerID {
			utils.RespondWithError(w, http.StatusForbidden, utils.ErrUnauthorized, "Only the product owner can reject bids")
			return
		}

		result, err := db.BidsCollection.UpdateOne(ctx,
			bson.M{"bidid": bidID},
			bson.M{"$set": bson.M{"status": models.BidRejected, "isWinning": false, "updatedAt": time.Now()}},
		)
		if err != nil || result.MatchedCount == 0 {
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to reject bid")
			return
		}

		hub.Publish(bidlive.Event{
			Type:      "bid_rejected",
			ProductID: bid.ProductID,
			BidID:     bidID,
			Amount:    bid.Amount,
			Timestamp: time.Now().Unix(),
		})

		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Bid rejected"})
	}
}

func listBids(ctx context.Context, filter bson.M) ([]models.Bid, error) {
	cursor, err := db.BidsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bids []models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		bids = []models.Bid{}
	}
	return bids, nil
}

// GetProductBids lists all bids on a product, newest first.
func GetProductBids(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bids, err := listBids(r.Context(), bson.M{"productId": ps.ByName("productid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch bids")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bids)
}

// GetBuyerBids lists the caller's own bids, newest first.
func GetBuyerBids(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}
	bids, err := listBids(r.Context(), bson.M{"userId": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch bids")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bids)
}
