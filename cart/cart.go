package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mergeItem folds a new line into the items list: quantities add up when the
// product is already present, otherwise the line is appended.
func mergeItem(items []models.CartItem, productID string, quantity int, now time.Time) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{
		ItemID:    utils.GenerateID("ci", 8),
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
	})
}

// AddToCart merges the product into the user's single cart, creating the
// cart lazily on first use. Stock is only checked at checkout.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid JSON payload")
		return
	}
	if input.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Quantity must be positive")
		return
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"productid": input.ProductID})
	if err != nil || count == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
		return
	}

	now := time.Now()
	var cart models.Cart
	err = db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	switch {
	case err == mongo.ErrNoDocuments:
		cart = models.Cart{
			CartID:    utils.GenerateID("c", 10),
			UserID:    userID,
			Items:     mergeItem(nil, input.ProductID, input.Quantity, now),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := db.CartsCollection.InsertOne(ctx, cart); err != nil {
			// unique index on userId means a concurrent add already created
			// the cart; fall through to the update path
			if !mongo.IsDuplicateKeyError(err) {
				log.Println("AddToCart insert error:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to add to cart")
				return
			}
			if err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to add to cart")
				return
			}
			cart.Items = mergeItem(cart.Items, input.ProductID, input.Quantity, now)
			if err := saveItems(ctx, userID, cart.Items); err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to add to cart")
				return
			}
		}
	case err != nil:
		log.Println("AddToCart find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to add to cart")
		return
	default:
		cart.Items = mergeItem(cart.Items, input.ProductID, input.Quantity, now)
		if err := saveItems(ctx, userID, cart.Items); err != nil {
			log.Println("AddToCart update error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to add to cart")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, cart)
}

func saveItems(ctx context.Context, userID string, items []models.CartItem) error {
	_, err := db.CartsCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
	)
	return err
}

// GetCart returns the user's cart, or an empty one if none exists yet.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	var cart models.Cart
	err := db.CartsCollection.FindOne(r.Context(), bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithJSON(w, http.StatusOK, models.Cart{UserID: userID, Items: []models.CartItem{}})
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Could not retrieve cart")
		return
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	utils.RespondWithJSON(w, http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of one line directly. Stock is not
// re-checked here; checkout is the gate.
func UpdateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	itemID := ps.ByName("itemid")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Quantity must be positive")
		return
	}

	result, err := db.CartsCollection.UpdateOne(r.Context(),
		bson.M{"userId": userID, "items.itemId": itemID},
		bson.M{"$set": bson.M{"items.$.quantity": input.Quantity, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update cart")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Cart or item not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Cart updated"})
}

// RemoveFromCart filters the line out of the items list.
func RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	itemID := ps.ByName("itemid")

	result, err := db.CartsCollection.UpdateOne(r.Context(),
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"itemId": itemID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to remove item")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Cart not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Item removed"})
}
