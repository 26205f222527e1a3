package products

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProducts lists products with search, category/grade, price-range and
// bidding filters plus sort and pagination.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()

	limit := int64(10)
	offset := int64(0)
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = int64(l)
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
		offset = int64(o)
	}

	filter := bson.M{}
	if category := q.Get("category"); category != "" {
		filter["category"] = category
	}
	if grade := q.Get("grade"); grade != "" {
		filter["grade"] = grade
	}
	if search := q.Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: search, Options: "i"}}
	}
	if farmer := q.Get("farmer"); farmer != "" {
		filter["farmerId"] = farmer
	}
	if bidding := q.Get("bidding"); bidding != "" {
		filter["isBidding"] = bidding == "true"
	}

	priceRange := bson.M{}
	if min := q.Get("minprice"); min != "" {
		priceRange["$gte"] = utils.ParseFloat(min)
	}
	if max := q.Get("maxprice"); max != "" {
		priceRange["$lte"] = utils.ParseFloat(max)
	}
	if len(priceRange) > 0 {
		filter["price"] = priceRange
	}

	sort := bson.D{{Key: "createdAt", Value: -1}} // default newest-first
	switch q.Get("sort") {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "name_asc":
		sort = bson.D{{Key: "name", Value: 1}}
	case "name_desc":
		sort = bson.D{{Key: "name", Value: -1}}
	}

	findOptions := options.Find().
		SetLimit(limit).
		SetSkip(offset).
		SetSort(sort)

	cursor, err := db.ProductsCollection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to fetch products")
		return
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to decode products")
		return
	}
	if len(items) == 0 {
		items = []models.Product{}
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to count products")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"items": items,
		"total": count,
	})
}

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var product models.Product
	err := db.ProductsCollection.FindOne(r.Context(), bson.M{"productid": ps.ByName("productid")}).Decode(&product)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GetCategories returns the fixed category list for pickers.
func GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, models.ProductCategories)
}
