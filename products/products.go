package products

import (
	"context"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateProduct registers a new listing owned by the requesting farmer.
// Accepts multipart form data so images can ride along.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, utils.ErrUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid form data")
		return
	}

	product := parseProductForm(r)
	product.ProductID = utils.GenerateID("p", 10)
	product.FarmerID = farmerID
	product.Version = 1
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	if msg := validateProduct(&product); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, msg)
		return
	}

	// saved images become public URIs on the document
	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["images"] {
			file, err := hdr.Open()
			if err != nil {
				continue
			}
			uri, err := utils.SaveProductImage(file, hdr)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, err.Error())
				return
			}
			product.Images = append(product.Images, uri)
		}
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if _, err := db.ProductsCollection.InsertOne(r.Context(), product); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to create product")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

func parseProductForm(r *http.Request) models.Product {
	return models.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       utils.ParseFloat(r.FormValue("price")),
		Category:    r.FormValue("category"),
		Grade:       r.FormValue("grade"),
		Stock:       utils.ParseInt(r.FormValue("stock")),
		IsBidding:   r.FormValue("isBidding") == "true",
	}
}

func validateProduct(p *models.Product) string {
	switch {
	case p.Name == "":
		return "Name is required"
	case p.Price <= 0:
		return "Price must be positive"
	case p.Stock < 0:
		return "Stock cannot be negative"
	case !models.ValidCategory(p.Category):
		return "Unknown category"
	case !models.ValidGrade(p.Grade):
		return "Grade must be A, B or C"
	}
	return ""
}

// UpdateProduct mutates fields of a listing the caller owns. The version
// counter is bumped so concurrent bid/order writes detect the change.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	productID := ps.ByName("productid")
	farmerID := utils.GetUserIDFromRequest(r)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Invalid form data")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if v := r.FormValue("name"); v != "" {
		update["name"] = v
	}
	if v := r.FormValue("description"); v != "" {
		update["description"] = v
	}
	if v := r.FormValue("price"); v != "" {
		price := utils.ParseFloat(v)
		if price <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Price must be positive")
			return
		}
		update["price"] = price
	}
	if v := r.FormValue("category"); v != "" {
		if !models.ValidCategory(v) {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Unknown category")
			return
		}
		update["category"] = v
	}
	if v := r.FormValue("grade"); v != "" {
		if !models.ValidGrade(v) {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Grade must be A, B or C")
			return
		}
		update["grade"] = v
	}
	if v := r.FormValue("stock"); v != "" {
		stock := utils.ParseInt(v)
		if stock < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Stock cannot be negative")
			return
		}
		update["stock"] = stock
	}
	if v := r.FormValue("isBidding"); v != "" {
		update["isBidding"] = v == "true"
	}

	result, err := db.ProductsCollection.UpdateOne(r.Context(),
		bson.M{"productid": productID, "farmerId": farmerID},
		bson.M{"$set": update, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to update product")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found or not owned by you")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Product updated"})
}

// DeleteProduct hard-deletes a listing and cascades to its bids and orders.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	productID := ps.ByName("productid")
	farmerID := utils.GetUserIDFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := db.ProductsCollection.DeleteOne(ctx, bson.M{"productid": productID, "farmerId": farmerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Failed to delete product")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, utils.ErrNotFound, "Product not found or not owned by you")
		return
	}

	// hard cascade, matching the delete semantics of the rest of the system
	cascade(ctx, db.BidsCollection, productID)
	cascade(ctx, db.OrdersCollection, productID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Product deleted"})
}

func cascade(ctx context.Context, coll *mongo.Collection, productID string) {
	// cascade failures leave orphans but must not fail the delete itself
	coll.DeleteMany(ctx, bson.M{"productId": productID})
}
