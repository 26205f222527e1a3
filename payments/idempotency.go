package payments

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"agrotech/db"
	"agrotech/models"
	"agrotech/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const idempotencyTTL = 24 * time.Hour

func requestHash(r *http.Request, body []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// captureWriter records the status and body written by a handler so the
// response can be replayed for a repeated idempotency key.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	wrote  bool
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wrote {
		c.status = status
		c.wrote = true
		c.ResponseWriter.WriteHeader(status)
	}
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func isDuplicateKey(err error) bool {
	we, ok := err.(mongo.WriteException)
	if !ok {
		return false
	}
	for _, e := range we.WriteErrors {
		if e.Code == 11000 {
			return true
		}
	}
	return false
}

// Idempotent replays a cached response when the client resends the same
// Idempotency-Key with the same request, and rejects the key when it is
// reused for a different request. Requests without the header pass through.
func Idempotent(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		userID := utils.GetUserIDFromRequest(r)

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, utils.ErrValidation, "Failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		hash := requestHash(r, body, userID)
		now := time.Now()
		record := models.IdempotencyRecord{
			Key:         key,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: hash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(idempotencyTTL),
		}

		ctx := r.Context()
		_, err = db.IdempotencyCollection.InsertOne(ctx, record)
		if err == nil {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next(cw, r, ps)

			var parsed interface{}
			if err := json.Unmarshal(cw.buf.Bytes(), &parsed); err != nil {
				parsed = cw.buf.String()
			}
			_, _ = db.IdempotencyCollection.UpdateOne(ctx,
				bson.M{"key": key},
				bson.M{"$set": bson.M{"response": bson.M{"status": cw.status, "body": parsed}}},
			)
			return
		}
		if !isDuplicateKey(err) {
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Idempotency lookup failed")
			return
		}

		var existing models.IdempotencyRecord
		if err := db.IdempotencyCollection.FindOne(ctx, bson.M{"key": key}).Decode(&existing); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, utils.ErrInternal, "Idempotency lookup failed")
			return
		}
		if existing.RequestHash != hash {
			utils.RespondWithError(w, http.StatusConflict, utils.ErrConflict, "Idempotency-Key was already used for a different request")
			return
		}
		if existing.Response != nil {
			status, _ := existing.Response["status"].(float64)
			utils.RespondWithJSON(w, int(status), existing.Response["body"])
			return
		}

		// first request still in flight; the handler is idempotent at the
		// database level so letting it run is safe
		next(w, r, ps)
	}
}
