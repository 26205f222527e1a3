package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrotech/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, userID string, roles []string) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	assert.NoError(t, err)
	return signed
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	reached := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reached = true
	})

	r := httptest.NewRequest("POST", "/api/complaints", nil)
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsUpgradeHeadersWithoutToken(t *testing.T) {
	reached := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reached = true
	})

	// upgrade headers must not stand in for a credential
	r := httptest.NewRequest("POST", "/api/complaints", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateSetsUserAndRoles(t *testing.T) {
	var gotUser any
	var gotRoles any
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser = r.Context().Value(globals.UserIDKey)
		gotRoles = r.Context().Value(globals.RoleKey)
	})

	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "u_123", []string{"customer"}))
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u_123", gotUser)
	assert.Equal(t, []string{"customer"}, gotRoles)
}

func TestAuthenticateRejectsBadSignature(t *testing.T) {
	reached := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		reached = true
	})

	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
