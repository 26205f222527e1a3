package models

import "time"

// User roles
const (
	RoleAdmin    = "admin"
	RoleFarmer   = "farmer"
	RoleCustomer = "customer"
	RoleSeller   = "seller"
)

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"password,omitempty" bson:"password"`
	Role          []string  `json:"role" bson:"role"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address       string    `json:"address,omitempty" bson:"address,omitempty"`
	EmailVerified bool      `json:"email_verified" bson:"email_verified"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// ValidRole reports whether role is one of the four account types.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFarmer, RoleCustomer, RoleSeller:
		return true
	}
	return false
}
