package orders

import (
	"testing"

	"agrotech/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending can be paid", models.OrderPending, models.OrderPaid, true},
		{"pending can be cancelled", models.OrderPending, models.OrderCancelled, true},
		{"paid ships", models.OrderPaid, models.OrderShipped, true},
		{"shipped delivers", models.OrderShipped, models.OrderDelivered, true},
		{"cod ships without payment", models.OrderCashOnDelivery, models.OrderShipped, true},
		{"pending cannot ship", models.OrderPending, models.OrderShipped, false},
		{"paid cannot cancel", models.OrderPaid, models.OrderCancelled, false},
		{"delivered is terminal", models.OrderDelivered, models.OrderShipped, false},
		{"cancelled is terminal", models.OrderCancelled, models.OrderPaid, false},
		{"no self transition", models.OrderPaid, models.OrderPaid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, canTransition(tc.from, tc.to))
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		models.OrderPending, models.OrderCashOnDelivery, models.OrderPaid,
		models.OrderShipped, models.OrderDelivered, models.OrderCancelled,
	} {
		assert.True(t, validStatus(s), s)
	}
	assert.False(t, validStatus("foo"))
	assert.False(t, validStatus(""))
	assert.False(t, validStatus("PAID"))
}

func TestCanManage(t *testing.T) {
	order := &models.Order{BuyerID: "u_buyer", FarmerID: "u_farmer"}

	assert.True(t, canManage(order, "u_buyer", []string{models.RoleCustomer}, models.OrderCancelled))
	assert.False(t, canManage(order, "u_buyer", []string{models.RoleCustomer}, models.OrderShipped))

	assert.True(t, canManage(order, "u_farmer", []string{models.RoleFarmer}, models.OrderShipped))
	assert.True(t, canManage(order, "u_farmer", []string{models.RoleFarmer}, models.OrderDelivered))
	assert.False(t, canManage(order, "u_farmer", []string{models.RoleFarmer}, models.OrderCancelled))

	assert.True(t, canManage(order, "u_admin", []string{models.RoleAdmin}, models.OrderCancelled))
	assert.False(t, canManage(order, "u_other", []string{models.RoleCustomer}, models.OrderCancelled))
}

func TestCanView(t *testing.T) {
	order := &models.Order{BuyerID: "u_buyer", FarmerID: "u_farmer"}

	assert.True(t, canView(order, "u_buyer", []string{models.RoleCustomer}))
	assert.True(t, canView(order, "u_farmer", []string{models.RoleFarmer}))
	assert.True(t, canView(order, "u_stranger", []string{models.RoleAdmin}))
	assert.False(t, canView(order, "u_stranger", []string{models.RoleCustomer}))
}
