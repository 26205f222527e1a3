package complaints

import (
	"testing"

	"agrotech/models"

	"github.com/stretchr/testify/assert"
)

func TestComplaintTransitions(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{models.ComplaintPending, models.ComplaintInReview, true},
		{models.ComplaintPending, models.ComplaintResolved, true},
		{models.ComplaintPending, models.ComplaintIgnored, true},
		{models.ComplaintInReview, models.ComplaintResolved, true},
		{models.ComplaintInReview, models.ComplaintIgnored, true},
		{models.ComplaintInReview, models.ComplaintPending, false},
		{models.ComplaintResolved, models.ComplaintInReview, false},
		{models.ComplaintIgnored, models.ComplaintResolved, false},
		{models.ComplaintPending, models.ComplaintPending, false},
		{models.ComplaintPending, "escalated", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, canTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
