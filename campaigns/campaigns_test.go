package campaigns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaignEndDateDefaultsToThirtyDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got := campaignEndDate(start, time.Time{})
	assert.Equal(t, start.AddDate(0, 0, 30), got)
}

func TestCampaignEndDateKeepsExplicitValue(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, end, campaignEndDate(start, end))
}
