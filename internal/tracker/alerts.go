package tracker

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// alertRetention is how long an alert stays relevant before storage may
// expire it. Mirrors the 90-day marker the history retention policy uses
// for alerts.
const alertRetention = 90 * 24 * time.Hour

// Decide returns an Alert when the observed change crosses the threshold,
// nil otherwise. percent is the fractional change from Detect; a nil percent
// (baseline or zero-previous observation) never alerts. threshold is a
// fraction, e.g. 0.05 for 5%.
//
// At most one alert is produced per product per batch run; there is no
// deduplication against alerts from earlier runs.
func Decide(productID string, previous, current float64, percent *float64, threshold float64) *Alert {
	if percent == nil {
		return nil
	}
	if math.Abs(*percent) < threshold {
		return nil
	}

	alertType := AlertTypePriceIncrease
	if *percent < 0 {
		alertType = AlertTypePriceDrop
	}

	now := time.Now().UTC()
	expires := now.Add(alertRetention)
	return &Alert{
		AlertID:            uuid.NewString(),
		ProductID:          productID,
		AlertType:          alertType,
		PreviousPrice:      previous,
		CurrentPrice:       current,
		PriceChangePercent: *percent,
		Timestamp:          now,
		ExpiresAt:          &expires,
	}
}
