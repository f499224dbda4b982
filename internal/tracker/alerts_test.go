package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	pct := func(v float64) *float64 { return &v }

	t.Run("drop beyond threshold produces PRICE_DROP", func(t *testing.T) {
		alert := Decide("prod-1", 100, 94, pct(-0.06), 0.05)
		require.NotNil(t, alert)
		assert.Equal(t, AlertTypePriceDrop, alert.AlertType)
		assert.Equal(t, "prod-1", alert.ProductID)
		assert.Equal(t, 100.0, alert.PreviousPrice)
		assert.Equal(t, 94.0, alert.CurrentPrice)
		assert.InDelta(t, -0.06, alert.PriceChangePercent, 1e-9)
		assert.NotEmpty(t, alert.AlertID)
		assert.WithinDuration(t, time.Now().UTC(), alert.Timestamp, 5*time.Second)
		require.NotNil(t, alert.ExpiresAt)
		assert.True(t, alert.ExpiresAt.After(alert.Timestamp))
	})

	t.Run("increase beyond threshold produces PRICE_INCREASE", func(t *testing.T) {
		alert := Decide("prod-1", 100, 110, pct(0.10), 0.05)
		require.NotNil(t, alert)
		assert.Equal(t, AlertTypePriceIncrease, alert.AlertType)
	})

	t.Run("change below threshold is ignored", func(t *testing.T) {
		assert.Nil(t, Decide("prod-1", 100, 97, pct(-0.03), 0.05))
	})

	t.Run("change exactly at threshold alerts", func(t *testing.T) {
		alert := Decide("prod-1", 100, 95, pct(-0.05), 0.05)
		require.NotNil(t, alert)
		assert.Equal(t, AlertTypePriceDrop, alert.AlertType)
	})

	t.Run("undefined percent never alerts", func(t *testing.T) {
		assert.Nil(t, Decide("prod-1", 0, 50, nil, 0.05))
	})

	t.Run("alert ids are unique", func(t *testing.T) {
		a := Decide("prod-1", 100, 90, pct(-0.10), 0.05)
		b := Decide("prod-1", 100, 90, pct(-0.10), 0.05)
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.NotEqual(t, a.AlertID, b.AlertID)
	})
}
