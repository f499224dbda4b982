package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valmer/pricetracker/internal/tracker"
)

func TestMemoryProducts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.PutProduct(tracker.Product{ID: "b", URL: "https://example.com/b", Active: true})
	m.PutProduct(tracker.Product{ID: "a", URL: "https://example.com/a", Active: true})
	m.PutProduct(tracker.Product{ID: "c", URL: "https://example.com/c", Active: false})

	t.Run("lists only active products in stable order", func(t *testing.T) {
		list, err := m.ListActiveProducts(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a", list[0].ID)
		assert.Equal(t, "b", list[1].ID)
	})

	t.Run("get unknown product", func(t *testing.T) {
		_, err := m.GetProduct(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update price", func(t *testing.T) {
		ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, m.UpdateProductPrice(ctx, "a", 19.99, ts))

		p, err := m.GetProduct(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, p.LastPrice)
		assert.Equal(t, 19.99, *p.LastPrice)
		require.NotNil(t, p.LastUpdated)
		assert.Equal(t, ts, *p.LastUpdated)
	})

	t.Run("update name", func(t *testing.T) {
		require.NoError(t, m.UpdateProductName(ctx, "b", "Garden Hose"))

		p, err := m.GetProduct(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "Garden Hose", p.Name)
	})

	t.Run("update unknown product", func(t *testing.T) {
		err := m.UpdateProductPrice(ctx, "nope", 1, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)

		err = m.UpdateProductName(ctx, "nope", "x")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, price := range []float64{100, 90, 120, 95} {
		require.NoError(t, m.AppendHistory(ctx, tracker.HistoryRecord{
			ProductID: "a",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Price:     price,
		}))
	}
	// another product's records must not bleed in
	require.NoError(t, m.AppendHistory(ctx, tracker.HistoryRecord{
		ProductID: "b", Timestamp: base, Price: 1,
	}))

	t.Run("ascending insertion order", func(t *testing.T) {
		recs, err := m.QueryHistory(ctx, "a", 0)
		require.NoError(t, err)
		require.Len(t, recs, 4)
		for i := 1; i < len(recs); i++ {
			assert.True(t, recs[i].Timestamp.After(recs[i-1].Timestamp))
		}
		assert.Equal(t, []float64{100, 90, 120, 95}, prices(recs))
	})

	t.Run("window keeps the most recent records", func(t *testing.T) {
		recs, err := m.QueryHistory(ctx, "a", 2)
		require.NoError(t, err)
		assert.Equal(t, []float64{120, 95}, prices(recs))
	})

	t.Run("unknown product yields empty history", func(t *testing.T) {
		recs, err := m.QueryHistory(ctx, "nope", 10)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestMemoryAlerts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AppendAlert(ctx, tracker.Alert{AlertID: "a1", ProductID: "a"}))
	require.NoError(t, m.AppendAlert(ctx, tracker.Alert{AlertID: "a2", ProductID: "b"}))

	alerts := m.Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, "a1", alerts[0].AlertID)
	assert.Equal(t, "a2", alerts[1].AlertID)
}

func prices(recs []tracker.HistoryRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Price
	}
	return out
}
