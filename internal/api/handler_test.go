package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/storage"
	"github.com/valmer/pricetracker/internal/tracker"
)

func newTestRouter(store storage.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store, 30, zap.NewNop()).Register(r)
	return r
}

func seedHistory(t *testing.T, store *storage.Memory, productID string, prices ...float64) {
	t.Helper()
	var prev *float64
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		change, percent := tracker.Detect(prev, p)
		require.NoError(t, store.AppendHistory(context.Background(), tracker.HistoryRecord{
			ProductID:          productID,
			Timestamp:          base.Add(time.Duration(i) * time.Hour),
			Price:              p,
			PriceChange:        change,
			PriceChangePercent: percent,
		}))
		v := p
		prev = &v
	}
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListProducts(t *testing.T) {
	store := storage.NewMemory()
	last := 49.99
	updated := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	store.PutProduct(tracker.Product{ID: "p-1", URL: "http://shop/1", Name: "Mechanical Keyboard", Active: true, LastPrice: &last, LastUpdated: &updated})
	store.PutProduct(tracker.Product{ID: "p-2", URL: "http://shop/2", Name: "Retired Widget", Active: false})

	w := get(newTestRouter(store), "/api/products")
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p-1", got[0]["product_id"])
	assert.Equal(t, "Mechanical Keyboard", got[0]["product_name"])
	assert.Equal(t, 49.99, got[0]["last_price"])
	assert.Equal(t, true, got[0]["active"])
}

func TestListProductsEmpty(t *testing.T) {
	w := get(newTestRouter(storage.NewMemory()), "/api/products")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetProduct(t *testing.T) {
	t.Run("returns the product", func(t *testing.T) {
		store := storage.NewMemory()
		last := 49.99
		store.PutProduct(tracker.Product{ID: "p-1", URL: "http://shop/1", Name: "Mechanical Keyboard", Active: true, LastPrice: &last})

		w := get(newTestRouter(store), "/api/products/p-1")
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "p-1", got["product_id"])
		assert.Equal(t, "Mechanical Keyboard", got["product_name"])
		assert.Equal(t, 49.99, got["last_price"])
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		w := get(newTestRouter(storage.NewMemory()), "/api/products/ghost")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})
}

func TestGetAnalytics(t *testing.T) {
	t.Run("returns the computed result", func(t *testing.T) {
		store := storage.NewMemory()
		store.PutProduct(tracker.Product{ID: "p-1", Name: "Mechanical Keyboard", Active: true})
		seedHistory(t, store, "p-1", 100, 90, 120, 95)

		w := get(newTestRouter(store), "/api/analytics?product_id=p-1")
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Mechanical Keyboard", got["product_name"])
		assert.Equal(t, 95.0, got["current_price"])
		assert.Equal(t, 90.0, got["historical_low"])
		assert.Equal(t, 5.0, got["potential_savings"])
		assert.Contains(t, got, "price_change")
		assert.Contains(t, got, "recommendation")
		assert.Contains(t, got, "trend")
		assert.Contains(t, got, "volatility")
	})

	t.Run("missing product_id is not found", func(t *testing.T) {
		w := get(newTestRouter(storage.NewMemory()), "/api/analytics")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		w := get(newTestRouter(storage.NewMemory()), "/api/analytics?product_id=ghost")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})
}

func TestGetHistory(t *testing.T) {
	t.Run("returns ascending records", func(t *testing.T) {
		store := storage.NewMemory()
		store.PutProduct(tracker.Product{ID: "p-1", Name: "Mechanical Keyboard", Active: true})
		seedHistory(t, store, "p-1", 100, 94)

		w := get(newTestRouter(store), "/api/products/p-1/history")
		require.Equal(t, http.StatusOK, w.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, 100.0, got[0]["price"])
		assert.Equal(t, 94.0, got[1]["price"])
		assert.InDelta(t, -0.06, got[1]["price_change_percent"].(float64), 1e-9)
		assert.NotContains(t, got[0], "expires_at")
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		w := get(newTestRouter(storage.NewMemory()), "/api/products/ghost/history")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	w := get(newTestRouter(storage.NewMemory()), "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
