// Package api exposes the read-only HTTP surface: product listing,
// per-product analytics and the raw history window. It never writes.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/storage"
	"github.com/valmer/pricetracker/internal/tracker"
)

// Handler serves the read routes from storage plus the analytics engine.
type Handler struct {
	store  storage.Store
	window int
	logger *zap.Logger
}

func NewHandler(store storage.Store, analyticsWindow int, logger *zap.Logger) *Handler {
	return &Handler{store: store, window: analyticsWindow, logger: logger}
}

// Register mounts the routes on the router and installs the JSON 404.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/products/:id", h.GetProduct)
	r.GET("/api/products/:id/history", h.GetHistory)
	r.GET("/api/analytics", h.GetAnalytics)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// ListProducts returns all active products.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.store.ListActiveProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	if products == nil {
		products = []tracker.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.store.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("get product failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetAnalytics computes the analytics result for one product over the
// configured history window.
func (h *Handler) GetAnalytics(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_id is required"})
		return
	}

	ctx := c.Request.Context()
	product, err := h.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("get product failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}

	history, err := h.store.QueryHistory(ctx, productID, h.window)
	if err != nil {
		h.logger.Error("query history failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, tracker.Analyze(product.Name, history, h.window))
}

// GetHistory returns the ascending history window for one product.
func (h *Handler) GetHistory(c *gin.Context) {
	productID := c.Param("id")

	ctx := c.Request.Context()
	if _, err := h.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("get product failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}

	history, err := h.store.QueryHistory(ctx, productID, h.window)
	if err != nil {
		h.logger.Error("query history failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}
	if history == nil {
		history = []tracker.HistoryRecord{}
	}
	c.JSON(http.StatusOK, history)
}
