// Package storage provides the persistence collaborator for the tracker
// core: a Postgres implementation backed by pgx and an in-memory fake for
// tests and local runs. Every write is atomic per item; no multi-item
// transactions are offered or needed.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/valmer/pricetracker/internal/tracker"
)

// ErrNotFound is returned for reads and updates against unknown products.
var ErrNotFound = errors.New("not found")

// Store is the narrow persistence contract the core depends on.
type Store interface {
	// GetProduct returns a product by id, or ErrNotFound.
	GetProduct(ctx context.Context, id string) (*tracker.Product, error)

	// ListActiveProducts returns all products with active = true.
	ListActiveProducts(ctx context.Context) ([]tracker.Product, error)

	// UpdateProductPrice sets last_price and last_updated for one product.
	UpdateProductPrice(ctx context.Context, id string, price float64, ts time.Time) error

	// UpdateProductName sets the display name for one product.
	UpdateProductName(ctx context.Context, id string, name string) error

	// AppendHistory appends one immutable history record.
	AppendHistory(ctx context.Context, rec tracker.HistoryRecord) error

	// QueryHistory returns up to window most-recent records for a product
	// in ascending timestamp order; window <= 0 means all.
	QueryHistory(ctx context.Context, productID string, window int) ([]tracker.HistoryRecord, error)

	// AppendAlert persists one immutable alert record.
	AppendAlert(ctx context.Context, alert tracker.Alert) error
}
