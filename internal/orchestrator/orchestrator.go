// Package orchestrator drives one tracking cycle over all active products:
// fetch, detect, persist, alert. Products are processed sequentially so the
// fetcher's inter-request delay applies across the whole batch.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/config"
	"github.com/valmer/pricetracker/internal/fetch"
	"github.com/valmer/pricetracker/internal/notify"
	"github.com/valmer/pricetracker/internal/storage"
	"github.com/valmer/pricetracker/internal/tracker"
)

// historyRetention bounds how long a history record stays queryable.
const historyRetention = 365 * 24 * time.Hour

// PriceFetcher is the slice of the fetcher the batch run needs. The title in
// the returned Detail backfills products created without a display name.
type PriceFetcher interface {
	FetchDetail(ctx context.Context, url string) (fetch.Detail, error)
}

// FetcherFactory builds a fetcher from one run's parameter snapshot, so a
// changed user agent pool or delay takes effect on the next cycle without a
// restart.
type FetcherFactory func(snap config.Snapshot) PriceFetcher

// NewFetcherFactory returns the production factory backed by fetch.New.
func NewFetcherFactory(timeout time.Duration, logger *zap.Logger) FetcherFactory {
	return func(snap config.Snapshot) PriceFetcher {
		return fetch.New(fetch.Config{
			UserAgents: snap.UserAgents,
			Delay:      snap.ScrapeDelay,
			Timeout:    timeout,
		}, logger)
	}
}

// Orchestrator wires the collaborators for a batch run. All dependencies are
// injected; it owns no state beyond them.
type Orchestrator struct {
	store      storage.Store
	source     config.Source
	notifier   notify.Notifier
	newFetcher FetcherFactory
	logger     *zap.Logger
}

func New(store storage.Store, source config.Source, notifier notify.Notifier, newFetcher FetcherFactory, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:      store,
		source:     source,
		notifier:   notifier,
		newFetcher: newFetcher,
		logger:     logger,
	}
}

// RunBatch executes one full tracking cycle. Configuration is resolved once
// up front; an invalid snapshot aborts the run before any product is
// touched. Per-product failures are logged and counted, never propagated, so
// one broken page cannot starve the rest of the batch.
func (o *Orchestrator) RunBatch(ctx context.Context) (tracker.Summary, error) {
	snap, err := config.TakeSnapshot(o.source)
	if err != nil {
		return tracker.Summary{}, fmt.Errorf("resolve run parameters: %w", err)
	}
	fetcher := o.newFetcher(snap)

	products, err := o.store.ListActiveProducts(ctx)
	if err != nil {
		return tracker.Summary{}, fmt.Errorf("list active products: %w", err)
	}

	var summary tracker.Summary
	started := time.Now()
	o.logger.Info("batch run started",
		zap.Int("products", len(products)),
		zap.Float64("alert_threshold", snap.AlertThreshold))

	for i := range products {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		alerted, err := o.processProduct(ctx, fetcher, &products[i], snap.AlertThreshold)
		if err != nil {
			summary.Failed++
			o.logger.Warn("product update failed",
				zap.String("product_id", products[i].ID),
				zap.String("url", products[i].URL),
				zap.String("kind", errorKind(err)),
				zap.Error(err))
			continue
		}
		summary.Succeeded++
		if alerted {
			summary.AlertsSent++
		}
	}

	o.logger.Info("batch run finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("alerts_sent", summary.AlertsSent),
		zap.Duration("elapsed", time.Since(started)))
	return summary, nil
}

// processProduct runs the fetch-detect-persist-alert pipeline for a single
// product. It reports whether an alert was recorded.
func (o *Orchestrator) processProduct(ctx context.Context, fetcher PriceFetcher, p *tracker.Product, threshold float64) (bool, error) {
	detail, err := fetcher.FetchDetail(ctx, p.URL)
	if err != nil {
		return false, fmt.Errorf("fetch price: %w", err)
	}
	price := detail.Price

	// a name from the page fills in products registered without one; a
	// failure here is cosmetic and must not fail the product
	if p.Name == "" && detail.Title != "" {
		if err := o.store.UpdateProductName(ctx, p.ID, detail.Title); err != nil {
			o.logger.Warn("name backfill failed",
				zap.String("product_id", p.ID),
				zap.Error(err))
		}
	}

	now := time.Now().UTC()
	change, percent := tracker.Detect(p.LastPrice, price)

	expires := now.Add(historyRetention)
	rec := tracker.HistoryRecord{
		ProductID:          p.ID,
		Timestamp:          now,
		Price:              price,
		PriceChange:        change,
		PriceChangePercent: percent,
		ExpiresAt:          &expires,
	}
	if err := o.store.AppendHistory(ctx, rec); err != nil {
		return false, fmt.Errorf("append history: %w", err)
	}
	if err := o.store.UpdateProductPrice(ctx, p.ID, price, now); err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}

	alert := tracker.Decide(p.ID, derefOrZero(p.LastPrice), price, percent, threshold)
	if alert == nil {
		return false, nil
	}

	if err := o.store.AppendAlert(ctx, *alert); err != nil {
		return false, fmt.Errorf("append alert: %w", err)
	}

	// The alert is already durable; a failed delivery is a warning, not a
	// product failure.
	if err := o.notifier.Publish(ctx, alert); err != nil {
		o.logger.Warn("alert delivery failed",
			zap.String("product_id", p.ID),
			zap.String("alert_id", alert.AlertID),
			zap.Error(err))
	}
	return true, nil
}

// errorKind maps a pipeline error to its taxonomy bucket for logging.
func errorKind(err error) string {
	switch {
	case errors.Is(err, fetch.ErrBlocked):
		return "blocked"
	case errors.Is(err, fetch.ErrParse):
		return "parse"
	case errors.Is(err, fetch.ErrNetwork):
		return "network"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
