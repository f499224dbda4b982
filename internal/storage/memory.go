package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/valmer/pricetracker/internal/tracker"
)

// Memory is an in-process Store used by tests and local development. It
// honors the same contract as Postgres: atomic per-item writes, append-only
// history in insertion order.
type Memory struct {
	mu       sync.RWMutex
	products map[string]tracker.Product
	history  map[string][]tracker.HistoryRecord
	alerts   []tracker.Alert
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]tracker.Product),
		history:  make(map[string][]tracker.HistoryRecord),
	}
}

// PutProduct creates or replaces a product. Products are managed externally
// in production; this is the fake's seeding hook.
func (m *Memory) PutProduct(p tracker.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Memory) GetProduct(_ context.Context, id string) (*tracker.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListActiveProducts(_ context.Context) ([]tracker.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []tracker.Product
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	// map order is random; callers expect a stable listing
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateProductPrice(_ context.Context, id string, price float64, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.LastPrice = &price
	p.LastUpdated = &ts
	m.products[id] = p
	return nil
}

func (m *Memory) UpdateProductName(_ context.Context, id string, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Name = name
	m.products[id] = p
	return nil
}

func (m *Memory) AppendHistory(_ context.Context, rec tracker.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[rec.ProductID] = append(m.history[rec.ProductID], rec)
	return nil
}

func (m *Memory) QueryHistory(_ context.Context, productID string, window int) ([]tracker.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.history[productID]
	if window > 0 && len(recs) > window {
		recs = recs[len(recs)-window:]
	}
	out := make([]tracker.HistoryRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *Memory) AppendAlert(_ context.Context, alert tracker.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
	return nil
}

// Alerts returns a copy of everything appended so far, for assertions.
func (m *Memory) Alerts() []tracker.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]tracker.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}
