package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valmer/pricetracker/internal/tracker"
)

// NewPool opens a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (*tracker.Product, error) {
	const q = `
SELECT product_id, url, product_name, active, (last_price::double precision), last_updated
FROM products
WHERE product_id = $1`

	var p tracker.Product
	var price sql.NullFloat64
	var updated sql.NullTime
	err := s.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.URL, &p.Name, &p.Active, &price, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if price.Valid {
		v := price.Float64
		p.LastPrice = &v
	}
	if updated.Valid {
		t := updated.Time
		p.LastUpdated = &t
	}
	return &p, nil
}

func (s *Postgres) ListActiveProducts(ctx context.Context) ([]tracker.Product, error) {
	const q = `
SELECT product_id, url, product_name, active, (last_price::double precision), last_updated
FROM products
WHERE active
ORDER BY product_id`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.Product
	for rows.Next() {
		var p tracker.Product
		var price sql.NullFloat64
		var updated sql.NullTime
		if err := rows.Scan(&p.ID, &p.URL, &p.Name, &p.Active, &price, &updated); err != nil {
			return nil, err
		}
		if price.Valid {
			v := price.Float64
			p.LastPrice = &v
		}
		if updated.Valid {
			t := updated.Time
			p.LastUpdated = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) UpdateProductPrice(ctx context.Context, id string, price float64, ts time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products SET last_price = $2, last_updated = $3 WHERE product_id = $1`,
		id, price, ts)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) UpdateProductName(ctx context.Context, id string, name string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products SET product_name = $2 WHERE product_id = $1`,
		id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) AppendHistory(ctx context.Context, rec tracker.HistoryRecord) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO price_history (product_id, recorded_at, price, price_change, price_change_percent, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ProductID, rec.Timestamp, rec.Price, rec.PriceChange, rec.PriceChangePercent, rec.ExpiresAt)
	return err
}

func (s *Postgres) QueryHistory(ctx context.Context, productID string, window int) ([]tracker.HistoryRecord, error) {
	// the window takes the most recent records but the caller wants them
	// oldest first, hence the inner DESC
	const q = `
SELECT product_id, recorded_at, (price::double precision),
       (price_change::double precision), (price_change_percent::double precision)
FROM (
    SELECT * FROM price_history
    WHERE product_id = $1
    ORDER BY recorded_at DESC
    LIMIT $2
) recent
ORDER BY recorded_at ASC`

	var rows pgx.Rows
	var err error
	if window > 0 {
		rows, err = s.db.Query(ctx, q, productID, window)
	} else {
		rows, err = s.db.Query(ctx, `
SELECT product_id, recorded_at, (price::double precision),
       (price_change::double precision), (price_change_percent::double precision)
FROM price_history
WHERE product_id = $1
ORDER BY recorded_at ASC`, productID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.HistoryRecord
	for rows.Next() {
		var rec tracker.HistoryRecord
		var change, percent sql.NullFloat64
		if err := rows.Scan(&rec.ProductID, &rec.Timestamp, &rec.Price, &change, &percent); err != nil {
			return nil, err
		}
		if change.Valid {
			v := change.Float64
			rec.PriceChange = &v
		}
		if percent.Valid {
			v := percent.Float64
			rec.PriceChangePercent = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Postgres) AppendAlert(ctx context.Context, alert tracker.Alert) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO alerts (alert_id, product_id, alert_type, previous_price, current_price, price_change_percent, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		alert.AlertID, alert.ProductID, string(alert.AlertType),
		alert.PreviousPrice, alert.CurrentPrice, alert.PriceChangePercent,
		alert.Timestamp, alert.ExpiresAt)
	return err
}
