package tracker

import "time"

// AlertType classifies the direction of a significant price change.
type AlertType string

const (
	AlertTypePriceDrop     AlertType = "PRICE_DROP"
	AlertTypePriceIncrease AlertType = "PRICE_INCREASE"
)

// Trend classifies the direction of a price series over the analytics window.
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendDecreasing Trend = "DECREASING"
	TrendStable     Trend = "STABLE"
)

// Volatility buckets the coefficient of variation of a price series.
type Volatility string

const (
	VolatilityLow    Volatility = "LOW"
	VolatilityMedium Volatility = "MEDIUM"
	VolatilityHigh   Volatility = "HIGH"
)

// Recommendation is the derived buy/wait/hold signal.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationWait Recommendation = "WAIT"
	RecommendationHold Recommendation = "HOLD"
)

// Product is a tracked item. LastPrice and LastUpdated are nil until the
// first successful fetch.
type Product struct {
	ID          string     `json:"product_id"`
	URL         string     `json:"url"`
	Name        string     `json:"product_name"`
	Active      bool       `json:"active"`
	LastPrice   *float64   `json:"last_price"`
	LastUpdated *time.Time `json:"last_updated"`
}

// HistoryRecord is one observed price for a product. The change fields are
// nil on the baseline record (first observation) and when the previous
// price was zero. Records are append-only and ordered by Timestamp.
type HistoryRecord struct {
	ProductID          string     `json:"product_id"`
	Timestamp          time.Time  `json:"timestamp"`
	Price              float64    `json:"price"`
	PriceChange        *float64   `json:"price_change"`
	PriceChangePercent *float64   `json:"price_change_percent"`
	ExpiresAt          *time.Time `json:"-"`
}

// Alert records a price change that crossed the configured threshold.
// Immutable once written.
type Alert struct {
	AlertID            string     `json:"alert_id"`
	ProductID          string     `json:"product_id"`
	AlertType          AlertType  `json:"alert_type"`
	PreviousPrice      float64    `json:"previous_price"`
	CurrentPrice       float64    `json:"current_price"`
	PriceChangePercent float64    `json:"price_change_percent"`
	Timestamp          time.Time  `json:"timestamp"`
	ExpiresAt          *time.Time `json:"-"`
}

// AnalyticsResult is the read-side payload derived from a product's price
// history. PriceChange carries the percent change of the latest transition
// and is nil when the window holds fewer than two comparable records.
type AnalyticsResult struct {
	ProductName      string         `json:"product_name"`
	CurrentPrice     float64        `json:"current_price"`
	PriceChange      *float64       `json:"price_change"`
	Recommendation   Recommendation `json:"recommendation"`
	Trend            Trend          `json:"trend"`
	Volatility       Volatility     `json:"volatility"`
	HistoricalLow    float64        `json:"historical_low"`
	PotentialSavings float64        `json:"potential_savings"`
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	AlertsSent int `json:"alerts_sent"`
}
