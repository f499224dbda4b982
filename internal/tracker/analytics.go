package tracker

import "math"

// Analytics cutoffs. Fixed by design decision (see DESIGN.md) and covered
// by boundary tests.
const (
	// trendEpsilon is the relative dead-band absorbing noise when comparing
	// the window's first and last prices.
	trendEpsilon = 0.01

	// Coefficient-of-variation bucket boundaries: LOW < 0.05 <= MEDIUM < 0.15 <= HIGH.
	volatilityMediumCV = 0.05
	volatilityHighCV   = 0.15

	// buyMargin is how close (relatively) the latest price must be to the
	// historical low for a BUY recommendation.
	buyMargin = 0.05
)

// Analyze derives trend, volatility, recommendation and savings from a
// product's price history, oldest first. window bounds how many of the most
// recent records are considered; window <= 0 means all. Pure: identical
// input always yields identical output, and history is never mutated.
//
// Zero history yields the defined defaults (STABLE, LOW, HOLD, zero prices)
// rather than an error.
func Analyze(productName string, history []HistoryRecord, window int) AnalyticsResult {
	result := AnalyticsResult{
		ProductName:    productName,
		Trend:          TrendStable,
		Volatility:     VolatilityLow,
		Recommendation: RecommendationHold,
	}

	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	if len(history) == 0 {
		return result
	}

	latest := history[len(history)-1]
	result.CurrentPrice = latest.Price
	if latest.PriceChangePercent != nil {
		v := *latest.PriceChangePercent
		result.PriceChange = &v
	}

	low := history[0].Price
	for _, rec := range history[1:] {
		if rec.Price < low {
			low = rec.Price
		}
	}
	result.HistoricalLow = low
	result.PotentialSavings = math.Max(0, latest.Price-low)

	result.Trend = classifyTrend(history)
	result.Volatility = classifyVolatility(history)
	result.Recommendation = recommend(result.Trend, latest.Price, low)
	return result
}

// classifyTrend compares the window's first and last prices with a relative
// dead-band. Fewer than 2 records is STABLE by definition.
func classifyTrend(history []HistoryRecord) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	first := history[0].Price
	last := history[len(history)-1].Price
	switch {
	case last > first*(1+trendEpsilon):
		return TrendIncreasing
	case last < first*(1-trendEpsilon):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// classifyVolatility buckets the coefficient of variation (population
// standard deviation over mean) of the window's prices.
func classifyVolatility(history []HistoryRecord) Volatility {
	if len(history) < 2 {
		return VolatilityLow
	}

	var sum float64
	for _, rec := range history {
		sum += rec.Price
	}
	mean := sum / float64(len(history))
	if mean == 0 {
		return VolatilityLow
	}

	var variance float64
	for _, rec := range history {
		d := rec.Price - mean
		variance += d * d
	}
	variance /= float64(len(history))
	cv := math.Sqrt(variance) / mean

	switch {
	case cv >= volatilityHighCV:
		return VolatilityHigh
	case cv >= volatilityMediumCV:
		return VolatilityMedium
	default:
		return VolatilityLow
	}
}

// recommend combines trend with proximity to the historical low: BUY when
// the price is not climbing and sits within buyMargin of the low, WAIT while
// it climbs, HOLD otherwise.
func recommend(trend Trend, latest, low float64) Recommendation {
	if trend == TrendIncreasing {
		return RecommendationWait
	}
	if latest <= low*(1+buyMargin) {
		return RecommendationBuy
	}
	return RecommendationHold
}
