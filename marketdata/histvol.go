package marketdata

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"optprofit/numerics"
)

const tradingDaysPerYear = 252

// VolTrend classifies the direction of the trailing volatility series.
type VolTrend int

const (
	VolTrendFlat VolTrend = iota
	VolTrendRising
	VolTrendFalling
)

func (v VolTrend) String() string {
	switch v {
	case VolTrendRising:
		return "rising"
	case VolTrendFalling:
		return "falling"
	default:
		return "flat"
	}
}

// LogReturns computes daily log returns from the close series. Days with a
// non-positive close are skipped.
func LogReturns(h QuoteHistory) []float64 {
	var returns []float64
	for i := 1; i < len(h.Day); i++ {
		prev, curr := h.Day[i-1].Close, h.Day[i].Close
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	return returns
}

// CloseToCloseVolatility is the annualized standard deviation of daily log
// returns over the trailing window (in trading days).
func CloseToCloseVolatility(h QuoteHistory, window int) (float64, error) {
	returns := LogReturns(h)
	if len(returns) < 2 {
		return 0, fmt.Errorf("not enough history: %d returns", len(returns))
	}
	if window > 0 && len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	sd, err := stats.StandardDeviation(stats.Float64Data(returns))
	if err != nil {
		return 0, fmt.Errorf("stddev of returns: %w", err)
	}
	return sd * math.Sqrt(tradingDaysPerYear), nil
}

// ParkinsonVolatility is the annualized high-low range estimator over the
// trailing window: sqrt(1/(4 ln2 n) * sum(ln(H/L)^2)) scaled by sqrt(252).
func ParkinsonVolatility(h QuoteHistory, window int) (float64, error) {
	bars := h.Day
	if window > 0 && len(bars) > window {
		bars = bars[len(bars)-window:]
	}

	var sum float64
	n := 0
	for _, bar := range bars {
		if bar.High <= 0 || bar.Low <= 0 || bar.High < bar.Low {
			continue
		}
		hl := math.Log(bar.High / bar.Low)
		sum += hl * hl
		n++
	}
	if n < 2 {
		return 0, fmt.Errorf("not enough usable bars: %d", n)
	}

	return math.Sqrt(sum/(4*math.Ln2*float64(n))) * math.Sqrt(tradingDaysPerYear), nil
}

// WindowForDTE maps days to expiry onto a trailing trading-day window,
// floored so short-dated chains still get a stable estimate.
func WindowForDTE(dte int) int {
	window := int(math.Round(float64(dte) * tradingDaysPerYear / 365.0))
	if window < 20 {
		window = 20
	}
	return window
}

// HistoricalVolatilityForDTE returns the close-to-close volatility over a
// trailing window matched to the chain's days to expiry.
func HistoricalVolatilityForDTE(h QuoteHistory, dte int) (float64, error) {
	return CloseToCloseVolatility(h, WindowForDTE(dte))
}

// VolatilitySeries computes a rolling close-to-close volatility, one point
// per day over the last `points` days, each using the same window.
func VolatilitySeries(h QuoteHistory, window, points int) []float64 {
	returns := LogReturns(h)
	if len(returns) < window+1 {
		return nil
	}
	if points <= 0 || points > len(returns)-window+1 {
		points = len(returns) - window + 1
	}

	series := make([]float64, 0, points)
	for end := len(returns) - points + 1; end <= len(returns); end++ {
		segment := returns[end-window : end]
		sd, err := stats.StandardDeviation(stats.Float64Data(segment))
		if err != nil {
			continue
		}
		series = append(series, sd*math.Sqrt(tradingDaysPerYear))
	}
	return series
}

// ClassifyVolTrend fits a quadratic to the trailing volatility series and
// classifies the end-point slope. Small slopes relative to the level read
// as flat.
func ClassifyVolTrend(series []float64) VolTrend {
	if len(series) < 3 {
		return VolTrendFlat
	}

	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	fit, err := numerics.FitQuadratic(xs, series)
	if err != nil {
		return VolTrendFlat
	}

	slope := fit.SlopeAt(float64(len(series) - 1))
	level := series[len(series)-1]
	if level <= 0 {
		return VolTrendFlat
	}

	// Threshold: 0.5% of the current level per observation.
	switch {
	case slope > 0.005*level:
		return VolTrendRising
	case slope < -0.005*level:
		return VolTrendFalling
	default:
		return VolTrendFlat
	}
}
