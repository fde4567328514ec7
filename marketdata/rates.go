package marketdata

import "sort"

// RatePoint is one tenor on the risk-free curve.
type RatePoint struct {
	Years float64 `json:"years"`
	Rate  float64 `json:"rate"`
}

// RateCurve is a treasury yield curve sampled at a handful of tenors.
type RateCurve struct {
	points []RatePoint
}

// NewRateCurve builds a curve from unsorted tenor points.
func NewRateCurve(points []RatePoint) RateCurve {
	sorted := make([]RatePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Years < sorted[j].Years })
	return RateCurve{points: sorted}
}

// FlatRateCurve is a single-rate curve, used when no treasury data is loaded.
func FlatRateCurve(rate float64) RateCurve {
	return RateCurve{points: []RatePoint{{Years: 1, Rate: rate}}}
}

// Empty reports whether the curve has no points.
func (c RateCurve) Empty() bool { return len(c.points) == 0 }

// RateAt linearly interpolates the rate for a time to expiry in years,
// clamping outside the sampled tenor range.
func (c RateCurve) RateAt(t float64) float64 {
	if len(c.points) == 0 {
		return 0
	}
	if t <= c.points[0].Years {
		return c.points[0].Rate
	}
	last := c.points[len(c.points)-1]
	if t >= last.Years {
		return last.Rate
	}

	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].Years >= t })
	lo, hi := c.points[i-1], c.points[i]
	frac := (t - lo.Years) / (hi.Years - lo.Years)
	return lo.Rate + frac*(hi.Rate-lo.Rate)
}
