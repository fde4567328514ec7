package probability

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"

	"optprofit/numerics"
)

// Expected-value integration: composite Gauss-Legendre over small panels,
// so payoff kinks degrade only the panel containing them.
const (
	evNodes  = 8
	evPanels = 256
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Terminal is the risk-neutral lognormal distribution of the underlying at
// expiry: ln(S_T) ~ N(ln(S) + (b - sigma^2/2)T, sigma^2 T). The drift b is
// the cost-of-carry; the volatility driver is the caller's choice (the
// calculator uses historical volatility, not quoted IV).
type Terminal struct {
	Spot  float64
	Carry float64
	Vol   float64
	Time  float64
}

// Valid reports whether the distribution parameters are usable.
func (d Terminal) Valid() bool {
	return d.Spot > 0 && d.Vol > 0 && d.Time > 0 &&
		!math.IsNaN(d.Carry) && !math.IsInf(d.Carry, 0) &&
		!math.IsNaN(d.Vol) && !math.IsInf(d.Vol, 0)
}

// ProbAbove is P(S_T > level).
func (d Terminal) ProbAbove(level float64) float64 {
	if !d.Valid() || level <= 0 {
		return 0
	}
	d2 := (math.Log(d.Spot/level) + (d.Carry-0.5*d.Vol*d.Vol)*d.Time) / (d.Vol * math.Sqrt(d.Time))
	return numerics.CND(d2)
}

// ProbBelow is P(S_T < level).
func (d Terminal) ProbBelow(level float64) float64 {
	if !d.Valid() || level <= 0 {
		return 0
	}
	return 1 - d.ProbAbove(level)
}

// Mean is the risk-neutral forward E[S_T] = S*exp(b*T).
func (d Terminal) Mean() float64 {
	return d.Spot * math.Exp(d.Carry*d.Time)
}

// Quantile maps a cumulative probability to a terminal price.
func (d Terminal) Quantile(p float64) float64 {
	z := stdNormal.Quantile(p)
	return d.priceAt(z)
}

func (d Terminal) priceAt(z float64) float64 {
	sqrtT := math.Sqrt(d.Time)
	return d.Spot * math.Exp((d.Carry-0.5*d.Vol*d.Vol)*d.Time+d.Vol*sqrtT*z)
}

// ExpectedValue integrates payoff(S_T) against the terminal density by
// composite Gauss-Legendre quadrature in the standardized z variable.
func (d Terminal) ExpectedValue(payoff func(float64) float64) float64 {
	if !d.Valid() {
		return 0
	}
	f := func(z float64) float64 {
		return payoff(d.priceAt(z)) * numerics.NormPDF(z)
	}

	const lo, hi = -8.0, 8.0
	width := (hi - lo) / evPanels
	var sum float64
	for i := 0; i < evPanels; i++ {
		a := lo + float64(i)*width
		sum += quad.Fixed(f, a, a+width, evNodes, nil, 0)
	}
	return sum
}

// PnLStats summarizes a candidate's profit distribution at expiry.
type PnLStats struct {
	ProbProfit        float64
	Expected          float64
	VaR95             float64
	VaR99             float64
	ExpectedShortfall float64
}

// EvaluatePnL computes probability of profit, expected value, VaR, and
// expected shortfall of a P&L function over the terminal distribution.
// VaR is reported as a loss (positive number = money lost at that
// confidence); expected shortfall averages the tail beyond VaR95.
func (d Terminal) EvaluatePnL(pnl func(float64) float64) PnLStats {
	if !d.Valid() {
		return PnLStats{}
	}

	stats := PnLStats{
		ProbProfit: d.probPositive(pnl),
		Expected:   d.ExpectedValue(pnl),
	}

	// Deterministic quantile grid in place of simulation: evaluate the
	// P&L on an even cumulative-probability lattice and read the loss
	// percentiles directly.
	const gridSize = 2000
	losses := make([]float64, 0, gridSize-1)
	for i := 1; i < gridSize; i++ {
		p := float64(i) / gridSize
		losses = append(losses, -pnl(d.Quantile(p)))
	}
	sort.Float64s(losses)

	idx95 := int(float64(len(losses)) * 0.95)
	idx99 := int(float64(len(losses)) * 0.99)
	stats.VaR95 = losses[idx95]
	stats.VaR99 = losses[idx99]

	var tail float64
	for _, l := range losses[idx95:] {
		tail += l
	}
	stats.ExpectedShortfall = tail / float64(len(losses)-idx95)

	return stats
}

// probPositive is P(pnl(S_T) > 0) on the same quantile lattice.
func (d Terminal) probPositive(pnl func(float64) float64) float64 {
	const gridSize = 2000
	wins := 0
	for i := 1; i < gridSize; i++ {
		p := float64(i) / gridSize
		if pnl(d.Quantile(p)) > 0 {
			wins++
		}
	}
	return float64(wins) / float64(gridSize-1)
}
