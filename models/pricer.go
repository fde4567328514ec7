package models

import "math"

// Right distinguishes calls from puts.
type Right int

const (
	Call Right = iota
	Put
)

func (r Right) String() string {
	if r == Put {
		return "put"
	}
	return "call"
}

// MarketInputs carries the market state for one pricing call. Carry is the
// cost-of-carry b: r minus the dividend yield for equities, 0 for futures.
type MarketInputs struct {
	Spot  float64 // underlying price S
	Rate  float64 // risk-free rate r, continuously compounded
	Carry float64 // cost-of-carry b
	Vol   float64 // annualized volatility sigma
	Time  float64 // time to expiry T in years
}

// Valid reports whether the inputs admit a meaningful price. A non-positive
// spot, negative time to expiry, non-positive volatility, or any non-finite
// field makes the pricer invalid rather than producing NaN downstream.
func (m MarketInputs) Valid() bool {
	for _, v := range []float64{m.Spot, m.Rate, m.Carry, m.Vol, m.Time} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return m.Spot > 0 && m.Time >= 0 && m.Vol > 0
}

// Quote is one pricing result: theoretical value plus sensitivities.
// Valid is false when the inputs were rejected or the arithmetic failed.
type Quote struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
	Valid bool
}

func (q Quote) sanitized() Quote {
	for _, v := range []float64{q.Price, q.Delta, q.Gamma, q.Theta, q.Vega, q.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Quote{}
		}
	}
	return q
}

// OptionPricer prices one option and solves for implied volatility.
// Implementations are stateless values and safe for concurrent use.
type OptionPricer interface {
	// Value returns the theoretical price, or ok=false on invalid inputs.
	Value(right Right, strike float64, in MarketInputs) (float64, bool)

	// Evaluate returns the theoretical price under this model together
	// with the closed-form European sensitivities.
	Evaluate(right Right, strike float64, in MarketInputs) Quote

	// ImpliedVolatility inverts the model for an observed price. ok is
	// false when the price sits outside the no-arbitrage bounds or the
	// search does not converge to a finite volatility.
	ImpliedVolatility(right Right, strike, observed float64, in MarketInputs) (float64, bool)

	IsEuropean() bool
}

// ExerciseStyle selects the boundary approximation used by NewPricer.
type ExerciseStyle int

// The zero value selects the 2002 approximation, the default for
// American-style equity options.
const (
	American2002 ExerciseStyle = iota
	American1993
	European
)

// NewPricer returns the pricer for the requested exercise style.
// American2002 is the default for American-style equity options.
func NewPricer(style ExerciseStyle) OptionPricer {
	switch style {
	case European:
		return BlackScholes{}
	case American1993:
		return BjerksundStensland1993{}
	default:
		return BjerksundStensland2002{}
	}
}
