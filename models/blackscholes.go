package models

import (
	"math"

	"optprofit/numerics"
)

const (
	ivMaxIterations = 100
	ivEpsilon       = 1e-8
	ivFloor         = 1e-4
	ivCeiling       = 10.0
)

// BlackScholes prices European options with the generalized
// Black-Scholes-Merton closed form.
type BlackScholes struct{}

func (BlackScholes) IsEuropean() bool { return true }

func (BlackScholes) Value(right Right, strike float64, in MarketInputs) (float64, bool) {
	if !in.Valid() || strike <= 0 {
		return 0, false
	}
	p := europeanPrice(right, in.Spot, strike, in.Time, in.Rate, in.Carry, in.Vol)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

func (BlackScholes) Evaluate(right Right, strike float64, in MarketInputs) Quote {
	if !in.Valid() || strike <= 0 {
		return Quote{}
	}
	return europeanGreeks(right, in.Spot, strike, in.Time, in.Rate, in.Carry, in.Vol)
}

func (bs BlackScholes) ImpliedVolatility(right Right, strike, observed float64, in MarketInputs) (float64, bool) {
	return impliedVolatility(bs, right, strike, observed, in)
}

// impliedVolatility inverts any pricer for the volatility matching an
// observed price. Newton-Raphson seeded with the Brenner-Subrahmanyam
// approximation, falling back to bisection when Newton stalls or walks
// out of range. Shared by all three models.
func impliedVolatility(p OptionPricer, right Right, strike, observed float64, in MarketInputs) (float64, bool) {
	if strike <= 0 || in.Spot <= 0 || in.Time <= 0 || observed <= 0 ||
		math.IsNaN(observed) || math.IsInf(observed, 0) {
		return 0, false
	}

	// Below the discounted intrinsic bound no volatility reproduces the price.
	carryDF := math.Exp((in.Carry - in.Rate) * in.Time)
	rateDF := math.Exp(-in.Rate * in.Time)
	var lower float64
	if right == Call {
		lower = math.Max(0, in.Spot*carryDF-strike*rateDF)
	} else {
		lower = math.Max(0, strike*rateDF-in.Spot*carryDF)
	}
	if observed < lower {
		return 0, false
	}

	priceAt := func(sigma float64) (float64, bool) {
		trial := in
		trial.Vol = sigma
		return p.Value(right, strike, trial)
	}

	// Brenner-Subrahmanyam starting point.
	sigma := math.Sqrt(2*math.Pi/in.Time) * observed / in.Spot
	sigma = math.Min(math.Max(sigma, 0.05), 2)

	for i := 0; i < ivMaxIterations; i++ {
		price, ok := priceAt(sigma)
		if !ok {
			break
		}
		diff := price - observed
		if math.Abs(diff) < ivEpsilon {
			if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
				return 0, false
			}
			return sigma, true
		}

		vega := europeanGreeks(right, in.Spot, strike, in.Time, in.Rate, in.Carry, sigma).Vega
		if vega < 1e-10 {
			break
		}
		next := sigma - diff/vega
		if next <= ivFloor || next >= ivCeiling || math.IsNaN(next) {
			break
		}
		sigma = next
	}

	return bisectVolatility(priceAt, observed)
}

func bisectVolatility(priceAt func(float64) (float64, bool), observed float64) (float64, bool) {
	lo, hi := ivFloor, ivCeiling
	pLo, okLo := priceAt(lo)
	pHi, okHi := priceAt(hi)
	if !okLo || !okHi || observed < pLo || observed > pHi {
		return 0, false
	}

	for i := 0; i < ivMaxIterations; i++ {
		mid := 0.5 * (lo + hi)
		price, ok := priceAt(mid)
		if !ok {
			return 0, false
		}
		switch {
		case math.Abs(price-observed) < ivEpsilon:
			return mid, true
		case price < observed:
			lo = mid
		default:
			hi = mid
		}
	}

	mid := 0.5 * (lo + hi)
	if math.IsNaN(mid) || math.IsInf(mid, 0) {
		return 0, false
	}
	return mid, true
}

// d2 of the generalized Black-Scholes model, exported for the
// probability-of-expiry calculations that share it.
func D2(s, x, t, b, sigma float64) float64 {
	return (math.Log(s/x) + (b-0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
}

// ProbabilityITM is the risk-neutral probability that the option expires
// in the money when the terminal price is lognormal with drift b and
// volatility sigma.
func ProbabilityITM(right Right, s, x, t, b, sigma float64) float64 {
	if s <= 0 || x <= 0 || t <= 0 || sigma <= 0 {
		return 0
	}
	d := D2(s, x, t, b, sigma)
	if right == Call {
		return numerics.CND(d)
	}
	return numerics.CND(-d)
}
