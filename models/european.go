package models

import (
	"math"

	"optprofit/numerics"
)

// europeanPrice is the generalized Black-Scholes closed form with
// cost-of-carry b. b=r is classic Black-Scholes, b=r-q is Merton's
// dividend-adjusted model, b=0 is Black-76.
func europeanPrice(right Right, s, x, t, r, b, sigma float64) float64 {
	if t <= 0 {
		return intrinsic(right, s, x)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/x) + (b+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	carryDF := math.Exp((b - r) * t)
	rateDF := math.Exp(-r * t)

	if right == Call {
		return s*carryDF*numerics.CND(d1) - x*rateDF*numerics.CND(d2)
	}
	return x*rateDF*numerics.CND(-d2) - s*carryDF*numerics.CND(-d1)
}

// europeanGreeks returns price and the five sensitivities of the
// generalized Black-Scholes model.
func europeanGreeks(right Right, s, x, t, r, b, sigma float64) Quote {
	if t <= 0 {
		q := Quote{Price: intrinsic(right, s, x), Valid: true}
		if right == Call && s > x {
			q.Delta = 1
		} else if right == Put && s < x {
			q.Delta = -1
		}
		return q
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/x) + (b+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	carryDF := math.Exp((b - r) * t)
	rateDF := math.Exp(-r * t)
	nd1 := numerics.NormPDF(d1)

	q := Quote{
		Price: europeanPrice(right, s, x, t, r, b, sigma),
		Gamma: carryDF * nd1 / (s * sigma * sqrtT),
		Vega:  s * carryDF * nd1 * sqrtT,
		Valid: true,
	}

	if right == Call {
		q.Delta = carryDF * numerics.CND(d1)
		q.Theta = -s*carryDF*nd1*sigma/(2*sqrtT) -
			(b-r)*s*carryDF*numerics.CND(d1) -
			r*x*rateDF*numerics.CND(d2)
		q.Rho = t * x * rateDF * numerics.CND(d2)
	} else {
		q.Delta = carryDF * (numerics.CND(d1) - 1)
		q.Theta = -s*carryDF*nd1*sigma/(2*sqrtT) +
			(b-r)*s*carryDF*numerics.CND(-d1) +
			r*x*rateDF*numerics.CND(-d2)
		q.Rho = -t * x * rateDF * numerics.CND(-d2)
	}

	return q.sanitized()
}

func intrinsic(right Right, s, x float64) float64 {
	if right == Call {
		return math.Max(0, s-x)
	}
	return math.Max(0, x-s)
}
