package models

import (
	"math"

	"optprofit/numerics"
)

// BjerksundStensland2002 refines the 1993 approximation with a two-segment
// exercise boundary: two trigger prices evaluated at t1 = (sqrt(5)-1)/2 * T
// and at T, combined through the bivariate-normal ksi terms. This is the
// default pricer for American-style equity options.
type BjerksundStensland2002 struct{}

func (BjerksundStensland2002) IsEuropean() bool { return false }

func (m BjerksundStensland2002) Value(right Right, strike float64, in MarketInputs) (float64, bool) {
	if !in.Valid() || strike <= 0 {
		return 0, false
	}
	p := americanValue(bs2002Call, right, in.Spot, strike, in.Time, in.Rate, in.Carry, in.Vol)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

func (m BjerksundStensland2002) Evaluate(right Right, strike float64, in MarketInputs) Quote {
	return americanEvaluate(m, right, strike, in)
}

func (m BjerksundStensland2002) ImpliedVolatility(right Right, strike, observed float64, in MarketInputs) (float64, bool) {
	return impliedVolatility(m, right, strike, observed, in)
}

func bs2002Call(s, x, t, r, b, sigma float64) float64 {
	if b >= r {
		return europeanPrice(Call, s, x, t, r, b, sigma)
	}
	if t <= 0 {
		return math.Max(0, s-x)
	}

	t1 := 0.5 * (math.Sqrt(5) - 1) * t

	sig2 := sigma * sigma
	beta := (0.5 - b/sig2) + math.Sqrt(math.Pow(b/sig2-0.5, 2)+2*r/sig2)
	bInf := beta / (beta - 1) * x
	b0 := math.Max(x, r/(r-b)*x)

	h1 := -(b*t1 + 2*sigma*math.Sqrt(t1)) * x * x / ((bInf - b0) * b0)
	h2 := -(b*t + 2*sigma*math.Sqrt(t)) * x * x / ((bInf - b0) * b0)
	i1 := b0 + (bInf-b0)*(1-math.Exp(h1))
	i2 := b0 + (bInf-b0)*(1-math.Exp(h2))
	if s >= i2 {
		return s - x
	}

	alpha1 := (i1 - x) * math.Pow(i1, -beta)
	alpha2 := (i2 - x) * math.Pow(i2, -beta)

	return alpha2*math.Pow(s, beta) -
		alpha2*phi(s, t1, beta, i2, i2, r, b, sigma) +
		phi(s, t1, 1, i2, i2, r, b, sigma) -
		phi(s, t1, 1, i1, i2, r, b, sigma) -
		x*phi(s, t1, 0, i2, i2, r, b, sigma) +
		x*phi(s, t1, 0, i1, i2, r, b, sigma) +
		alpha1*phi(s, t1, beta, i1, i2, r, b, sigma) -
		alpha1*ksi(s, t, beta, i1, i2, i1, t1, r, b, sigma) +
		ksi(s, t, 1, i1, i2, i1, t1, r, b, sigma) -
		ksi(s, t, 1, x, i2, i1, t1, r, b, sigma) -
		x*ksi(s, t, 0, i1, i2, i1, t1, r, b, sigma) +
		x*ksi(s, t, 0, x, i2, i1, t1, r, b, sigma)
}

// ksi generalizes phi across the two boundary segments with a bivariate
// normal CDF at correlation rho = sqrt(t1/T).
func ksi(s, t2, gamma, h, i2, i1, t1, r, b, sigma float64) float64 {
	sig2 := sigma * sigma
	drift := b + (gamma-0.5)*sig2
	sqT1 := sigma * math.Sqrt(t1)
	sqT2 := sigma * math.Sqrt(t2)

	e1 := (math.Log(s/i1) + drift*t1) / sqT1
	e2 := (math.Log(i2*i2/(s*i1)) + drift*t1) / sqT1
	e3 := (math.Log(s/i1) - drift*t1) / sqT1
	e4 := (math.Log(i2*i2/(s*i1)) - drift*t1) / sqT1

	f1 := (math.Log(s/h) + drift*t2) / sqT2
	f2 := (math.Log(i2*i2/(s*h)) + drift*t2) / sqT2
	f3 := (math.Log(i1*i1/(s*h)) + drift*t2) / sqT2
	f4 := (math.Log(s*i1*i1/(h*i2*i2)) + drift*t2) / sqT2

	rho := math.Sqrt(t1 / t2)
	lambda := -r + gamma*b + 0.5*gamma*(gamma-1)*sig2
	kappa := 2*b/sig2 + 2*gamma - 1

	return math.Exp(lambda*t2) * math.Pow(s, gamma) *
		(numerics.CBND(-e1, -f1, rho) -
			math.Pow(i2/s, kappa)*numerics.CBND(-e2, -f2, rho) -
			math.Pow(i1/s, kappa)*numerics.CBND(-e3, -f3, -rho) +
			math.Pow(i1/i2, kappa)*numerics.CBND(-e4, -f4, -rho))
}
