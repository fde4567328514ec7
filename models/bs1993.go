package models

import (
	"math"

	"optprofit/numerics"
)

// BjerksundStensland1993 approximates American option values with a single
// flat early-exercise boundary. Calls fall back to the European closed form
// when early exercise is never optimal (b >= r); puts are priced through
// the Bjerksund-Stensland put-call transformation.
type BjerksundStensland1993 struct{}

func (BjerksundStensland1993) IsEuropean() bool { return false }

func (m BjerksundStensland1993) Value(right Right, strike float64, in MarketInputs) (float64, bool) {
	if !in.Valid() || strike <= 0 {
		return 0, false
	}
	p := americanValue(bs1993Call, right, in.Spot, strike, in.Time, in.Rate, in.Carry, in.Vol)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

func (m BjerksundStensland1993) Evaluate(right Right, strike float64, in MarketInputs) Quote {
	return americanEvaluate(m, right, strike, in)
}

func (m BjerksundStensland1993) ImpliedVolatility(right Right, strike, observed float64, in MarketInputs) (float64, bool) {
	return impliedVolatility(m, right, strike, observed, in)
}

type callFn func(s, x, t, r, b, sigma float64) float64

// americanValue routes through the call approximation, applying the
// put-call transformation P(S,X,r,b) = C(X,S,r-b,-b) for puts and
// clamping to the intrinsic and European lower bounds.
func americanValue(call callFn, right Right, s, x, t, r, b, sigma float64) float64 {
	var v float64
	if right == Call {
		v = call(s, x, t, r, b, sigma)
	} else {
		v = call(x, s, t, r-b, -b, sigma)
	}
	v = math.Max(v, intrinsic(right, s, x))
	return math.Max(v, europeanPrice(right, s, x, t, r, b, sigma))
}

// americanEvaluate pairs the model price with the European sensitivities.
func americanEvaluate(p OptionPricer, right Right, strike float64, in MarketInputs) Quote {
	if !in.Valid() || strike <= 0 {
		return Quote{}
	}
	q := europeanGreeks(right, in.Spot, strike, in.Time, in.Rate, in.Carry, in.Vol)
	if !q.Valid {
		return Quote{}
	}
	price, ok := p.Value(right, strike, in)
	if !ok {
		return Quote{}
	}
	q.Price = price
	return q.sanitized()
}

func bs1993Call(s, x, t, r, b, sigma float64) float64 {
	if b >= r {
		// Early exercise is never optimal.
		return europeanPrice(Call, s, x, t, r, b, sigma)
	}
	if t <= 0 {
		return math.Max(0, s-x)
	}

	sig2 := sigma * sigma
	beta := (0.5 - b/sig2) + math.Sqrt(math.Pow(b/sig2-0.5, 2)+2*r/sig2)
	bInf := beta / (beta - 1) * x
	b0 := math.Max(x, r/(r-b)*x)

	h := -(b*t + 2*sigma*math.Sqrt(t)) * b0 / (bInf - b0)
	trigger := b0 + (bInf-b0)*(1-math.Exp(h))
	if s >= trigger {
		return s - x
	}

	alpha := (trigger - x) * math.Pow(trigger, -beta)
	return alpha*math.Pow(s, beta) -
		alpha*phi(s, t, beta, trigger, trigger, r, b, sigma) +
		phi(s, t, 1, trigger, trigger, r, b, sigma) -
		phi(s, t, 1, x, trigger, r, b, sigma) -
		x*phi(s, t, 0, trigger, trigger, r, b, sigma) +
		x*phi(s, t, 0, x, trigger, r, b, sigma)
}

// phi is the power-and-CND building block of both Bjerksund-Stensland
// approximations: exp(lambda*T) * S^gamma * (N(d) - (I/S)^kappa * N(d')).
func phi(s, t, gamma, h, trigger, r, b, sigma float64) float64 {
	sqrtT := math.Sqrt(t)
	lambda := (-r + gamma*b + 0.5*gamma*(gamma-1)*sigma*sigma) * t
	d := -(math.Log(s/h) + (b+(gamma-0.5)*sigma*sigma)*t) / (sigma * sqrtT)
	kappa := 2*b/(sigma*sigma) + 2*gamma - 1

	return math.Exp(lambda) * math.Pow(s, gamma) *
		(numerics.CND(d) - math.Pow(trigger/s, kappa)*numerics.CND(d-2*math.Log(trigger/s)/(sigma*sqrtT)))
}
