package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs(s, r, q, sigma, t float64) MarketInputs {
	return MarketInputs{Spot: s, Rate: r, Carry: r - q, Vol: sigma, Time: t}
}

func TestMarketInputsValid(t *testing.T) {
	assert.True(t, inputs(100, 0.05, 0, 0.2, 1).Valid())
	assert.False(t, inputs(0, 0.05, 0, 0.2, 1).Valid())
	assert.False(t, inputs(-5, 0.05, 0, 0.2, 1).Valid())
	assert.False(t, inputs(100, 0.05, 0, 0.2, -0.01).Valid())
	assert.False(t, inputs(100, 0.05, 0, 0, 1).Valid())
	assert.False(t, inputs(100, 0.05, 0, -0.3, 1).Valid())
	assert.False(t, inputs(math.NaN(), 0.05, 0, 0.2, 1).Valid())
	assert.False(t, inputs(100, math.Inf(1), 0, 0.2, 1).Valid())
}

func TestNewPricerStyles(t *testing.T) {
	assert.True(t, NewPricer(European).IsEuropean())
	assert.False(t, NewPricer(American1993).IsEuropean())
	assert.False(t, NewPricer(American2002).IsEuropean())

	_, is2002 := NewPricer(American2002).(BjerksundStensland2002)
	assert.True(t, is2002)

	// Zero value defaults to the 2002 model.
	_, isDefault := NewPricer(ExerciseStyle(0)).(BjerksundStensland2002)
	assert.True(t, isDefault)
}

func TestBlackScholesReferenceValues(t *testing.T) {
	bs := BlackScholes{}

	// Haug: S=60, X=65, T=0.25, r=0.08, b=0.08, v=0.30 -> call 2.1334.
	c, ok := bs.Value(Call, 65, inputs(60, 0.08, 0, 0.30, 0.25))
	require.True(t, ok)
	assert.InDelta(t, 2.1334, c, 1e-4)

	// Merton dividend form: S=100, X=95, T=0.5, r=0.10, q=0.05, v=0.20 -> put 2.4648.
	p, ok := bs.Value(Put, 95, inputs(100, 0.10, 0.05, 0.20, 0.5))
	require.True(t, ok)
	assert.InDelta(t, 2.4648, p, 1e-4)
}

func TestBlackScholesGreeks(t *testing.T) {
	bs := BlackScholes{}
	in := inputs(100, 0.05, 0, 0.2, 1)

	call := bs.Evaluate(Call, 100, in)
	put := bs.Evaluate(Put, 100, in)
	require.True(t, call.Valid)
	require.True(t, put.Valid)

	// Put-call parity on price and delta.
	parity := in.Spot - 100*math.Exp(-in.Rate*in.Time)
	assert.InDelta(t, parity, call.Price-put.Price, 1e-10)
	assert.InDelta(t, 1.0, call.Delta-put.Delta, 1e-10)

	assert.Greater(t, call.Delta, 0.0)
	assert.Less(t, put.Delta, 0.0)
	assert.Greater(t, call.Gamma, 0.0)
	assert.InDelta(t, call.Gamma, put.Gamma, 1e-12)
	assert.Greater(t, call.Vega, 0.0)
	assert.InDelta(t, call.Vega, put.Vega, 1e-12)
	assert.Less(t, call.Theta, 0.0)
	assert.Greater(t, call.Rho, 0.0)
	assert.Less(t, put.Rho, 0.0)
}

func TestBlackScholesInvalidInputs(t *testing.T) {
	bs := BlackScholes{}

	_, ok := bs.Value(Call, 100, inputs(-1, 0.05, 0, 0.2, 1))
	assert.False(t, ok)
	_, ok = bs.Value(Call, 100, inputs(100, 0.05, 0, 0.2, -0.1))
	assert.False(t, ok)
	_, ok = bs.Value(Call, -5, inputs(100, 0.05, 0, 0.2, 1))
	assert.False(t, ok)

	q := bs.Evaluate(Put, 100, inputs(100, 0.05, 0, -0.2, 1))
	assert.False(t, q.Valid)
}

func TestExpiredTimeIsIntrinsic(t *testing.T) {
	for _, p := range []OptionPricer{BlackScholes{}, BjerksundStensland1993{}, BjerksundStensland2002{}} {
		v, ok := p.Value(Call, 90, MarketInputs{Spot: 100, Rate: 0.05, Carry: 0.05, Vol: 0.2, Time: 0})
		require.True(t, ok)
		assert.InDelta(t, 10.0, v, 1e-12)

		v, ok = p.Value(Put, 110, MarketInputs{Spot: 100, Rate: 0.05, Carry: 0.05, Vol: 0.2, Time: 0})
		require.True(t, ok)
		assert.InDelta(t, 10.0, v, 1e-12)
	}
}

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	for _, p := range []OptionPricer{BlackScholes{}, BjerksundStensland1993{}, BjerksundStensland2002{}} {
		for _, sigma := range []float64{0.15, 0.35, 0.80} {
			for _, right := range []Right{Call, Put} {
				in := MarketInputs{Spot: 100, Rate: 0.05, Carry: 0.02, Vol: sigma, Time: 0.5}
				price, ok := p.Value(right, 105, in)
				require.True(t, ok)

				iv, ok := p.ImpliedVolatility(right, 105, price, in)
				require.True(t, ok, "%T %s sigma=%v", p, right, sigma)
				assert.InDelta(t, sigma, iv, 1e-4)
			}
		}
	}
}

func TestImpliedVolatilityNoSolution(t *testing.T) {
	bs := BlackScholes{}
	in := inputs(100, 0.05, 0, 0.2, 0.5)

	// Below the discounted intrinsic bound.
	_, ok := bs.ImpliedVolatility(Call, 80, 15.0, in)
	assert.False(t, ok)

	// Non-positive or non-finite observed price.
	_, ok = bs.ImpliedVolatility(Call, 100, 0, in)
	assert.False(t, ok)
	_, ok = bs.ImpliedVolatility(Call, 100, -2, in)
	assert.False(t, ok)
	_, ok = bs.ImpliedVolatility(Call, 100, math.NaN(), in)
	assert.False(t, ok)

	// Above the maximum any volatility in range can produce.
	_, ok = bs.ImpliedVolatility(Call, 100, 1e6, in)
	assert.False(t, ok)
}
