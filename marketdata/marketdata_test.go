package marketdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhhuango/json"
)

func TestRateCurveInterpolation(t *testing.T) {
	curve := NewRateCurve([]RatePoint{
		{Years: 1, Rate: 0.05},
		{Years: 0.25, Rate: 0.04},
		{Years: 2, Rate: 0.055},
	})

	// Clamped below and above the sampled tenors, exact at a knot, and
	// linearly interpolated between knots.
	assert.InDelta(t, 0.04, curve.RateAt(0.1), 1e-12)
	assert.InDelta(t, 0.055, curve.RateAt(10), 1e-12)
	assert.InDelta(t, 0.04, curve.RateAt(0.25), 1e-12)
	assert.InDelta(t, 0.045, curve.RateAt(0.625), 1e-12)
	assert.InDelta(t, 0.0525, curve.RateAt(1.5), 1e-12)
}

func TestFlatRateCurve(t *testing.T) {
	curve := FlatRateCurve(0.0379)
	assert.InDelta(t, 0.0379, curve.RateAt(0.01), 1e-12)
	assert.InDelta(t, 0.0379, curve.RateAt(30), 1e-12)
	assert.False(t, curve.Empty())
	assert.True(t, RateCurve{}.Empty())
}

func TestBuildDividendSchedule(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := Fundamentals{
		DividendAmount:  0.50,
		DividendYield:   0.02,
		ExDividendDate:  "2024-04-15",
		PaymentsPerYear: 4,
	}

	sched := BuildDividendSchedule(f, asOf, 1.0)
	require.Len(t, sched.Times, 4)
	assert.InDelta(t, 45.0/365.0, sched.Times[0], 1e-9)
	assert.InDelta(t, sched.Times[0]+0.25, sched.Times[1], 1e-9)
	for _, amt := range sched.Amounts {
		assert.Equal(t, 0.50, amt)
	}
}

func TestBuildDividendScheduleRollsPastExDate(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := Fundamentals{DividendAmount: 1.0, ExDividendDate: "2024-05-01", PaymentsPerYear: 2}

	sched := BuildDividendSchedule(f, asOf, 1.0)
	require.NotEmpty(t, sched.Times)
	assert.Greater(t, sched.Times[0], 0.0)
}

func TestBuildDividendScheduleEmpty(t *testing.T) {
	sched := BuildDividendSchedule(Fundamentals{}, time.Now(), 1.0)
	assert.True(t, sched.Empty())
}

func TestCarryRate(t *testing.T) {
	sched := DividendSchedule{Times: []float64{0.25}, Amounts: []float64{1.0}}

	// PV of 1.00 at 25% of a year over spot 100 and half a year horizon.
	b := sched.CarryRate(100, 0.05, 0.5, 0.02)
	q := sched.EffectiveYield(100, 0.05, 0.5, 0.02)
	assert.InDelta(t, 0.05-q, b, 1e-12)
	assert.Greater(t, q, 0.0)

	// Empty schedule falls back to the quoted yield.
	empty := DividendSchedule{}
	assert.InDelta(t, 0.05-0.02, empty.CarryRate(100, 0.05, 0.5, 0.02), 1e-12)

	// No dividends before the horizon: quoted yield again.
	far := DividendSchedule{Times: []float64{2.0}, Amounts: []float64{1.0}}
	assert.InDelta(t, 0.05-0.02, far.CarryRate(100, 0.05, 0.5, 0.02), 1e-12)
}

func TestOptionQuoteRowHelpers(t *testing.T) {
	row := OptionQuoteRow{OptionType: "call", Bid: 2.00, Ask: 2.10, ContractSize: 100}
	assert.True(t, row.IsCall())
	assert.InDelta(t, 2.05, row.MarkPrice(), 1e-12)
	assert.InDelta(t, 0.10, row.SpreadWidth(), 1e-12)
	assert.InDelta(t, 0.10/2.05*100, row.SpreadPercent(), 1e-9)
	assert.False(t, row.IsNonStandard())

	row.Mark = 2.04
	assert.InDelta(t, 2.04, row.MarkPrice(), 1e-12)

	mini := OptionQuoteRow{OptionType: "put", ContractSize: 10}
	assert.True(t, mini.IsNonStandard())
	adjusted := OptionQuoteRow{OptionType: "put", ContractSize: 100, ExpirationType: "adjusted"}
	assert.True(t, adjusted.IsNonStandard())
}

func TestChainSnapshotSides(t *testing.T) {
	chain := ChainSnapshot{Rows: []OptionQuoteRow{
		{OptionType: "put", Strike: 105},
		{OptionType: "call", Strike: 100},
		{OptionType: "put", Strike: 95},
		{OptionType: "call", Strike: 110},
	}}

	puts := chain.Puts()
	require.Len(t, puts, 2)
	assert.Equal(t, 95.0, puts[0].Strike)
	assert.Equal(t, 105.0, puts[1].Strike)

	calls := chain.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 100.0, calls[0].Strike)
	assert.Equal(t, 110.0, calls[1].Strike)
}

func TestLoadSnapshot(t *testing.T) {
	snap := Snapshot{
		Symbol:         "SPY",
		UnderlyingMark: 452.38,
		Rates:          []RatePoint{{Years: 0.25, Rate: 0.0525}},
		Chains: []ChainSnapshot{{
			Symbol:         "SPY",
			ExpirationDate: "2024-07-19",
			DaysToExpiry:   30,
			Rows:           []OptionQuoteRow{{OptionType: "put", Strike: 440, Bid: 2.0, Ask: 2.1}},
		}},
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "spy.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "SPY", got.Symbol)
	assert.InDelta(t, 452.38, got.UnderlyingMark, 1e-9)
	require.Len(t, got.Chains, 1)
	assert.Len(t, got.Chains[0].Rows, 1)
	assert.False(t, got.Curve().Empty())
}

func TestLoadSnapshotErrors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadSnapshot(path)
	assert.Error(t, err)

	path2 := filepath.Join(t.TempDir(), "nomark.json")
	require.NoError(t, os.WriteFile(path2, []byte(`{"symbol":"SPY","underlying_mark":0}`), 0o644))
	_, err = LoadSnapshot(path2)
	assert.Error(t, err)
}
