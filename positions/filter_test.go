package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optprofit/marketdata"
)

func TestFilterIdempotence(t *testing.T) {
	rows := []marketdata.OptionQuoteRow{
		putRow(100, 2.00, 2.10),
		putRow(97.5, 1.40, 1.50),
		putRow(95, 0.50, 0.60),
	}
	filter := FilterCriteria{MinROI: 0.1, VertDepth: 2}

	cfg := testConfig(rows...)
	cfg.Filter = filter
	first := NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut)

	cfg2 := testConfig(rows...)
	cfg2.Filter = filter
	second := NewOptionProfitCalculator(cfg2).Analyze(VerticalBullPut)

	assert.Equal(t, first, second)
}

func TestUnsetThresholdsExcludeNothing(t *testing.T) {
	rows := []marketdata.OptionQuoteRow{
		putRow(100, 2.00, 2.10),
		putRow(95, 0.50, 0.60),
	}

	open := testConfig(rows...)
	openResults := NewOptionProfitCalculator(open).Analyze(VerticalBullPut)

	zeroed := testConfig(rows...)
	zeroed.Filter = FilterCriteria{}
	assert.Equal(t, openResults, NewOptionProfitCalculator(zeroed).Analyze(VerticalBullPut))
	require.NotEmpty(t, openResults)
}

func TestChainInvariantThresholds(t *testing.T) {
	rows := []marketdata.OptionQuoteRow{putRow(100, 2.00, 2.10), putRow(95, 0.50, 0.60)}

	cfg := testConfig(rows...)
	cfg.Filter.MinUnderlying = 500
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	cfg = testConfig(rows...)
	cfg.Filter.MaxUnderlying = 50
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	cfg = testConfig(rows...)
	cfg.Filter.MinDTE = 60
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	cfg = testConfig(rows...)
	cfg.Filter.MaxDTE = 7
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	// Inclusive bounds: thresholds equal to the chain values pass.
	cfg = testConfig(rows...)
	cfg.Filter.MinDTE = 30
	cfg.Filter.MaxDTE = 30
	cfg.Filter.MaxUnderlying = 102
	cfg.Filter.MinUnderlying = 102
	assert.NotEmpty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))
}

func TestOptionTypeMask(t *testing.T) {
	rows := []marketdata.OptionQuoteRow{
		putRow(95, 1.20, 1.30),
		callRow(105, 1.90, 2.00),
	}

	cfg := testConfig(rows...)
	cfg.Filter.OptionTypes = AllowPuts
	results := NewOptionProfitCalculator(cfg).Analyze(Single)
	require.Len(t, results, 1)
	assert.False(t, results[0].Short.Row.IsCall())

	cfg.Filter.OptionTypes = AllowCalls
	results = NewOptionProfitCalculator(cfg).Analyze(Single)
	require.Len(t, results, 1)
	assert.True(t, results[0].Short.Row.IsCall())
}

func TestResultLevelThresholds(t *testing.T) {
	rows := []marketdata.OptionQuoteRow{putRow(100, 2.00, 2.10), putRow(95, 0.50, 0.60)}

	cfg := testConfig(rows...)
	cfg.Filter.MaxLossAmount = 1.0 // spread loses up to 3.60
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	cfg = testConfig(rows...)
	cfg.Filter.MinROI = 0.9 // spread yields ~0.39
	assert.Empty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))

	cfg = testConfig(rows...)
	cfg.Filter.MaxInvestment = 3.60
	assert.NotEmpty(t, NewOptionProfitCalculator(cfg).Analyze(VerticalBullPut))
}

func TestVolClassMaskAllows(t *testing.T) {
	assert.True(t, AllowVolRising.allows(marketdata.VolTrendRising))
	assert.False(t, AllowVolRising.allows(marketdata.VolTrendFalling))
	assert.True(t, (AllowVolFlat | AllowVolFalling).allows(marketdata.VolTrendFlat))
}
