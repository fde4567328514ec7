package positions

import "optprofit/marketdata"

// Option-type and volatility-class masks. Zero means no constraint.
type OptionTypeMask uint8

const (
	AllowCalls OptionTypeMask = 1 << iota
	AllowPuts
)

type VolClassMask uint8

const (
	AllowVolRising VolClassMask = 1 << iota
	AllowVolFlat
	AllowVolFalling
)

// FilterCriteria is a bundle of optional thresholds. A zero value means
// the threshold is unset and never excludes a candidate; every set bound
// is inclusive.
type FilterCriteria struct {
	MinUnderlying float64 `yaml:"min_underlying" json:"min_underlying"`
	MaxUnderlying float64 `yaml:"max_underlying" json:"max_underlying"`

	MinDTE int `yaml:"min_dte" json:"min_dte"`
	MaxDTE int `yaml:"max_dte" json:"max_dte"`

	MinDividendAmount float64 `yaml:"min_dividend_amount" json:"min_dividend_amount"`
	MaxDividendAmount float64 `yaml:"max_dividend_amount" json:"max_dividend_amount"`
	MinDividendYield  float64 `yaml:"min_dividend_yield" json:"min_dividend_yield"`
	MaxDividendYield  float64 `yaml:"max_dividend_yield" json:"max_dividend_yield"`

	MinInvestment float64 `yaml:"min_investment" json:"min_investment"`
	MaxInvestment float64 `yaml:"max_investment" json:"max_investment"`
	MaxLossAmount float64 `yaml:"max_loss_amount" json:"max_loss_amount"`
	MinROI        float64 `yaml:"min_roi" json:"min_roi"`

	MinSpreadPercent float64 `yaml:"min_spread_percent" json:"min_spread_percent"`

	MinVolatility float64 `yaml:"min_volatility" json:"min_volatility"`
	MaxVolatility float64 `yaml:"max_volatility" json:"max_volatility"`

	OptionTypes OptionTypeMask `yaml:"option_types" json:"option_types"`
	VolClasses  VolClassMask   `yaml:"vol_classes" json:"vol_classes"`

	// VertDepth bounds vertical-spread leg distance in strike positions
	// on the ascending-strike list, not in dollars.
	VertDepth int `yaml:"vert_depth" json:"vert_depth"`

	AllowNonStandard bool `yaml:"allow_non_standard" json:"allow_non_standard"`
}

// excludesChain applies the chain-invariant thresholds. These depend only
// on the calculator's construction inputs, so they are checked once per
// instance rather than per row.
func (f FilterCriteria) excludesChain(underlying float64, dte int, dividendAmount, dividendYield, histVol float64, trend marketdata.VolTrend) bool {
	if f.MinUnderlying > 0 && underlying < f.MinUnderlying {
		return true
	}
	if f.MaxUnderlying > 0 && underlying > f.MaxUnderlying {
		return true
	}
	if f.MinDTE > 0 && dte < f.MinDTE {
		return true
	}
	if f.MaxDTE > 0 && dte > f.MaxDTE {
		return true
	}
	if f.MinDividendAmount > 0 && dividendAmount < f.MinDividendAmount {
		return true
	}
	if f.MaxDividendAmount > 0 && dividendAmount > f.MaxDividendAmount {
		return true
	}
	if f.MinDividendYield > 0 && dividendYield < f.MinDividendYield {
		return true
	}
	if f.MaxDividendYield > 0 && dividendYield > f.MaxDividendYield {
		return true
	}
	if f.MinVolatility > 0 && histVol < f.MinVolatility {
		return true
	}
	if f.MaxVolatility > 0 && histVol > f.MaxVolatility {
		return true
	}
	if f.VolClasses != 0 && !f.VolClasses.allows(trend) {
		return true
	}
	return false
}

// excludesRow applies the per-row thresholds.
func (f FilterCriteria) excludesRow(row marketdata.OptionQuoteRow) bool {
	if !f.AllowNonStandard && row.IsNonStandard() {
		return true
	}
	if f.OptionTypes != 0 {
		if row.IsCall() && f.OptionTypes&AllowCalls == 0 {
			return true
		}
		if !row.IsCall() && f.OptionTypes&AllowPuts == 0 {
			return true
		}
	}
	if f.MinSpreadPercent > 0 && row.SpreadPercent() < f.MinSpreadPercent {
		return true
	}
	return false
}

// excludesResult applies thresholds that need the fully derived candidate.
func (f FilterCriteria) excludesResult(r StrategyResult) bool {
	if f.MinInvestment > 0 && r.Investment < f.MinInvestment {
		return true
	}
	if f.MaxInvestment > 0 && r.Investment > f.MaxInvestment {
		return true
	}
	if f.MaxLossAmount > 0 && r.MaxLoss > f.MaxLossAmount {
		return true
	}
	if f.MinROI > 0 && r.ROI < f.MinROI {
		return true
	}
	return false
}

func (m VolClassMask) allows(trend marketdata.VolTrend) bool {
	switch trend {
	case marketdata.VolTrendRising:
		return m&AllowVolRising != 0
	case marketdata.VolTrendFalling:
		return m&AllowVolFalling != 0
	default:
		return m&AllowVolFlat != 0
	}
}
