package positions

import (
	"math"

	"optprofit/marketdata"
	"optprofit/models"
)

// Strategy selects which candidate construction Analyze performs.
type Strategy int

const (
	Single Strategy = iota
	VerticalBullPut
	VerticalBearCall
)

func (s Strategy) String() string {
	switch s {
	case VerticalBullPut:
		return "vertical_bull_put"
	case VerticalBearCall:
		return "vertical_bear_call"
	default:
		return "single"
	}
}

// LegMetrics pairs one chain row with the calculator-derived values for
// that leg. Theoretical holds the model price and Greeks computed with the
// historical volatility; the CalcIV fields invert the model against the
// quoted bid, ask, and mark so venue-reported IV can be cross-checked.
type LegMetrics struct {
	Row         marketdata.OptionQuoteRow `json:"row"`
	Theoretical models.Quote              `json:"theoretical"`
	CalcIVBid   float64                   `json:"calc_iv_bid"`
	CalcIVAsk   float64                   `json:"calc_iv_ask"`
	CalcIVMark  float64                   `json:"calc_iv_mark"`
}

// StrategyResult is one surviving candidate. Results are emitted in chain
// iteration order and never mutated after creation.
type StrategyResult struct {
	Symbol         string    `json:"symbol"`
	Strategy       Strategy  `json:"strategy"`
	ExpirationDate string    `json:"expiration_date"`
	DaysToExpiry   int       `json:"days_to_expiry"`
	Strikes        []float64 `json:"strikes"`

	Short LegMetrics  `json:"short"`
	Long  *LegMetrics `json:"long,omitempty"`

	HistoricalVol float64             `json:"historical_volatility"`
	ParkinsonVol  float64             `json:"parkinson_volatility"`
	VolTrend      marketdata.VolTrend `json:"vol_trend"`

	SpreadWidth   float64 `json:"bid_ask_spread"`
	SpreadPercent float64 `json:"bid_ask_spread_pct"`

	ProbITM    float64 `json:"prob_itm"`
	ProbOTM    float64 `json:"prob_otm"`
	ProbProfit float64 `json:"prob_profit"`
	Breakeven  float64 `json:"breakeven"`

	Premium    float64 `json:"premium"`
	Investment float64 `json:"investment"`
	MaxGain    float64 `json:"max_gain"`
	MaxLoss    float64 `json:"max_loss"`

	ROR     float64 `json:"ror"`
	RORWeek float64 `json:"ror_week"`
	RORYear float64 `json:"ror_year"`
	ROI     float64 `json:"roi"`
	ROIWeek float64 `json:"roi_week"`
	ROIYear float64 `json:"roi_year"`

	ExpectedValue float64 `json:"expected_value"`
	EVROI         float64 `json:"ev_roi"`

	VaR95             float64 `json:"var_95"`
	VaR99             float64 `json:"var_99"`
	ExpectedShortfall float64 `json:"expected_shortfall"`

	CompositeScore float64 `json:"composite_score"`
}

// Width is the strike width for verticals, zero for singles.
func (r StrategyResult) Width() float64 {
	if len(r.Strikes) < 2 {
		return 0
	}
	return math.Abs(r.Strikes[0] - r.Strikes[1])
}

// Volume sums traded volume plus open interest across legs, the liquidity
// proxy used by the composite score.
func (r StrategyResult) Volume() float64 {
	v := float64(r.Short.Row.Volume + r.Short.Row.OpenInterest)
	if r.Long != nil {
		v += float64(r.Long.Row.Volume + r.Long.Row.OpenInterest)
	}
	return v
}

func sanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Sanitized maps non-finite derived fields to zero so results marshal
// cleanly (a long call's unbounded max gain, a zero-investment ROI).
func (r StrategyResult) Sanitized() StrategyResult {
	for _, p := range []*float64{
		&r.SpreadWidth, &r.SpreadPercent,
		&r.ProbITM, &r.ProbOTM, &r.ProbProfit, &r.Breakeven,
		&r.Premium, &r.Investment, &r.MaxGain, &r.MaxLoss,
		&r.ROR, &r.RORWeek, &r.RORYear,
		&r.ROI, &r.ROIWeek, &r.ROIYear,
		&r.ExpectedValue, &r.EVROI,
		&r.VaR95, &r.VaR99, &r.ExpectedShortfall,
		&r.CompositeScore,
	} {
		*p = sanitizeFloat(*p)
	}
	return r
}
