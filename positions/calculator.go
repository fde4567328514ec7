package positions

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"optprofit/marketdata"
	"optprofit/models"
)

type calcState int

const (
	stateCreated calcState = iota
	stateValidated
	stateAnalyzed
)

// CalculatorConfig bundles the read-only collaborator inputs for one
// (symbol, expiry) calculator.
type CalculatorConfig struct {
	Underlying   float64
	Chain        marketdata.ChainSnapshot
	History      marketdata.QuoteHistory
	Fundamentals marketdata.Fundamentals
	Rates        marketdata.RateCurve
	Filter       FilterCriteria
	Style        models.ExerciseStyle
	TradeCost    float64 // per-leg cost deducted from ROI numerators
	AsOf         time.Time
	Log          *logrus.Entry
}

// OptionProfitCalculator evaluates option strategies over a single chain.
// Lifecycle is Created, Validated on construction when the inputs are
// usable, then Analyzed once a strategy pass has run. A calculator that
// fails validation performs no analysis and reports zero results.
//
// The calculator is synchronous and performs no I/O; it is not safe for
// concurrent use. Run one instance per (symbol, expiry) worker.
type OptionProfitCalculator struct {
	cfg    CalculatorConfig
	pricer models.OptionPricer
	log    *logrus.Entry
	state  calcState

	tte       float64
	rate      float64
	carry     float64
	histVol   float64
	parkVol   float64
	volTrend  marketdata.VolTrend
	dividends marketdata.DividendSchedule

	chainExcluded bool
}

// NewOptionProfitCalculator validates the inputs and precomputes the
// chain-invariant quantities: time to expiry, the interpolated rate, the
// dividend schedule and resulting cost-of-carry, and the historical
// volatility matched to the chain's days-to-expiry.
func NewOptionProfitCalculator(cfg CalculatorConfig) *OptionProfitCalculator {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{
		"symbol": cfg.Chain.Symbol,
		"expiry": cfg.Chain.ExpirationDate,
	})

	c := &OptionProfitCalculator{
		cfg:    cfg,
		pricer: models.NewPricer(cfg.Style),
		log:    log,
		state:  stateCreated,
	}

	if cfg.Underlying <= 0 {
		log.WithField("underlying", cfg.Underlying).Warn("invalid underlying mark, calculator disabled")
		return c
	}
	if cfg.Chain.DaysToExpiry < 0 {
		log.WithField("dte", cfg.Chain.DaysToExpiry).Warn("chain already expired, calculator disabled")
		return c
	}

	c.tte = cfg.Chain.TimeToExpiry()
	c.rate = cfg.Rates.RateAt(c.tte)

	asOf := cfg.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	c.dividends = marketdata.BuildDividendSchedule(cfg.Fundamentals, asOf, c.tte)
	c.carry = c.dividends.CarryRate(cfg.Underlying, c.rate, c.tte, cfg.Fundamentals.DividendYield)

	hv, err := marketdata.HistoricalVolatilityForDTE(cfg.History, cfg.Chain.DaysToExpiry)
	if err != nil {
		log.WithError(err).Warn("historical volatility unavailable, calculator disabled")
		return c
	}
	c.histVol = hv
	if pv, err := marketdata.ParkinsonVolatility(cfg.History, marketdata.WindowForDTE(cfg.Chain.DaysToExpiry)); err == nil {
		c.parkVol = pv
	}
	series := marketdata.VolatilitySeries(cfg.History, marketdata.WindowForDTE(cfg.Chain.DaysToExpiry), 30)
	c.volTrend = marketdata.ClassifyVolTrend(series)

	c.chainExcluded = cfg.Filter.excludesChain(
		cfg.Underlying, cfg.Chain.DaysToExpiry,
		cfg.Fundamentals.DividendAmount, cfg.Fundamentals.DividendYield,
		c.histVol, c.volTrend,
	)

	c.state = stateValidated
	return c
}

// IsValid reports whether construction succeeded and Analyze will run.
func (c *OptionProfitCalculator) IsValid() bool { return c.state >= stateValidated }

// CostOfCarry exposes the dividend-adjusted carry used for pricing.
func (c *OptionProfitCalculator) CostOfCarry() float64 { return c.carry }

// HistoricalVolatility exposes the DTE-matched probability driver.
func (c *OptionProfitCalculator) HistoricalVolatility() float64 { return c.histVol }

// Analyze evaluates one strategy over the chain and returns the surviving
// candidates in ascending-strike order. An invalid calculator or a chain
// excluded by the chain-invariant filter thresholds yields no results.
func (c *OptionProfitCalculator) Analyze(strategy Strategy) []StrategyResult {
	return c.AnalyzeContext(context.Background(), strategy)
}

// AnalyzeContext is Analyze with cancellation checked between candidate
// iterations. On cancellation the partial results gathered so far are
// returned.
func (c *OptionProfitCalculator) AnalyzeContext(ctx context.Context, strategy Strategy) []StrategyResult {
	if !c.IsValid() {
		return nil
	}
	if c.chainExcluded {
		c.state = stateAnalyzed
		return nil
	}

	var results []StrategyResult
	switch strategy {
	case VerticalBullPut:
		results = c.analyzeVertical(ctx, c.cfg.Chain.Puts(), VerticalBullPut)
	case VerticalBearCall:
		results = c.analyzeVertical(ctx, c.cfg.Chain.Calls(), VerticalBearCall)
	default:
		results = c.analyzeSingles(ctx)
	}

	c.state = stateAnalyzed
	return results
}

// marketInputs assembles the pricing inputs for one strike with the given
// volatility driver.
func (c *OptionProfitCalculator) marketInputs(vol float64) models.MarketInputs {
	return models.MarketInputs{
		Spot:  c.cfg.Underlying,
		Rate:  c.rate,
		Carry: c.carry,
		Vol:   vol,
		Time:  c.tte,
	}
}

// annualize scales a per-trade return to per-week and per-year using the
// chain's calendar days to expiry.
func (c *OptionProfitCalculator) annualize(r float64) (week, year float64) {
	dte := c.cfg.Chain.DaysToExpiry
	if dte <= 0 {
		return 0, 0
	}
	return r * 7 / float64(dte), r * 365 / float64(dte)
}

// legMetrics prices one row with the historical volatility and inverts the
// model against the quoted bid, ask, and mark. ok is false when the model
// cannot produce finite Greeks for the row.
func (c *OptionProfitCalculator) legMetrics(row marketdata.OptionQuoteRow) (LegMetrics, bool) {
	right := models.Put
	if row.IsCall() {
		right = models.Call
	}

	in := c.marketInputs(c.histVol)
	quote := c.pricer.Evaluate(right, row.Strike, in)
	if !quote.Valid {
		return LegMetrics{}, false
	}

	lm := LegMetrics{Row: row, Theoretical: quote}
	if iv, ok := c.pricer.ImpliedVolatility(right, row.Strike, row.Bid, in); ok {
		lm.CalcIVBid = iv
	}
	if iv, ok := c.pricer.ImpliedVolatility(right, row.Strike, row.Ask, in); ok {
		lm.CalcIVAsk = iv
	}
	if iv, ok := c.pricer.ImpliedVolatility(right, row.Strike, row.MarkPrice(), in); ok {
		lm.CalcIVMark = iv
	}
	return lm, true
}
