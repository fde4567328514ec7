package positions

import (
	"context"
	"math"

	"optprofit/marketdata"
	"optprofit/probability"
)

// analyzeSingles walks every row of the chain, calls first then puts,
// ascending strike within each side. Calls are treated as long positions
// bought at the ask; puts as cash-secured shorts sold at the bid.
func (c *OptionProfitCalculator) analyzeSingles(ctx context.Context) []StrategyResult {
	var results []StrategyResult
	for _, row := range append(c.cfg.Chain.Calls(), c.cfg.Chain.Puts()...) {
		if ctx.Err() != nil {
			return results
		}
		if c.cfg.Filter.excludesRow(row) {
			continue
		}
		r, ok := c.singleResult(row)
		if !ok {
			continue
		}
		if c.cfg.Filter.excludesResult(r) {
			continue
		}
		results = append(results, r)
	}
	return results
}

func (c *OptionProfitCalculator) singleResult(row marketdata.OptionQuoteRow) (StrategyResult, bool) {
	leg, ok := c.legMetrics(row)
	if !ok {
		c.log.WithField("strike", row.Strike).Warn("skipping row, model produced no finite greeks")
		return StrategyResult{}, false
	}

	cost := c.cfg.TradeCost
	dist := probability.Terminal{Spot: c.cfg.Underlying, Carry: c.carry, Vol: c.histVol, Time: c.tte}

	var premium, breakeven, investment, maxGain, maxLoss, probITM float64
	var pnl func(float64) float64
	if row.IsCall() {
		premium = row.Ask
		if premium <= 0 {
			return StrategyResult{}, false
		}
		breakeven = row.Strike + premium
		investment = premium + cost
		maxLoss = investment
		maxGain = math.Inf(1)
		probITM = dist.ProbAbove(row.Strike)
		pnl = func(s float64) float64 { return math.Max(s-row.Strike, 0) - premium - cost }
	} else {
		premium = row.Bid
		if premium <= 0 {
			return StrategyResult{}, false
		}
		breakeven = row.Strike - premium
		investment = row.Strike - premium + cost
		maxLoss = investment
		maxGain = premium - cost
		probITM = dist.ProbBelow(row.Strike)
		pnl = func(s float64) float64 { return premium - math.Max(row.Strike-s, 0) - cost }
	}
	if investment <= 0 {
		return StrategyResult{}, false
	}

	stats := dist.EvaluatePnL(pnl)

	r := StrategyResult{
		Symbol:         c.cfg.Chain.Symbol,
		Strategy:       Single,
		ExpirationDate: c.cfg.Chain.ExpirationDate,
		DaysToExpiry:   c.cfg.Chain.DaysToExpiry,
		Strikes:        []float64{row.Strike},
		Short:          leg,
		HistoricalVol:  c.histVol,
		ParkinsonVol:   c.parkVol,
		VolTrend:       c.volTrend,
		SpreadWidth:    row.SpreadWidth(),
		SpreadPercent:  row.SpreadPercent(),
		ProbITM:        probITM,
		ProbOTM:        1 - probITM,
		ProbProfit:     stats.ProbProfit,
		Breakeven:      breakeven,
		Premium:        premium,
		Investment:     investment,
		MaxGain:        maxGain,
		MaxLoss:        maxLoss,

		ExpectedValue:     stats.Expected,
		EVROI:             stats.Expected / investment,
		VaR95:             stats.VaR95,
		VaR99:             stats.VaR99,
		ExpectedShortfall: stats.ExpectedShortfall,
	}
	r.ROR = maxGain / maxLoss
	r.ROI = maxGain / investment
	r.RORWeek, r.RORYear = c.annualize(r.ROR)
	r.ROIWeek, r.ROIYear = c.annualize(r.ROI)
	return r, true
}
