package positions

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"optprofit/marketdata"
	"optprofit/probability"
)

// analyzeVertical enumerates credit spreads over one side of the chain.
// rows arrive in ascending strike order; legs may sit at most VertDepth
// strike positions apart (zero depth means unlimited). For a bull put the
// higher strike is sold; for a bear call the lower strike is sold. The
// net credit is the short bid minus the long ask.
func (c *OptionProfitCalculator) analyzeVertical(ctx context.Context, rows []marketdata.OptionQuoteRow, strategy Strategy) []StrategyResult {
	depth := c.cfg.Filter.VertDepth
	if depth <= 0 {
		depth = len(rows)
	}

	var results []StrategyResult
	for i := 0; i < len(rows)-1; i++ {
		for j := i + 1; j < len(rows) && j-i <= depth; j++ {
			if ctx.Err() != nil {
				return results
			}
			lower, upper := rows[i], rows[j]
			if c.cfg.Filter.excludesRow(lower) || c.cfg.Filter.excludesRow(upper) {
				continue
			}

			var short, long marketdata.OptionQuoteRow
			if strategy == VerticalBullPut {
				short, long = upper, lower
			} else {
				short, long = lower, upper
			}

			r, ok := c.verticalResult(short, long, strategy)
			if !ok {
				continue
			}
			if c.cfg.Filter.excludesResult(r) {
				continue
			}
			results = append(results, r)
		}
	}
	return results
}

func (c *OptionProfitCalculator) verticalResult(short, long marketdata.OptionQuoteRow, strategy Strategy) (StrategyResult, bool) {
	width := math.Abs(short.Strike - long.Strike)
	if width <= 0 {
		c.log.WithField("strike", short.Strike).Warn("skipping zero-width spread pair")
		return StrategyResult{}, false
	}

	credit := short.Bid - long.Ask
	if math.IsNaN(credit) || credit <= 0 {
		return StrategyResult{}, false
	}

	cost := 2 * c.cfg.TradeCost
	maxGain := credit - cost
	maxLoss := width - credit + cost
	if maxLoss <= 0 || maxGain <= 0 {
		c.log.WithFields(logrus.Fields{
			"short": short.Strike, "long": long.Strike,
		}).Warn("skipping spread with non-positive risk or reward")
		return StrategyResult{}, false
	}

	shortLeg, ok := c.legMetrics(short)
	if !ok {
		c.log.WithField("strike", short.Strike).Warn("skipping pair, short leg greeks failed")
		return StrategyResult{}, false
	}
	longLeg, ok := c.legMetrics(long)
	if !ok {
		c.log.WithField("strike", long.Strike).Warn("skipping pair, long leg greeks failed")
		return StrategyResult{}, false
	}

	dist := probability.Terminal{Spot: c.cfg.Underlying, Carry: c.carry, Vol: c.histVol, Time: c.tte}

	var (
		breakeven float64
		probITM   float64
		pnl       func(float64) float64
	)
	if strategy == VerticalBullPut {
		breakeven = short.Strike - credit
		probITM = dist.ProbBelow(short.Strike)
		pnl = func(s float64) float64 {
			return credit - math.Max(short.Strike-s, 0) + math.Max(long.Strike-s, 0) - cost
		}
	} else {
		breakeven = short.Strike + credit
		probITM = dist.ProbAbove(short.Strike)
		pnl = func(s float64) float64 {
			return credit - math.Max(s-short.Strike, 0) + math.Max(s-long.Strike, 0) - cost
		}
	}

	stats := dist.EvaluatePnL(pnl)
	investment := maxLoss // collateral held against the short leg

	r := StrategyResult{
		Symbol:         c.cfg.Chain.Symbol,
		Strategy:       strategy,
		ExpirationDate: c.cfg.Chain.ExpirationDate,
		DaysToExpiry:   c.cfg.Chain.DaysToExpiry,
		Strikes:        []float64{short.Strike, long.Strike},
		Short:          shortLeg,
		Long:           &longLeg,
		HistoricalVol:  c.histVol,
		ParkinsonVol:   c.parkVol,
		VolTrend:       c.volTrend,
		SpreadWidth:    shortLeg.Row.SpreadWidth() + longLeg.Row.SpreadWidth(),
		SpreadPercent:  (shortLeg.Row.SpreadPercent() + longLeg.Row.SpreadPercent()) / 2,
		ProbITM:        probITM,
		ProbOTM:        1 - probITM,
		ProbProfit:     stats.ProbProfit,
		Breakeven:      breakeven,
		Premium:        credit,
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
