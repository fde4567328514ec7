package marketdata

import (
	"math"
	"time"
)

// DividendSchedule is the discrete cash dividend stream expected before an
// expiry: Times in years from the valuation date, Amounts per share.
type DividendSchedule struct {
	Times   []float64
	Amounts []float64
}

// Empty reports a schedule with no payments.
func (d DividendSchedule) Empty() bool { return len(d.Times) == 0 }

// BuildDividendSchedule projects the fundamentals' dividend stream forward
// from asOf to the horizon (in years). The next ex-date anchors the cycle;
// subsequent payments repeat at the payment frequency. A symbol with no
// dividend data yields an empty schedule.
func BuildDividendSchedule(f Fundamentals, asOf time.Time, horizonYears float64) DividendSchedule {
	var sched DividendSchedule
	if f.DividendAmount <= 0 || horizonYears <= 0 {
		return sched
	}

	perYear := f.PaymentsPerYear
	if perYear <= 0 {
		perYear = 4
	}
	interval := 1.0 / float64(perYear)

	next, ok := f.NextExDate()
	var t float64
	if ok {
		t = next.Sub(asOf).Hours() / 24 / 365
		// Ex-date already passed: roll forward to the next cycle.
		for t < 0 {
			t += interval
		}
	} else {
		t = interval
	}

	for ; t <= horizonYears; t += interval {
		sched.Times = append(sched.Times, t)
		sched.Amounts = append(sched.Amounts, f.DividendAmount)
	}
	return sched
}

// EffectiveYield converts the discrete schedule into a continuous dividend
// yield over [0, t]: the present value of the payments spread across the
// spot over the horizon. Falls back to the quoted yield when the schedule
// is empty.
func (d DividendSchedule) EffectiveYield(spot, rate, t, quotedYield float64) float64 {
	if spot <= 0 || t <= 0 {
		return 0
	}
	if d.Empty() {
		return quotedYield
	}

	var pv float64
	for i, ti := range d.Times {
		if ti > t {
			break
		}
		pv += d.Amounts[i] * math.Exp(-rate*ti)
	}
	if pv <= 0 {
		return quotedYield
	}
	return pv / (spot * t)
}

// CarryRate is the cost-of-carry b = r - q for the horizon t, with q taken
// from the discrete dividend schedule.
func (d DividendSchedule) CarryRate(spot, rate, t, quotedYield float64) float64 {
	return rate - d.EffectiveYield(spot, rate, t, quotedYield)
}
