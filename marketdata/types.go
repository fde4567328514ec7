package marketdata

import (
	"sort"
	"time"
)

// VenueGreeks are the sensitivities and implied volatilities reported by
// the upstream venue for one option row. They are carried through to the
// output unchanged and kept distinct from calculator-derived values.
type VenueGreeks struct {
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
	Rho       float64 `json:"rho"`
	BidIV     float64 `json:"bid_iv"`
	MidIV     float64 `json:"mid_iv"`
	AskIV     float64 `json:"ask_iv"`
	TheoVol   float64 `json:"theo_vol"`
	UpdatedAt string  `json:"updated_at"`
}

// OptionQuoteRow is one strike/side from a chain snapshot. Immutable once
// read; the calculator borrows it for the duration of one evaluation pass.
type OptionQuoteRow struct {
	Symbol         string      `json:"symbol"`
	Underlying     string      `json:"underlying"`
	OptionType     string      `json:"option_type"` // "call" or "put"
	Strike         float64     `json:"strike"`
	Bid            float64     `json:"bid"`
	Ask            float64     `json:"ask"`
	Last           float64     `json:"last"`
	Mark           float64     `json:"mark"`
	BidSize        int         `json:"bid_size"`
	AskSize        int         `json:"ask_size"`
	LastSize       int         `json:"last_size"`
	Volume         int         `json:"volume"`
	OpenInterest   int         `json:"open_interest"`
	ContractSize   int         `json:"contract_size"`
	InTheMoney     bool        `json:"in_the_money"`
	DaysToExpiry   int         `json:"days_to_expiry"`
	ExpirationDate string      `json:"expiration_date"` // 2006-01-02
	ExpirationType string      `json:"expiration_type"` // standard, weeklys, quarterlys, adjusted, mini
	SettlementType string      `json:"settlement_type"`
	Greeks         VenueGreeks `json:"greeks"`
}

// IsCall reports the side of the row.
func (r OptionQuoteRow) IsCall() bool { return r.OptionType == "call" }

// MarkPrice falls back to the bid/ask midpoint when the venue mark is absent.
func (r OptionQuoteRow) MarkPrice() float64 {
	if r.Mark > 0 {
		return r.Mark
	}
	return (r.Bid + r.Ask) / 2
}

// SpreadWidth is the quoted bid/ask spread in price terms.
func (r OptionQuoteRow) SpreadWidth() float64 { return r.Ask - r.Bid }

// SpreadPercent is the bid/ask spread relative to the midpoint, as a
// percentage. Zero when the row has no usable quote.
func (r OptionQuoteRow) SpreadPercent() float64 {
	mid := (r.Bid + r.Ask) / 2
	if mid <= 0 {
		return 0
	}
	return (r.Ask - r.Bid) / mid * 100
}

// IsNonStandard reports adjusted or mini contracts: anything whose deliverable
// is not the usual 100 shares, or whose expiration type marks an adjustment.
func (r OptionQuoteRow) IsNonStandard() bool {
	if r.ContractSize != 0 && r.ContractSize != 100 {
		return true
	}
	return r.ExpirationType == "adjusted" || r.ExpirationType == "mini"
}

// ChainSnapshot is one (symbol, expiry) slice of an option chain.
type ChainSnapshot struct {
	Symbol         string           `json:"symbol"`
	ExpirationDate string           `json:"expiration_date"`
	DaysToExpiry   int              `json:"days_to_expiry"`
	Rows           []OptionQuoteRow `json:"rows"`
}

// Calls returns the call rows in ascending strike order.
func (c ChainSnapshot) Calls() []OptionQuoteRow { return c.side("call") }

// Puts returns the put rows in ascending strike order.
func (c ChainSnapshot) Puts() []OptionQuoteRow { return c.side("put") }

func (c ChainSnapshot) side(optionType string) []OptionQuoteRow {
	var rows []OptionQuoteRow
	for _, r := range c.Rows {
		if r.OptionType == optionType {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Strike < rows[j].Strike })
	return rows
}

// TimeToExpiry converts the chain's days to expiry into years.
func (c ChainSnapshot) TimeToExpiry() float64 {
	return float64(c.DaysToExpiry) / 365.0
}

// DailyBar is one day of underlying price history.
type DailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int     `json:"volume"`
}

// QuoteHistory is the trailing daily history of the underlying.
type QuoteHistory struct {
	Day []DailyBar `json:"day"`
}

// LastClose returns the most recent close, or 0 for an empty history.
func (h QuoteHistory) LastClose() float64 {
	if len(h.Day) == 0 {
		return 0
	}
	return h.Day[len(h.Day)-1].Close
}

// Fundamentals carries the dividend data used to build the cost-of-carry
// schedule for a symbol.
type Fundamentals struct {
	Symbol            string  `json:"symbol"`
	DividendAmount    float64 `json:"dividend_amount"` // per payment
	DividendYield     float64 `json:"dividend_yield"`  // annualized fraction
	ExDividendDate    string  `json:"ex_dividend_date"`
	PaymentsPerYear   int     `json:"payments_per_year"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// NextExDate parses the ex-dividend date, or reports ok=false.
func (f Fundamentals) NextExDate() (time.Time, bool) {
	if f.ExDividendDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", f.ExDividendDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
