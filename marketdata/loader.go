package marketdata

import (
	"fmt"
	"os"

	"github.com/xhhuango/json"
)

// Snapshot is the on-disk bundle driving one analysis run: the underlying
// quote, trailing history, fundamentals, rate curve, and one chain slice
// per expiry. It is produced by the external fetch layer; the engine only
// reads it.
type Snapshot struct {
	Symbol         string          `json:"symbol"`
	TakenAt        string          `json:"taken_at"`
	UnderlyingMark float64         `json:"underlying_mark"`
	History        QuoteHistory    `json:"history"`
	Fundamentals   Fundamentals    `json:"fundamentals"`
	Rates          []RatePoint     `json:"rates"`
	Chains         []ChainSnapshot `json:"chains"`
}

// Curve builds the rate curve from the snapshot's treasury points.
func (s Snapshot) Curve() RateCurve {
	return NewRateCurve(s.Rates)
}

// LoadSnapshot reads and validates one snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", path, err)
	}

	if snap.Symbol == "" {
		return nil, fmt.Errorf("snapshot %s: missing symbol", path)
	}
	if snap.UnderlyingMark <= 0 {
		return nil, fmt.Errorf("snapshot %s: non-positive underlying mark %.4f", path, snap.UnderlyingMark)
	}
	return snap, nil
}
