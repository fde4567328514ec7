package probability

import (
	"math"
	"sync"

	"golang.org/x/exp/rand"
)

const (
	defaultPaths = 20000
	mcWorkers    = 8
)

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(uint64(rand.Int63())))
	},
}

// SimulateTerminal draws GBM terminal prices from the distribution and
// reports the fraction with positive P&L. It exists as a cross-check on
// the closed-form lattice; paths <= 0 uses the default count.
func (d Terminal) SimulateTerminal(pnl func(float64) float64, paths int) float64 {
	if !d.Valid() {
		return 0
	}
	if paths <= 0 {
		paths = defaultPaths
	}

	drift := (d.Carry - 0.5*d.Vol*d.Vol) * d.Time
	diffusion := d.Vol * math.Sqrt(d.Time)

	workers := mcWorkers
	if paths < workers {
		workers = paths
	}
	wins := make([]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		n := paths / workers
		if w < paths%workers {
			n++
		}
		wg.Add(1)
		go func(w, n int) {
			defer wg.Done()
			rng := rngPool.Get().(*rand.Rand)
			defer rngPool.Put(rng)

			count := 0
			for i := 0; i < n; i++ {
				z := rng.NormFloat64()
				st := d.Spot * math.Exp(drift+diffusion*z)
				if pnl(st) > 0 {
					count++
				}
			}
			wins[w] = count
		}(w, n)
	}
	wg.Wait()

	total := 0
	for _, c := range wins {
		total += c
	}
	return float64(total) / float64(paths)
}
