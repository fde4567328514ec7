package positions

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"

	"optprofit/marketdata"
	"optprofit/models"
)

// Composite score weights, applied to min-max normalized components.
const (
	weightLiquidity   = 0.5
	weightProbability = 0.3
	weightVaR         = 0.1
	weightES          = 0.1
)

// ScanJob is one unit of batch work: a single (symbol, expiry) chain plus
// the snapshot context it came from.
type ScanJob struct {
	Snapshot *marketdata.Snapshot
	Chain    marketdata.ChainSnapshot
	Strategy Strategy
}

// ScanConfig controls the batch scan.
type ScanConfig struct {
	Filter     FilterCriteria
	Style      models.ExerciseStyle
	TradeCost  float64
	Workers    int  // defaults to NumCPU
	Progress   bool // render an mpb progress bar
	MonitorCPU bool // log CPU usage every 5s while scanning
	AsOf       time.Time
}

// BuildJobs expands snapshots into one job per (chain, strategy).
func BuildJobs(snaps []*marketdata.Snapshot, strategies []Strategy) []ScanJob {
	var jobs []ScanJob
	for _, snap := range snaps {
		for _, chain := range snap.Chains {
			for _, strat := range strategies {
				jobs = append(jobs, ScanJob{Snapshot: snap, Chain: chain, Strategy: strat})
			}
		}
	}
	return jobs
}

// Scan runs one calculator per job across a worker pool and merges the
// per-worker results. Each calculator is confined to its worker; the
// merge happens on the collection channel.
func Scan(jobs []ScanJob, cfg ScanConfig, log *logrus.Entry) []StrategyResult {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if len(jobs) == 0 {
		return nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.WithFields(logrus.Fields{"jobs": len(jobs), "workers": workers}).Info("starting scan")

	var bar *mpb.Bar
	var progress *mpb.Progress
	if cfg.Progress {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(jobs)),
			mpb.PrependDecorators(
				decor.Name("Progress"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
	}

	stopMonitor := make(chan struct{})
	if cfg.MonitorCPU {
		go monitorCPUUsage(log, stopMonitor)
	}

	jobChan := make(chan ScanJob, workers)
	resultChan := make(chan []StrategyResult, workers)
	var wg sync.WaitGroup
	var processed int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				resultChan <- runJob(job, cfg, log)
				atomic.AddInt64(&processed, 1)
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	go func() {
		for _, j := range jobs {
			jobChan <- j
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var all []StrategyResult
	for batch := range resultChan {
		all = append(all, batch...)
	}

	close(stopMonitor)
	if progress != nil {
		progress.Wait()
	}
	log.WithFields(logrus.Fields{
		"processed": atomic.LoadInt64(&processed),
		"results":   len(all),
	}).Info("scan complete")
	return all
}

func runJob(job ScanJob, cfg ScanConfig, log *logrus.Entry) []StrategyResult {
	calc := NewOptionProfitCalculator(CalculatorConfig{
		Underlying:   job.Snapshot.UnderlyingMark,
		Chain:        job.Chain,
		History:      job.Snapshot.History,
		Fundamentals: job.Snapshot.Fundamentals,
		Rates:        job.Snapshot.Curve(),
		Filter:       cfg.Filter,
		Style:        cfg.Style,
		TradeCost:    cfg.TradeCost,
		AsOf:         cfg.AsOf,
		Log:          log,
	})
	results := calc.Analyze(job.Strategy)
	for i := range results {
		results[i] = results[i].Sanitized()
	}
	return results
}

func monitorCPUUsage(log *logrus.Entry, stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err == nil && len(percentage) > 0 {
				log.WithField("cpu_pct", percentage[0]).Info("scan running")
			}
		}
	}
}

// ScoreAndRank assigns a composite score to every result and sorts
// descending. Probability of profit counts for more when VaR, expected
// shortfall, and the bid/ask spread are small; the normalized score is
// weighted by leg volume so illiquid strikes sink.
func ScoreAndRank(results []StrategyResult) []StrategyResult {
	if len(results) == 0 {
		return results
	}

	minProb, maxProb := math.Inf(1), math.Inf(-1)
	minVaR, maxVaR := math.Inf(1), math.Inf(-1)
	minES, maxES := math.Inf(1), math.Inf(-1)
	minSpread, maxSpread := math.Inf(1), math.Inf(-1)
	for _, r := range results {
		minProb, maxProb = math.Min(minProb, r.ProbProfit), math.Max(maxProb, r.ProbProfit)
		minVaR, maxVaR = math.Min(minVaR, math.Abs(r.VaR95)), math.Max(maxVaR, math.Abs(r.VaR95))
		minES, maxES = math.Min(minES, math.Abs(r.ExpectedShortfall)), math.Max(maxES, math.Abs(r.ExpectedShortfall))
		minSpread, maxSpread = math.Min(minSpread, r.SpreadPercent), math.Max(maxSpread, r.SpreadPercent)
	}

	for i := range results {
		r := &results[i]
		normProb := normalize(r.ProbProfit, minProb, maxProb)
		normVaR := 1 - normalize(math.Abs(r.VaR95), minVaR, maxVaR)
		normES := 1 - normalize(math.Abs(r.ExpectedShortfall), minES, maxES)
		normLiquidity := 1 - normalize(r.SpreadPercent, minSpread, maxSpread)

		score := normLiquidity*weightLiquidity +
			normProb*weightProbability +
			normVaR*weightVaR +
			normES*weightES
		r.CompositeScore = score * r.Volume()
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})
	return results
}

// normalize maps v into [0,1] over [lo,hi]; a degenerate range scores 1.
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}
