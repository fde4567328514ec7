package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/xhhuango/json"
	"gopkg.in/yaml.v3"

	"optprofit/marketdata"
	"optprofit/models"
	"optprofit/positions"
)

type scanConfig struct {
	Snapshots  []string                 `yaml:"snapshots"`
	Strategies []string                 `yaml:"strategies"`
	Filter     positions.FilterCriteria `yaml:"filter"`
	TradeCost  float64                  `yaml:"trade_cost"`
	Workers    int                      `yaml:"workers"`
	TopN       int                      `yaml:"top_n"`
	Output     string                   `yaml:"output"`
	MonitorCPU bool                     `yaml:"monitor_cpu"`
}

func loadConfig(path string) (*scanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &scanConfig{TopN: 10, Output: "results.json"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Snapshots) == 0 {
		return nil, fmt.Errorf("config %s: no snapshot files listed", path)
	}
	return cfg, nil
}

func parseStrategies(names []string) ([]positions.Strategy, error) {
	if len(names) == 0 {
		return []positions.Strategy{positions.VerticalBullPut}, nil
	}
	var out []positions.Strategy
	for _, name := range names {
		switch name {
		case "single":
			out = append(out, positions.Single)
		case "vertical_bull_put":
			out = append(out, positions.VerticalBullPut)
		case "vertical_bear_call":
			out = append(out, positions.VerticalBearCall)
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	return out, nil
}

func main() {
	configPath := flag.String("config", "scan.yaml", "scan configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}
	log := logrus.WithField("app", "optprofit")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("cannot load scan config")
	}
	strategies, err := parseStrategies(cfg.Strategies)
	if err != nil {
		log.WithError(err).Fatal("cannot parse strategies")
	}

	var snaps []*marketdata.Snapshot
	for _, path := range cfg.Snapshots {
		snap, err := marketdata.LoadSnapshot(path)
		if err != nil {
			log.WithError(err).Warn("skipping snapshot")
			continue
		}
		log.WithFields(logrus.Fields{
			"symbol": snap.Symbol,
			"chains": len(snap.Chains),
		}).Info("loaded snapshot")
		snaps = append(snaps, snap)
	}
	if len(snaps) == 0 {
		log.Fatal("no usable snapshots")
	}

	jobs := positions.BuildJobs(snaps, strategies)
	results := positions.Scan(jobs, positions.ScanConfig{
		Filter:     cfg.Filter,
		Style:      models.American2002,
		TradeCost:  cfg.TradeCost,
		Workers:    cfg.Workers,
		Progress:   true,
		MonitorCPU: cfg.MonitorCPU,
	}, log)

	if len(results) == 0 {
		log.Warn("no candidates survived filtering, check thresholds")
		return
	}

	results = positions.ScoreAndRank(results)
	if cfg.TopN > 0 && len(results) > cfg.TopN {
		results = results[:cfg.TopN]
	}

	out, err := json.Marshal(results)
	if err != nil {
		log.WithError(err).Fatal("cannot marshal results")
	}
	if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		log.WithError(err).Fatal("cannot write results")
	}
	log.WithFields(logrus.Fields{
		"results": len(results),
		"file":    cfg.Output,
	}).Info("wrote ranked results")
}
