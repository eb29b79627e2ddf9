package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"RSILab/internal/collector"
	"RSILab/internal/config"
	"RSILab/internal/recorder"
	"RSILab/internal/scheduler"
	"RSILab/internal/sweep"
)

var (
	cfgPath     string
	symbolFlag  string
	startFlag   string
	endFlag     string
	workersFlag int
)

var rootCmd = &cobra.Command{
	Use:   "rsilab",
	Short: "RSI threshold sweep and crossover signals",
	Long: `RSILab measures what prices did after RSI crossed a threshold.

For every lookback period and threshold in the configured grid it finds the
days RSI crossed the threshold and averages the forward price ratios over the
following horizon, for upward crossings of the upper band and downward
crossings of the lower band.

Examples:
  rsilab fetch ^N225 ^GSPC
  rsilab sweep --horizon 20
  rsilab rsi --last 30 --csv data/n225_rsi.csv
  rsilab signal
  rsilab serve`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", config.Path(), "config file (env CONFIG_PATH)")
	pf.StringVar(&symbolFlag, "symbol", "", "override analysis.symbol")
	pf.StringVar(&startFlag, "start", "", "override analysis.start_date (YYYY-MM-DD)")
	pf.StringVar(&endFlag, "end", "", "override analysis.end_date (YYYY-MM-DD)")
	pf.IntVar(&workersFlag, "workers", -1, "override analysis.workers (0 = one per CPU)")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if symbolFlag != "" {
		cfg.Analysis.Symbol = symbolFlag
	}
	if startFlag != "" {
		cfg.Analysis.StartDate = startFlag
	}
	if endFlag != "" {
		cfg.Analysis.EndDate = endFlag
	}
	if workersFlag >= 0 {
		cfg.Analysis.Workers = workersFlag
	}
}

// newFetchers returns the upstream fetcher and the same fetcher behind the
// JSON file cache.
func newFetchers(cfg *config.Config) (live, cached collector.Fetcher) {
	if cfg.DataSource.BaseURL != "" {
		live = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		live = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", live.Name())
	return live, collector.NewCachedFetcher(live, cfg.Cache.Dir)
}

func newCollector(cfg *config.Config) (*collector.Collector, error) {
	start, end, err := cfg.Window()
	if err != nil {
		return nil, err
	}
	live, cached := newFetchers(cfg)
	col := collector.NewCollector(cached, cfg.Analysis.Symbol, start, end)
	col.Live = live
	return col, nil
}

// openRecorder falls back to a no-op recorder when SQLite is unavailable.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func sweepParams(cfg *config.Config) sweep.Params {
	return sweep.Params{
		Lookbacks:       cfg.Analysis.LookbackRange.Values(),
		UpperThresholds: cfg.Analysis.UpperThresholdRange.Values(),
		LowerThresholds: cfg.Analysis.LowerThresholdRange.Values(),
		HorizonDays:     cfg.Horizon(),
		Workers:         cfg.Analysis.Workers,
	}
}

func newScheduler(ctx context.Context, cfg *config.Config, col *collector.Collector, sender scheduler.Sender, rec recorder.Recorder) *scheduler.Scheduler {
	return scheduler.NewScheduler(ctx, col, sender, rec, scheduler.Settings{
		Sweep:     sweepParams(cfg),
		Strategy:  cfg.StrategyParams(),
		TopN:      cfg.Report.TopN,
		ReportDir: cfg.Report.Dir,
	})
}
