package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"RSILab/internal/model"
	"RSILab/internal/strategy"
)

var (
	signalHistory bool
	signalRecord  bool
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Evaluate the RSI crossover strategy",
	Long: `Report whether the latest bar is an RSI crossover: BUY when RSI falls
through strategy.rsi_lower, SELL when it rises through strategy.rsi_upper.
With --history every crossover in the analysis window is listed instead.`,
	RunE: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.Flags().BoolVar(&signalHistory, "history", false, "list all crossovers in the analysis window")
	signalCmd.Flags().BoolVar(&signalRecord, "record", false, "record a BUY/SELL latest signal in SQLite")
}

func runSignal(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	params := cfg.StrategyParams()

	if signalHistory {
		series, err := col.Collect(cmd.Context())
		if err != nil {
			return err
		}
		sigs, err := strategy.Evaluate(series, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s RSI(%d) %.0f/%.0f: %d signals\n", series.Symbol,
			params.TimePeriod, params.RSILower, params.RSIUpper, len(sigs))
		for _, s := range sigs {
			fmt.Fprintf(out, "%s  %-4s  %10.2f  RSI %6.2f -> %6.2f\n",
				s.Time.Format("2006-01-02"), s.Action, s.Price, s.PrevRSI, s.RSI)
		}
		return nil
	}

	rec := openRecorder(cfg)
	defer rec.Close()
	sched := newScheduler(cmd.Context(), cfg, col, nil, rec)
	sig, err := sched.CheckSignal(cmd.Context(), model.TriggerManual)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s  %s  close %.2f  RSI(%d) %.2f -> %.2f\n", sig.Symbol,
		sig.Time.Format("2006-01-02"), sig.Action, sig.Price, params.TimePeriod, sig.PrevRSI, sig.RSI)
	if signalRecord && sig.Action != model.ActionHold {
		if err := rec.RecordSignal(sig); err != nil {
			return fmt.Errorf("record signal: %w", err)
		}
	}
	return nil
}
