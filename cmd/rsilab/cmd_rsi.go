package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"RSILab/internal/calculator"
	"RSILab/internal/report"
)

var (
	rsiPeriod int
	rsiLast   int
	rsiCSV    string
)

var rsiCmd = &cobra.Command{
	Use:   "rsi",
	Short: "Print RSI with 20/30/70/80 zones for the analysis window",
	RunE:  runRSI,
}

func init() {
	rootCmd.AddCommand(rsiCmd)
	rsiCmd.Flags().IntVar(&rsiPeriod, "period", 0, "RSI lookback (default strategy.timeperiod)")
	rsiCmd.Flags().IntVar(&rsiLast, "last", 20, "print only the last N rows (0 = all)")
	rsiCmd.Flags().StringVar(&rsiCSV, "csv", "", "also write all rows to this CSV file")
}

func runRSI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	period := rsiPeriod
	if period == 0 {
		period = cfg.Strategy.TimePeriod
	}
	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	series, err := col.Collect(cmd.Context())
	if err != nil {
		return err
	}
	rsi, err := calculator.CalculateRSISeries(series, period)
	if err != nil {
		return err
	}
	rows, err := report.RSIRows(series, rsi)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s RSI(%d)\n", series.Symbol, period)
	if err := report.WriteRSIText(out, rows, rsiLast); err != nil {
		return err
	}

	if rsiCSV != "" {
		f, err := os.Create(rsiCSV)
		if err != nil {
			return fmt.Errorf("create %s: %w", rsiCSV, err)
		}
		defer f.Close()
		if err := report.WriteRSICSV(f, rows); err != nil {
			return fmt.Errorf("write %s: %w", rsiCSV, err)
		}
		log.Printf("[INFO] wrote %d rows to %s", len(rows), rsiCSV)
	}
	return nil
}
