package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol...]",
	Short: "Download or refresh cached daily closes",
	Long: `Fetch daily adjusted closes for the analysis window into the local cache.
Without arguments the configured analysis.symbol is fetched.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	symbols := args
	if len(symbols) == 0 {
		symbols = []string{cfg.Analysis.Symbol}
	}

	var failed int
	for _, sym := range symbols {
		series, err := col.CollectRange(cmd.Context(), sym, col.Start, col.End)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sym, err)
			continue
		}
		first, _ := series.First()
		last, _ := series.Last()
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %5d points  %s .. %s\n", sym, series.Len(),
			first.Time.Format("2006-01-02"), last.Time.Format("2006-01-02"))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
	}
	return nil
}
