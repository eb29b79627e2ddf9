package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"RSILab/internal/model"
	"RSILab/internal/notifier"
	"RSILab/internal/recorder"
	"RSILab/internal/report"
	"RSILab/internal/scheduler"
)

var (
	sweepHorizon int
	sweepNotify  bool
	sweepNoDB    bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the RSI threshold sweep over the analysis window",
	Long: `Compute average forward price change after RSI crossings for every
(lookback, threshold) pair in the configured grid. Prints both pivot tables and
the top lookbacks, writes pivot CSVs under report.dir and records the run.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepHorizon, "horizon", -1, "override analysis.horizon_days")
	sweepCmd.Flags().BoolVar(&sweepNotify, "notify", false, "send the summary to Telegram")
	sweepCmd.Flags().BoolVar(&sweepNoDB, "no-record", false, "do not record the run in SQLite")
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sweepHorizon >= 0 {
		cfg.Analysis.HorizonDays = &sweepHorizon
	}
	col, err := newCollector(cfg)
	if err != nil {
		return err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if !sweepNoDB {
		rec = openRecorder(cfg)
	}
	defer rec.Close()

	var sender scheduler.Sender
	if sweepNotify {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}
		sender = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	ctx := cmd.Context()
	sched := newScheduler(ctx, cfg, col, sender, rec)
	res, runID, err := sched.RunSweepNow(ctx, model.TriggerManual)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s..%s, horizon %d days, run %s\n\n", res.Symbol,
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.HorizonDays, runID)
	for _, tbl := range []*model.SweepTable{res.Upper, res.Lower} {
		if err := report.WritePivotText(out, tbl); err != nil {
			return err
		}
		fmt.Fprintln(out)
		if err := report.WriteTop(out, tbl, cfg.Report.TopN); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if sender != nil {
		if err := sender.SendWithRetry(ctx, notifier.FormatSweepSummary(res, cfg.Report.TopN, runID), 3); err != nil {
			log.Printf("[ERROR] send sweep summary: %v", err)
		}
	}
	return nil
}
