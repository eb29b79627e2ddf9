package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RSILab/internal/model"
	"RSILab/internal/notifier"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot with daily signal checks and weekly sweeps",
	Long: `Start the cron scheduler (schedule.daily_cron, schedule.weekly_cron) and
answer /signal, /rsi, /sweep and /help over Telegram. Set RUN_ON_START=true to
run a sweep immediately.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("[INFO] RSILab starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	rec := openRecorder(cfg)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := newScheduler(ctx, cfg, col, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing sweep now")
		go func() {
			res, runID, err := sched.RunSweepNow(ctx, model.TriggerManual)
			if err != nil {
				log.Printf("[ERROR] startup sweep: %v", err)
				return
			}
			if err := tn.SendWithRetry(ctx, notifier.FormatSweepSummary(res, cfg.Report.TopN, runID), 3); err != nil {
				log.Printf("[ERROR] send notification: %v", err)
			}
		}()
	}

	log.Printf("[INFO] RSILab is running for %s. Press Ctrl+C to stop.", cfg.Analysis.Symbol)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] RSILab stopped")
	return nil
}
