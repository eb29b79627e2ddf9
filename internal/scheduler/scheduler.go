package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"RSILab/internal/calculator"
	"RSILab/internal/collector"
	"RSILab/internal/model"
	"RSILab/internal/notifier"
	"RSILab/internal/recorder"
	"RSILab/internal/report"
	"RSILab/internal/strategy"
	"RSILab/internal/sweep"

	"github.com/robfig/cron/v3"
)

// recentDays is the calendar window fetched for daily checks. Wilder smoothing
// needs a long warm-up before RSI values settle.
const recentDays = 365

// ErrSweepRunning is returned when a sweep is requested while one is in flight.
var ErrSweepRunning = errors.New("a sweep is already running")

// Sender delivers notification text, typically a *notifier.TelegramNotifier.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Settings carries the analysis parameters used by scheduled tasks.
type Settings struct {
	Sweep     sweep.Params
	Strategy  model.StrategyParams
	TopN      int
	ReportDir string // pivots are written here after each sweep; empty disables
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender
	Recorder  recorder.Recorder
	Settings  Settings
	Ctx       context.Context

	sweeping atomic.Bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Sender, rec recorder.Recorder, settings Settings) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Settings:  settings,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily signal check and the weekly sweep.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyCheck); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklySweep); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// CheckSignal evaluates the crossover strategy on the most recent bar.
func (s *Scheduler) CheckSignal(ctx context.Context, trigger model.TriggerType) (*model.TradeSignal, error) {
	series, err := s.Collector.CollectRecent(ctx, recentDays)
	if err != nil {
		return nil, err
	}
	sig, err := strategy.Latest(series, s.Settings.Strategy)
	if err != nil {
		return nil, err
	}
	sig.TriggerType = trigger
	return sig, nil
}

func (s *Scheduler) dailyCheck() {
	log.Println("[INFO] running daily signal check")
	sig, err := s.CheckSignal(s.Ctx, model.TriggerDaily)
	if err != nil {
		log.Printf("[ERROR] daily check: %v", err)
		return
	}
	if sig.Action == model.ActionHold {
		log.Printf("[INFO] %s %s: RSI %.2f -> %.2f, no crossover",
			sig.Symbol, sig.Time.Format("2006-01-02"), sig.PrevRSI, sig.RSI)
		return
	}

	log.Printf("[INFO] %s %s signal at %.2f (RSI %.2f)", sig.Symbol, sig.Action, sig.Price, sig.RSI)
	s.trySend(notifier.FormatSignal(sig))
	if err := s.Recorder.RecordSignal(sig); err != nil {
		log.Printf("[ERROR] record signal: %v", err)
	}
}

// RunSweepNow collects the analysis window, runs the sweep, records it and
// writes pivot CSVs. Only one sweep runs at a time.
func (s *Scheduler) RunSweepNow(ctx context.Context, trigger model.TriggerType) (*model.SweepResult, string, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, "", ErrSweepRunning
	}
	defer s.sweeping.Store(false)

	series, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, "", err
	}
	began := time.Now()
	res, err := sweep.Run(ctx, series, s.Settings.Sweep)
	if err != nil {
		return nil, "", fmt.Errorf("sweep: %w", err)
	}
	elapsed := time.Since(began)
	log.Printf("[INFO] sweep %s done in %v: %d lookbacks, %d+%d thresholds",
		res.Symbol, elapsed.Round(time.Millisecond), len(s.Settings.Sweep.Lookbacks),
		len(s.Settings.Sweep.UpperThresholds), len(s.Settings.Sweep.LowerThresholds))

	runID, err := s.Recorder.RecordSweep(&recorder.SweepRun{
		Result:      res,
		Workers:     s.Settings.Sweep.Workers,
		TriggerType: trigger,
		Duration:    elapsed,
	})
	if err != nil {
		log.Printf("[ERROR] record sweep: %v", err)
	}

	if s.Settings.ReportDir != "" {
		paths, err := report.SavePivots(s.Settings.ReportDir, res)
		if err != nil {
			log.Printf("[ERROR] save pivots: %v", err)
		}
		for _, p := range paths {
			log.Printf("[INFO] wrote %s", p)
		}
	}
	return res, runID, nil
}

func (s *Scheduler) weeklySweep() {
	log.Println("[INFO] running weekly sweep")
	res, runID, err := s.RunSweepNow(s.Ctx, model.TriggerWeekly)
	if err != nil {
		log.Printf("[ERROR] weekly sweep: %v", err)
		s.trySend(fmt.Sprintf("❌ 周度扫描失败: %v", err))
		return
	}
	s.trySend(notifier.FormatSweepSummary(res, s.Settings.TopN, runID))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string, args []string) string {
	switch command {
	case "/signal":
		sig, err := s.CheckSignal(ctx, model.TriggerManual)
		if err != nil {
			return fmt.Sprintf("❌ 信号计算失败: %v", err)
		}
		return notifier.FormatSignal(sig)

	case "/rsi":
		n := 10
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 && v <= 60 {
				n = v
			}
		}
		return s.rsiReply(ctx, n)

	case "/sweep":
		if len(args) > 0 && args[0] == "run" {
			res, runID, err := s.RunSweepNow(ctx, model.TriggerManual)
			if err != nil {
				return fmt.Sprintf("❌ 扫描失败: %v", err)
			}
			return notifier.FormatSweepSummary(res, s.Settings.TopN, runID)
		}
		rec, err := s.Recorder.LatestSweep(s.Collector.Symbol)
		if err != nil {
			return fmt.Sprintf("❌ 读取扫描记录失败: %v", err)
		}
		if rec == nil {
			return "暂无扫描记录，发送 /sweep run 立即扫描"
		}
		return notifier.FormatRecordedSweep(rec.RunID, rec.RecordedAt, rec.Result, s.Settings.TopN)

	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) rsiReply(ctx context.Context, n int) string {
	series, err := s.Collector.CollectRecent(ctx, recentDays)
	if err != nil {
		return fmt.Sprintf("❌ 数据采集失败: %v", err)
	}
	period := s.Settings.Strategy.TimePeriod
	rsi, err := calculator.CalculateRSISeries(series, period)
	if err != nil {
		return fmt.Sprintf("❌ RSI 计算失败: %v", err)
	}
	rows, err := report.RSIRows(series, rsi)
	if err != nil {
		return fmt.Sprintf("❌ RSI 计算失败: %v", err)
	}
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return notifier.FormatRSI(series.Symbol, period, rows)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
