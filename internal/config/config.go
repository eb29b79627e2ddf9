package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"RSILab/internal/model"
)

const (
	DefaultPath = "configs/config.yaml"
	dateLayout  = "2006-01-02"
)

// Range is an inclusive integer range used for sweep grids.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Values expands the range into Min, Min+1, ..., Max.
func (r Range) Values() []int {
	if r.Max < r.Min {
		return nil
	}
	return lo.RangeWithSteps(r.Min, r.Max+1, 1)
}

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Symbol              string `yaml:"symbol"`
		StartDate           string `yaml:"start_date"`
		EndDate             string `yaml:"end_date"`
		LookbackRange       Range  `yaml:"lookback_range"`
		UpperThresholdRange Range  `yaml:"upper_threshold_range"`
		LowerThresholdRange Range  `yaml:"lower_threshold_range"`
		HorizonDays         *int   `yaml:"horizon_days"`
		Workers             int    `yaml:"workers"`
	} `yaml:"analysis"`
	Strategy struct {
		TimePeriod int     `yaml:"timeperiod"`
		RSIUpper   float64 `yaml:"rsi_upper"`
		RSILower   float64 `yaml:"rsi_lower"`
	} `yaml:"strategy"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	Report struct {
		Dir  string `yaml:"dir"`
		TopN int    `yaml:"top_n"`
	} `yaml:"report"`
	Proxy string `yaml:"proxy"`
}

// Path returns the config file to load: CONFIG_PATH when set, else DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, loads .env if present, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Environment variable overrides
func (c *Config) applyEnv() {
	if v := os.Getenv("RSILAB_SYMBOL"); v != "" {
		c.Analysis.Symbol = v
	}
	if v := os.Getenv("RSILAB_START"); v != "" {
		c.Analysis.StartDate = v
	}
	if v := os.Getenv("RSILAB_END"); v != "" {
		c.Analysis.EndDate = v
	}
	if v := os.Getenv("RSILAB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Workers = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		c.Schedule.DailyCron = v
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		c.Schedule.WeeklyCron = v
	}
}

func (c *Config) applyDefaults() {
	a := &c.Analysis
	if a.Symbol == "" {
		a.Symbol = "^N225"
	}
	if a.StartDate == "" {
		a.StartDate = "2011-01-01"
	}
	if a.EndDate == "" {
		a.EndDate = "2020-12-31"
	}
	if a.LookbackRange == (Range{}) {
		a.LookbackRange = Range{Min: 5, Max: 40}
	}
	if a.UpperThresholdRange == (Range{}) {
		a.UpperThresholdRange = Range{Min: 60, Max: 89}
	}
	if a.LowerThresholdRange == (Range{}) {
		a.LowerThresholdRange = Range{Min: 10, Max: 39}
	}
	// horizon_days: 0 is a legal value, so only an absent key gets the default
	if a.HorizonDays == nil {
		h := 30
		a.HorizonDays = &h
	}

	s := &c.Strategy
	if s.TimePeriod == 0 {
		s.TimePeriod = 14
	}
	if s.RSIUpper == 0 {
		s.RSIUpper = 80
	}
	if s.RSILower == 0 {
		s.RSILower = 20
	}

	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/rsilab.db"
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.WeeklyCron == "" {
		c.Schedule.WeeklyCron = "0 0 8 * * 6"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "data/reports"
	}
	if c.Report.TopN == 0 {
		c.Report.TopN = 5
	}
}

// Validate checks the analysis and strategy sections. Telegram settings are
// checked separately by ValidateBot since only the serve mode needs them.
func (c *Config) Validate() error {
	if _, _, err := c.Window(); err != nil {
		return err
	}
	a := c.Analysis
	if a.LookbackRange.Min < 1 || a.LookbackRange.Max < a.LookbackRange.Min {
		return fmt.Errorf("analysis.lookback_range must satisfy 1 <= min <= max, got %d..%d",
			a.LookbackRange.Min, a.LookbackRange.Max)
	}
	for _, th := range []struct {
		name string
		r    Range
	}{
		{"upper_threshold_range", a.UpperThresholdRange},
		{"lower_threshold_range", a.LowerThresholdRange},
	} {
		if th.r.Min < 0 || th.r.Max > 100 || th.r.Max < th.r.Min {
			return fmt.Errorf("analysis.%s must satisfy 0 <= min <= max <= 100, got %d..%d",
				th.name, th.r.Min, th.r.Max)
		}
	}
	if c.Horizon() < 0 {
		return fmt.Errorf("analysis.horizon_days must not be negative")
	}
	if a.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	s := c.Strategy
	if s.TimePeriod < 1 {
		return fmt.Errorf("strategy.timeperiod must be positive")
	}
	if s.RSILower < 0 || s.RSIUpper > 100 || s.RSILower >= s.RSIUpper {
		return fmt.Errorf("strategy bands must satisfy 0 <= rsi_lower < rsi_upper <= 100")
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must not be negative")
	}
	return nil
}

// ValidateBot checks that all fields required by the Telegram bot are set.
func (c *Config) ValidateBot() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Window parses the analysis start and end dates.
func (c *Config) Window() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.Analysis.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis.start_date: %w", err)
	}
	end, err = time.Parse(dateLayout, c.Analysis.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis.end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis.end_date %s is before start_date %s",
			c.Analysis.EndDate, c.Analysis.StartDate)
	}
	return start, end, nil
}

// Horizon returns the forward window length in days.
func (c *Config) Horizon() int {
	if c.Analysis.HorizonDays == nil {
		return 0
	}
	return *c.Analysis.HorizonDays
}

// StrategyParams returns the crossover strategy settings.
func (c *Config) StrategyParams() model.StrategyParams {
	return model.StrategyParams{
		TimePeriod: c.Strategy.TimePeriod,
		RSIUpper:   c.Strategy.RSIUpper,
		RSILower:   c.Strategy.RSILower,
	}
}
