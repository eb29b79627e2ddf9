package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"RSILAB_SYMBOL", "RSILAB_START", "RSILAB_END", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "^N225", cfg.Analysis.Symbol)
	start, end, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), end)

	lbs := cfg.Analysis.LookbackRange.Values()
	assert.Len(t, lbs, 36)
	assert.Equal(t, 5, lbs[0])
	assert.Equal(t, 40, lbs[len(lbs)-1])
	assert.Len(t, cfg.Analysis.UpperThresholdRange.Values(), 30)
	assert.Len(t, cfg.Analysis.LowerThresholdRange.Values(), 30)
	assert.Equal(t, 30, cfg.Horizon())

	sp := cfg.StrategyParams()
	assert.Equal(t, 14, sp.TimePeriod)
	assert.Equal(t, 80.0, sp.RSIUpper)
	assert.Equal(t, 20.0, sp.RSILower)
	assert.Error(t, cfg.ValidateBot())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
analysis:
  symbol: "^GSPC"
  start_date: "2015-01-01"
  end_date: "2016-06-30"
  lookback_range: {min: 10, max: 12}
  horizon_days: 0
strategy:
  timeperiod: 9
telegram:
  bot_token: "from-file"
`)
	t.Setenv("RSILAB_SYMBOL", "^N225")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CACHE_DIR", "/tmp/rsilab-cache")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateBot())

	assert.Equal(t, "^N225", cfg.Analysis.Symbol, "env wins over file")
	assert.Equal(t, []int{10, 11, 12}, cfg.Analysis.LookbackRange.Values())
	assert.Equal(t, 0, cfg.Horizon(), "explicit zero horizon kept")
	assert.Equal(t, 9, cfg.Strategy.TimePeriod)
	assert.Equal(t, 80.0, cfg.Strategy.RSIUpper)
	assert.Equal(t, "from-file", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "/tmp/rsilab-cache", cfg.Cache.Dir)
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "analysis: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad start", func(c *Config) { c.Analysis.StartDate = "2011/01/01" }, "start_date"},
		{"end before start", func(c *Config) { c.Analysis.EndDate = "2010-01-01" }, "before"},
		{"zero lookback", func(c *Config) { c.Analysis.LookbackRange = Range{Min: 0, Max: 5} }, "lookback_range"},
		{"inverted lookback", func(c *Config) { c.Analysis.LookbackRange = Range{Min: 9, Max: 5} }, "lookback_range"},
		{"upper above 100", func(c *Config) { c.Analysis.UpperThresholdRange = Range{Min: 90, Max: 101} }, "upper_threshold_range"},
		{"lower below 0", func(c *Config) { c.Analysis.LowerThresholdRange = Range{Min: -1, Max: 10} }, "lower_threshold_range"},
		{"negative horizon", func(c *Config) { h := -1; c.Analysis.HorizonDays = &h }, "horizon_days"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }, "workers"},
		{"inverted bands", func(c *Config) { c.Strategy.RSILower = 90 }, "strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv("CONFIG_PATH", "/etc/rsilab.yaml")
	assert.Equal(t, "/etc/rsilab.yaml", Path())
}

func TestRange_Values(t *testing.T) {
	assert.Equal(t, []int{7}, Range{Min: 7, Max: 7}.Values())
	assert.Nil(t, Range{Min: 8, Max: 7}.Values())
}
