package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
data_source:
  kind: alphavantage
  api_key: from-file
  function: TIME_SERIES_DAILY
  symbols: [IBM, MSFT]
analysis:
  short_period: 5
  long_period: 15
  max_window: 40
schedule:
  interval: 30s
telegram:
  bot_token: t
  chat_id: "1"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	// keep a stray .env in the working directory from leaking in
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return path
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-file", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"IBM", "MSFT"}, cfg.DataSource.Symbols)
	assert.Equal(t, 5, cfg.Analysis.ShortPeriod)
	assert.Equal(t, 15, cfg.Analysis.LongPeriod)
	assert.Equal(t, 40, cfg.Analysis.MaxWindow)
	assert.Equal(t, 30*time.Second, cfg.Schedule.Interval)
	assert.Equal(t, "https://www.alphavantage.co", cfg.DataSource.BaseURL)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")
	t.Setenv("TRENDSENTINEL_ANALYSIS_SHORT_PERIOD", "7")
	t.Setenv("SYMBOLS", "AAPL,GOOG")
	t.Setenv("POLL_INTERVAL", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, 7, cfg.Analysis.ShortPeriod)
	assert.Equal(t, []string{"AAPL", "GOOG"}, cfg.DataSource.Symbols)
	assert.Equal(t, 2*time.Minute, cfg.Schedule.Interval)
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeConfig(t, "data_source:\n  kind: alphavantage\n")
	require.NoError(t, os.WriteFile(".env", []byte("ALPHAVANTAGE_API_KEY=dotenv-key\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ALPHAVANTAGE_API_KEY") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.DataSource.APIKey)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	writeConfig(t, "")
	t.Setenv("CSV_PATH", "prices.csv")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "csv", cfg.DataSource.Kind)
	assert.Equal(t, 10, cfg.Analysis.ShortPeriod)
	assert.Equal(t, 20, cfg.Analysis.LongPeriod)
	assert.Equal(t, 50, cfg.Analysis.MaxWindow)
	assert.Equal(t, time.Minute, cfg.Schedule.Interval)
	assert.Equal(t, []string{"IBM"}, cfg.DataSource.Symbols)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.DataSource.Kind = "csv"
		c.DataSource.CSVPath = "p.csv"
		c.applyDefaults()
		return c
	}
	require.NoError(t, base().Validate())

	tests := map[string]func(c *Config){
		"unknown source":      func(c *Config) { c.DataSource.Kind = "ftp" },
		"csv without path":    func(c *Config) { c.DataSource.CSVPath = "" },
		"av without key":      func(c *Config) { c.DataSource.Kind = "alphavantage" },
		"short equals long":   func(c *Config) { c.Analysis.ShortPeriod = 20 },
		"window below long":   func(c *Config) { c.Analysis.MaxWindow = 10 },
		"zero short":          func(c *Config) { c.Analysis.ShortPeriod = -1 },
		"interval too small":  func(c *Config) { c.Schedule.Interval = time.Millisecond },
		"bad db driver":       func(c *Config) { c.Database.Driver = "mysql" },
		"token without chat":  func(c *Config) { c.Telegram.BotToken = "t" },
		"empty symbol":        func(c *Config) { c.DataSource.Symbols = []string{""} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
