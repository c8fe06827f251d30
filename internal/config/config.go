package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the envconfig prefix. A field is read from
// TRENDSENTINEL_<SECTION>_<NAME> first, then from the bare tag name,
// e.g. ALPHAVANTAGE_API_KEY or TELEGRAM_BOT_TOKEN.
const EnvPrefix = "TRENDSENTINEL"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Kind     string   `yaml:"kind" envconfig:"DATA_SOURCE" validate:"oneof=csv alphavantage"`
		CSVPath  string   `yaml:"csv_path" envconfig:"CSV_PATH"`
		BaseURL  string   `yaml:"base_url" envconfig:"AV_BASE_URL" validate:"omitempty,url"`
		APIKey   string   `yaml:"api_key" envconfig:"ALPHAVANTAGE_API_KEY"`
		Function string   `yaml:"function" envconfig:"AV_FUNCTION" validate:"omitempty,oneof=TIME_SERIES_INTRADAY TIME_SERIES_DAILY"`
		Interval string   `yaml:"interval" envconfig:"AV_INTERVAL"`
		Symbols  []string `yaml:"symbols" envconfig:"SYMBOLS" validate:"min=1,dive,required"`
	} `yaml:"data_source"`
	Analysis struct {
		ShortPeriod int `yaml:"short_period" envconfig:"SHORT_PERIOD" validate:"gt=0"`
		LongPeriod  int `yaml:"long_period" envconfig:"LONG_PERIOD" validate:"gtfield=ShortPeriod"`
		MaxWindow   int `yaml:"max_window" envconfig:"MAX_WINDOW" validate:"gtefield=LongPeriod"`
	} `yaml:"analysis"`
	Schedule struct {
		Interval time.Duration `yaml:"interval" envconfig:"POLL_INTERVAL" validate:"gte=1s"`
		Cron     string        `yaml:"cron" envconfig:"POLL_CRON"`
	} `yaml:"schedule"`
	Output struct {
		ReportPath string `yaml:"report_path" envconfig:"REPORT_PATH"`
	} `yaml:"output"`
	Database struct {
		Driver string `yaml:"driver" envconfig:"DB_DRIVER" validate:"omitempty,oneof=sqlite postgres"`
		DSN    string `yaml:"dsn" envconfig:"DB_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr" envconfig:"REDIS_ADDR"`
		Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
		DB       int           `yaml:"db" envconfig:"REDIS_DB" validate:"gte=0"`
		TTL      time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`
	} `yaml:"redis"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
		OnChange bool   `yaml:"on_change" envconfig:"TELEGRAM_ON_CHANGE"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, loads .env if present, then applies
// environment variable overrides and defaults.
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

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Kind == "" {
		if c.DataSource.CSVPath != "" {
			c.DataSource.Kind = "csv"
		} else {
			c.DataSource.Kind = "alphavantage"
		}
	}
	if c.DataSource.Kind == "alphavantage" && c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://www.alphavantage.co"
	}
	if c.DataSource.Function == "" {
		c.DataSource.Function = "TIME_SERIES_INTRADAY"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "5min"
	}
	if len(c.DataSource.Symbols) == 0 {
		c.DataSource.Symbols = []string{"IBM"}
	}
	if c.Analysis.ShortPeriod == 0 {
		c.Analysis.ShortPeriod = 10
	}
	if c.Analysis.LongPeriod == 0 {
		c.Analysis.LongPeriod = 20
	}
	if c.Analysis.MaxWindow == 0 {
		c.Analysis.MaxWindow = 50
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = time.Minute
	}
	if c.Output.ReportPath == "" {
		c.Output.ReportPath = "data/trend_report.csv"
	}
	if c.Database.Driver == "" && c.Database.DSN != "" {
		c.Database.Driver = "sqlite"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 24 * time.Hour
	}
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: %s %s", verrs[0].Namespace(), verrs[0].Tag(), verrs[0].Param())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	switch c.DataSource.Kind {
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv source")
		}
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage source")
		}
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
