package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderVNDirect = "vndirect"
	ProviderYahoo    = "yahoo"
	ProviderMock     = "mock"
)

const defaultMaxRetries = 3

// Config holds all application configuration.
type Config struct {
	Symbol   string `yaml:"symbol"`
	Provider struct {
		Name       string        `yaml:"name"`
		BaseURL    string        `yaml:"base_url"`
		Size       int           `yaml:"size"`
		MaxRetries int           `yaml:"max_retries"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"provider"`
	Commentary struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"commentary"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
		SignalCron string `yaml:"signal_cron"`
		Timezone   string `yaml:"timezone"`
	} `yaml:"schedule"`
	Server struct {
		Addr    string        `yaml:"addr"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
	Log   struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadDotEnv loads variables from a .env file when it exists. Variables
// already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Preset so that an explicit max_retries: 0 survives the defaults.
	cfg.Provider.MaxRetries = defaultMaxRetries

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"STOCK_SYMBOL", &c.Symbol},
		{"PROVIDER_NAME", &c.Provider.Name},
		{"PROVIDER_BASE_URL", &c.Provider.BaseURL},
		{"OPENAI_API_KEY", &c.Commentary.APIKey},
		{"OPENAI_BASE_URL", &c.Commentary.BaseURL},
		{"OPENAI_MODEL", &c.Commentary.Model},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"CRON_REPORT", &c.Schedule.ReportCron},
		{"CRON_SIGNAL", &c.Schedule.SignalCron},
		{"TZ_NAME", &c.Schedule.Timezone},
		{"SERVER_ADDR", &c.Server.Addr},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTPS_PROXY", &c.Proxy},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("PROVIDER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Provider.Size = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Symbol == "" {
		c.Symbol = "HPG"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = ProviderVNDirect
	}
	if c.Provider.Size == 0 {
		c.Provider.Size = 300
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Commentary.Model == "" {
		c.Commentary.Model = "gpt-3.5-turbo"
	}
	if c.Commentary.Timeout == 0 {
		c.Commentary.Timeout = 60 * time.Second
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 30 15 * * 1-5"
	}
	if c.Schedule.SignalCron == "" {
		c.Schedule.SignalCron = "0 0 9 * * 1-5"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Asia/Ho_Chi_Minh"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 90 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockpulse.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderVNDirect, ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("provider.name must be one of vndirect, yahoo, mock, got %q", c.Provider.Name)
	}
	if c.Provider.Size <= 0 {
		return fmt.Errorf("provider.size must be positive")
	}
	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider.max_retries must not be negative")
	}
	if _, err := cronParser.Parse(c.Schedule.ReportCron); err != nil {
		return fmt.Errorf("schedule.report_cron: %w", err)
	}
	if _, err := cronParser.Parse(c.Schedule.SignalCron); err != nil {
		return fmt.Errorf("schedule.signal_cron: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// ValidateWatch additionally requires the Telegram credentials.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Location returns the scheduler time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}
