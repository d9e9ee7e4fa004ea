package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"RuleBadge/internal/chart"
	"RuleBadge/internal/history"
)

// Config holds all application configuration.
type Config struct {
	History struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
		Retries *uint64       `yaml:"retries"`
		Dedup   string        `yaml:"dedup"`
	} `yaml:"history"`
	OutputDir string `yaml:"output_dir"`
	Badge     struct {
		Label string `yaml:"label"`
		Color string `yaml:"color"`
		File  string `yaml:"file"`
	} `yaml:"badge"`
	Chart struct {
		File            string `yaml:"file"`
		DateFormat      string `yaml:"date_format"`
		LineColor       string `yaml:"line_color"`
		BackgroundColor string `yaml:"background_color"`
		Language        string `yaml:"language"`
		Width           int    `yaml:"width"`
		Height          int    `yaml:"height"`
	} `yaml:"chart"`
	Timezone string            `yaml:"timezone"`
	Lists    map[string]string `yaml:"lists"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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

	// Environment variable overrides
	if v := os.Getenv("HISTORY_URL"); v != "" {
		cfg.History.URL = v
	}
	if v := os.Getenv("HISTORY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_TIMEOUT: %w", err)
		}
		cfg.History.Timeout = d
	}
	if v := os.Getenv("HISTORY_DEDUP"); v != "" {
		cfg.History.Dedup = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("CHART_LANGUAGE"); v != "" {
		cfg.Chart.Language = v
	}
	if v := os.Getenv("TZ_NAME"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HISTORY_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_RETRIES: %w", err)
		}
		cfg.History.Retries = &n
	}

	// Defaults
	if cfg.History.Timeout == 0 {
		cfg.History.Timeout = 15 * time.Second
	}
	if cfg.History.Retries == nil {
		n := uint64(2)
		cfg.History.Retries = &n
	}
	if cfg.History.Dedup == "" {
		cfg.History.Dedup = string(history.DedupValue)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "badge_data"
	}
	if cfg.Badge.Label == "" {
		cfg.Badge.Label = "rules"
	}
	if cfg.Badge.Color == "" {
		cfg.Badge.Color = "blue"
	}
	if cfg.Badge.File == "" {
		cfg.Badge.File = "rules.json"
	}
	if cfg.Chart.File == "" {
		cfg.Chart.File = "rule_counts_chart.png"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 */6 * * *"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.History.Timeout <= 0 {
		return fmt.Errorf("history.timeout must be positive")
	}
	if _, err := history.ParseDedupPolicy(c.History.Dedup); err != nil {
		return fmt.Errorf("history.dedup: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.ChartOptions().Validate(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for name := range c.Lists {
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("lists: invalid badge name %q", name)
		}
		if file := name + ".json"; file == c.Badge.File || file == "history.json" {
			return fmt.Errorf("lists: badge name %q collides with %s", name, file)
		}
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HistoryLocation is where the previous series is read from: the remote URL
// if configured, otherwise history.json in the output directory.
func (c *Config) HistoryLocation() string {
	if c.History.URL != "" {
		return c.History.URL
	}
	return c.HistoryPath()
}

// HistoryPath is where the updated series is written.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.OutputDir, "history.json")
}

// ChartOptions maps the chart section to renderer options.
func (c *Config) ChartOptions() chart.Options {
	opts := chart.Options{
		DateFormat:      c.Chart.DateFormat,
		LineColor:       c.Chart.LineColor,
		BackgroundColor: c.Chart.BackgroundColor,
		LabelLanguage:   c.Chart.Language,
		Width:           c.Chart.Width,
		Height:          c.Chart.Height,
	}
	if loc, err := c.Location(); err == nil {
		opts.Location = loc
	}
	return opts
}
