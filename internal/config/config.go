package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port       int    `yaml:"port"`
		APIKey     string `yaml:"api_key"`
		CORSOrigin string `yaml:"cors_origin"`
		StaticDir  string `yaml:"static_dir"`
	} `yaml:"server"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo | stooq | mock
		BaseURL  string `yaml:"base_url"`
	} `yaml:"data_source"`
	Cache struct {
		SQLitePath string `yaml:"sqlite_path"`
		TTLHours   int    `yaml:"ttl_hours"`
	} `yaml:"cache"`
	Dashboard struct {
		Watchlist    []string `yaml:"watchlist"`
		RefreshCron  string   `yaml:"refresh_cron"`
		ShortWindow  int      `yaml:"short_window"`
		LongWindow   int      `yaml:"long_window"`
		LookbackDays int      `yaml:"lookback_days"`
		MaxTickers   int      `yaml:"max_tickers"`
	} `yaml:"dashboard"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Dashboard.Watchlist = splitList(v)
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Dashboard.RefreshCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "web/static"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.Cache.TTLHours == 0 {
		cfg.Cache.TTLHours = 12
	}
	if cfg.Dashboard.RefreshCron == "" {
		cfg.Dashboard.RefreshCron = "0 0 22 * * 1-5"
	}
	if cfg.Dashboard.ShortWindow == 0 {
		cfg.Dashboard.ShortWindow = 20
	}
	if cfg.Dashboard.LongWindow == 0 {
		cfg.Dashboard.LongWindow = 50
	}
	if cfg.Dashboard.LookbackDays == 0 {
		cfg.Dashboard.LookbackDays = 180
	}
	if cfg.Dashboard.MaxTickers == 0 {
		cfg.Dashboard.MaxTickers = 10
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "stooq", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo, stooq or mock, got %q", c.DataSource.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Dashboard.ShortWindow < 1 || c.Dashboard.LongWindow < 1 {
		return fmt.Errorf("dashboard windows must be >= 1")
	}
	if c.Dashboard.ShortWindow >= c.Dashboard.LongWindow {
		return fmt.Errorf("dashboard.short_window (%d) should be below long_window (%d)",
			c.Dashboard.ShortWindow, c.Dashboard.LongWindow)
	}
	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("cache.ttl_hours must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
