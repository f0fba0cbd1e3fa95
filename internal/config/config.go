// Package config
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blunavi/trader/internal/tfutils"
)

/*
YAML config example:
symbol: "XAU-USDT"
timeframe: "1h"
ema_short: 9
ema_long: 21
risk_fraction: 0.01
sim_balance: 10000
open_hour: 8
close_hour: 17
mode: "paper"
broker_url: "https://api.example.com"
cache_ttl: 60s
telegram_token: "..."
telegram_chat_id: "..."
*/

// Duration wraps time.Duration so YAML values can be written as "60s"
// or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the immutable configuration passed into each component at
// construction. Credentials and the notification destination come from
// the environment, never from flags.
type Config struct {
	Symbol       string   `yaml:"symbol"`
	Timeframe    string   `yaml:"timeframe"`
	EMAShort     int      `yaml:"ema_short"`
	EMALong      int      `yaml:"ema_long"`
	RiskFraction float64  `yaml:"risk_fraction"`
	SimBalance   float64  `yaml:"sim_balance"`
	OpenHour     int      `yaml:"open_hour"`
	CloseHour    int      `yaml:"close_hour"`
	Mode         string   `yaml:"mode"` // "paper" or "live"
	BrokerURL    string   `yaml:"broker_url"`
	BarLimit     int      `yaml:"bar_limit"`
	CacheTTL     Duration `yaml:"cache_ttl"`
	MetricsAddr  string   `yaml:"metrics_addr"`

	APIKey         string `yaml:"-"`
	APISecret      string `yaml:"-"`
	APIPassphrase  string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
	TelegramChatID string `yaml:"-"`
}

// Load parses flags, an optional YAML file, and the environment.
// Precedence: YAML file overrides flag defaults; env vars supply secrets.
func Load() (Config, error) {
	symbol := flag.String("symbol", "XAU-USDT", "Trading instrument")
	timeframe := flag.String("timeframe", "1h", "Bar timeframe")
	emaShort := flag.Int("ema-short", 9, "Short EMA window")
	emaLong := flag.Int("ema-long", 21, "Long EMA window")
	riskFraction := flag.Float64("risk-fraction", 0.01, "Share of balance risked per trade")
	simBalance := flag.Float64("sim-balance", 10000, "Simulated balance for paper mode")
	openHour := flag.Int("open-hour", 8, "Trading window open hour (inclusive)")
	closeHour := flag.Int("close-hour", 17, "Trading window close hour (inclusive)")
	mode := flag.String("mode", "paper", "Mode: paper or live")
	brokerURL := flag.String("broker-url", "", "Broker API base URL (market data in both modes, trading in live mode)")
	barLimit := flag.Int("bar-limit", 120, "Bars fetched per evaluation")
	cacheTTL := flag.Duration("cache-ttl", time.Minute, "Bar cache time-to-live")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address (empty disables)")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg := Config{
		Symbol:       *symbol,
		Timeframe:    *timeframe,
		EMAShort:     *emaShort,
		EMALong:      *emaLong,
		RiskFraction: *riskFraction,
		SimBalance:   *simBalance,
		OpenHour:     *openHour,
		CloseHour:    *closeHour,
		Mode:         *mode,
		BrokerURL:    *brokerURL,
		BarLimit:     *barLimit,
		CacheTTL:     Duration(*cacheTTL),
		MetricsAddr:  *metricsAddr,
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()
	cfg.APIKey = os.Getenv("BROKER_API_KEY")
	cfg.APISecret = os.Getenv("BROKER_API_SECRET")
	cfg.APIPassphrase = os.Getenv("BROKER_API_PASSPHRASE")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must be set")
	}
	if !tfutils.IsValidTimeframe(c.Timeframe) {
		return fmt.Errorf("unsupported timeframe: %s", c.Timeframe)
	}
	if c.EMAShort <= 0 || c.EMALong <= 0 || c.EMAShort >= c.EMALong {
		return fmt.Errorf("EMA windows must be positive with short < long, got %d/%d", c.EMAShort, c.EMALong)
	}
	if c.RiskFraction <= 0 || c.RiskFraction > 1 {
		return fmt.Errorf("risk fraction must be in (0,1], got %v", c.RiskFraction)
	}
	if c.OpenHour < 0 || c.OpenHour > 23 || c.CloseHour < 0 || c.CloseHour > 23 || c.OpenHour > c.CloseHour {
		return fmt.Errorf("invalid trading window %d-%d", c.OpenHour, c.CloseHour)
	}
	if c.Mode != "paper" && c.Mode != "live" {
		return fmt.Errorf("mode must be paper or live, got %q", c.Mode)
	}
	// Bars are fetched from the broker API in paper mode too.
	if c.BrokerURL == "" {
		return fmt.Errorf("broker URL must be set")
	}
	if c.BarLimit < 2 {
		return fmt.Errorf("bar limit must be at least 2, got %d", c.BarLimit)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}
