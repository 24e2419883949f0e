package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required"`
		ChatID   string `yaml:"chat_id" validate:"required"`
	} `yaml:"telegram"`
	Schedule struct {
		LeaderboardCron string `yaml:"leaderboard_cron" validate:"required"`
		ProgressCron    string `yaml:"progress_cron" validate:"required"`
		StockCheckCron  string `yaml:"stock_check_cron" validate:"required"`
	} `yaml:"schedule"`
	Fund struct {
		FundsNeeded   float64 `yaml:"funds_needed" validate:"gt=0"`
		FundsRaised   float64 `yaml:"funds_raised" validate:"gte=0"`
		DefaultTarget float64 `yaml:"default_target" validate:"gte=0"`
		PlannerFile   string  `yaml:"planner_file"`
	} `yaml:"fund"`
	Ledger struct {
		StateFile     string   `yaml:"state_file"`
		SeedDefaults  bool     `yaml:"seed_defaults"`
		Prizes        []string `yaml:"prizes" validate:"omitempty,dive,required"`
		LowStockLimit int      `yaml:"low_stock_limit" validate:"gte=0"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
		MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FUNDS_NEEDED"); v != "" {
		var needed float64
		if _, err := fmt.Sscanf(v, "%f", &needed); err == nil {
			cfg.Fund.FundsNeeded = needed
		}
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.LeaderboardCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LEDGER_STATE_FILE"); v != "" {
		cfg.Ledger.StateFile = v
	}
	if v := os.Getenv("PLANNER_STATE_FILE"); v != "" {
		cfg.Fund.PlannerFile = v
	}
	if v := os.Getenv("METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}

	// Defaults
	if cfg.Schedule.LeaderboardCron == "" {
		cfg.Schedule.LeaderboardCron = "0 0 8 * * 1"
	}
	if cfg.Schedule.ProgressCron == "" {
		cfg.Schedule.ProgressCron = "0 0 9 1 * *"
	}
	if cfg.Schedule.StockCheckCron == "" {
		cfg.Schedule.StockCheckCron = "0 0 18 * * 1-5"
	}
	if cfg.Fund.FundsNeeded == 0 {
		cfg.Fund.FundsNeeded = 10000
	}
	if cfg.Fund.DefaultTarget == 0 {
		cfg.Fund.DefaultTarget = 5000
	}
	if cfg.Fund.PlannerFile == "" {
		cfg.Fund.PlannerFile = "data/planner_state.json"
	}
	if cfg.Ledger.StateFile == "" {
		cfg.Ledger.StateFile = "data/ledger_state.json"
	}
	if cfg.Ledger.LowStockLimit == 0 {
		cfg.Ledger.LowStockLimit = 3
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/council_fund.db"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
