package evaluator

import (
	"time"

	"github.com/agencyhq/opscore/internal/config"
)

// Config controls evaluator cadence and the alert dedup window.
type Config struct {
	RunInterval  time.Duration
	RunTimeout   time.Duration
	DedupWindow  time.Duration
	LeaseTTL     time.Duration
	LeaseEnabled bool
}

func DefaultConfig() Config {
	return Config{
		RunInterval:  time.Hour,
		RunTimeout:   2 * time.Minute,
		DedupWindow:  24 * time.Hour,
		LeaseTTL:     5 * time.Minute,
		LeaseEnabled: true,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:  cfg.Evaluator.RunInterval,
		RunTimeout:   cfg.Evaluator.RunTimeout,
		DedupWindow:  cfg.Evaluator.DedupWindow,
		LeaseTTL:     cfg.Evaluator.LeaseTTL,
		LeaseEnabled: cfg.Evaluator.LeaseEnabled,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = defaults.DedupWindow
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaults.LeaseTTL
	}
	return c
}
