package monitor

import "time"

// Config controls the billing cycle sweep loop.
type Config struct {
	PollInterval    time.Duration
	GracePeriodDays int
	BatchSize       int
}

func DefaultConfig() Config {
	return Config{
		PollInterval:    1 * time.Minute,
		GracePeriodDays: 15,
		BatchSize:       200,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}

	if c.GracePeriodDays <= 0 {
		c.GracePeriodDays = defaults.GracePeriodDays
	}

	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}
