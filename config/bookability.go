package config

import "time"

// BookabilityConfig controls the periodic bookability sweep.
type BookabilityConfig struct {
	// SweepIntervalSeconds of zero selects the default; negative disables the sweep.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

func (c *BookabilityConfig) SetDefaults() {
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
}

// Interval returns the sweep period, or zero when the sweep is disabled.
func (c BookabilityConfig) Interval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
