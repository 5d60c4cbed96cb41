// initalt/config.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/climbout/climbout/util"
)

// ToggleSettingKey is the user setting that enables or disables automatic
// assignment. Missing or unparseable values mean enabled.
const ToggleSettingKey = "initialAltitudeToggle"

// Config holds the thresholds the gate applies. An aircraft is only
// considered while it is between the ground and MaxAltitude, within
// MaxDistanceNM of its origin, and no faster than MaxSpeedKts.
type Config struct {
	MaxAltitude   int     `yaml:"max_altitude" json:"max_altitude"`
	MaxDistanceNM float64 `yaml:"max_distance_nm" json:"max_distance_nm"`
	MaxSpeedKts   int     `yaml:"max_speed_kts" json:"max_speed_kts"`

	// The user must have been logged in this long before anything is
	// assigned; until then decisions are retried after a random delay in
	// (RetryMin, RetryMax].
	MinimumLogin time.Duration `yaml:"minimum_login" json:"minimum_login"`
	RetryMin     time.Duration `yaml:"retry_min" json:"retry_min"`
	RetryMax     time.Duration `yaml:"retry_max" json:"retry_max"`

	// MaxPendingRetries bounds the number of queued retries per callsign;
	// further deferrals are dropped while that many are pending. Zero
	// means no bound.
	MaxPendingRetries int `yaml:"max_pending_retries_per_callsign" json:"max_pending_retries_per_callsign"`
}

func DefaultConfig() Config {
	return Config{
		MaxAltitude:       1000,
		MaxDistanceNM:     3,
		MaxSpeedKts:       40,
		MinimumLogin:      5 * time.Second,
		RetryMin:          3 * time.Second,
		RetryMax:          5 * time.Second,
		MaxPendingRetries: 1,
	}
}

func (c Config) Validate(e *util.ErrorLogger) {
	e.Push("initial altitude config")
	defer e.Pop()

	if c.MaxAltitude <= 0 {
		e.ErrorString("max_altitude %d must be positive", c.MaxAltitude)
	}
	if c.MaxDistanceNM <= 0 {
		e.ErrorString("max_distance_nm %g must be positive", c.MaxDistanceNM)
	}
	if c.MaxSpeedKts < 0 {
		e.ErrorString("max_speed_kts %d must not be negative", c.MaxSpeedKts)
	}
	if c.MinimumLogin < 0 {
		e.ErrorString("minimum_login %s must not be negative", c.MinimumLogin)
	}
	if c.RetryMin < 0 {
		e.ErrorString("retry_min %s must not be negative", c.RetryMin)
	}
	if c.RetryMax <= c.RetryMin {
		e.ErrorString("retry_max %s must be greater than retry_min %s", c.RetryMax, c.RetryMin)
	}
	if c.MaxPendingRetries < 0 {
		e.ErrorString("max_pending_retries_per_callsign %d must not be negative", c.MaxPendingRetries)
	}
}

// LoadConfigFile reads a YAML config file; settings it doesn't mention
// keep their defaults. An empty path gives the default configuration.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := util.ReadResource(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	var e util.ErrorLogger
	e.Push(path)
	cfg.Validate(&e)
	if e.HaveErrors() {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, e.Err())
	}
	return cfg, nil
}
