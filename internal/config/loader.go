package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PITWALL_CONFIG is set
//  3. env (prefix PITWALL_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PITWALL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PITWALL_ADDR, PITWALL_QUEUE_SIZE, ...
	// Map env keys like PITWALL_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PITWALL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pitwall_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if !(c.GapBattleSec < c.GapCloseSec && c.GapCloseSec < c.GapClearSec) {
		return fmt.Errorf("%w: gap thresholds must satisfy battle < close < clear", ErrInvalidConfig)
	}
	if c.GapDirtyAirSec >= c.GapCleanAirSec {
		return fmt.Errorf("%w: gap_dirty_air_sec must be below gap_clean_air_sec", ErrInvalidConfig)
	}
	if c.TireTempColdC >= c.TireTempHotC {
		return fmt.Errorf("%w: tire_temp_cold_c must be below tire_temp_hot_c", ErrInvalidConfig)
	}
	if c.FuelCriticalLaps > c.FuelWarningLaps {
		return fmt.Errorf("%w: fuel_critical_laps must not exceed fuel_warning_laps", ErrInvalidConfig)
	}
	if c.TireWarningPct > c.TireCriticalPct {
		return fmt.Errorf("%w: tire_warning_pct must not exceed tire_critical_pct", ErrInvalidConfig)
	}
	return nil
}
