// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - All thresholds consumed by the strategy calculator and the event
//   detector live here; nothing in the core hard-codes them.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for the overlay and metrics
	// endpoints, e.g. ":8080".
	Addr string `koanf:"addr"`

	// OverlayEnabled toggles the WebSocket overlay hub.
	OverlayEnabled bool `koanf:"overlay_enabled"`

	// TickIntervalMS is the telemetry polling period in milliseconds.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// QueueSize bounds the in-memory notification queue.
	QueueSize int `koanf:"queue_size"`

	// SessionDBPath is the SQLite file for session logs; empty disables
	// session logging.
	SessionDBPath string `koanf:"session_db_path"`

	// ReplayPath points at a JSONL snapshot capture to replay instead of a
	// live feed; empty runs the built-in synthetic session.
	ReplayPath string `koanf:"replay_path"`

	// Fuel strategy thresholds, laps of fuel remaining.
	FuelWarningLaps  float64 `koanf:"fuel_warning_laps"`
	FuelCriticalLaps float64 `koanf:"fuel_critical_laps"`

	// FuelWindowLaps is the smoothing window for per-lap consumption;
	// MinFuelPerLap discards out-laps/caution laps from it.
	FuelWindowLaps int     `koanf:"fuel_window_laps"`
	MinFuelPerLap  float64 `koanf:"min_fuel_per_lap"`

	// Tire wear thresholds, percent worn.
	TireWarningPct  float64 `koanf:"tire_warning_pct"`
	TireCriticalPct float64 `koanf:"tire_critical_pct"`

	// Tire temperature thresholds, Celsius.
	TireTempColdC  float64 `koanf:"tire_temp_cold_c"`
	TireTempHotC   float64 `koanf:"tire_temp_hot_c"`
	TireSpikeDelta float64 `koanf:"tire_spike_delta_c"`

	// Gap thresholds, seconds.
	GapBattleSec   float64 `koanf:"gap_battle_sec"`
	GapCloseSec    float64 `koanf:"gap_close_sec"`
	GapClearSec    float64 `koanf:"gap_clear_sec"`
	GapDirtyAirSec float64 `koanf:"gap_dirty_air_sec"`
	GapCleanAirSec float64 `koanf:"gap_clean_air_sec"`

	// Pace trend tuning.
	PaceTrendLaps int     `koanf:"pace_trend_laps"`
	PaceDropSec   float64 `koanf:"pace_drop_sec"`
	PaceGainSec   float64 `koanf:"pace_gain_sec"`

	// Position batching.
	PositionMinLap        int `koanf:"position_min_lap"`
	PositionSettleTimeSec int `koanf:"position_settle_time_sec"`

	// Race progress callouts.
	RaceHalfwayCallout    bool  `koanf:"race_halfway_callout"`
	LapsRemainingCallouts []int `koanf:"laps_remaining_callouts"`

	// PeriodicUpdateLaps is the routine update cadence, in laps.
	PeriodicUpdateLaps int `koanf:"periodic_update_laps"`

	// Per-category event cooldowns, seconds.
	CooldownPositionSec int `koanf:"cooldown_position_sec"`
	CooldownGapSec      int `koanf:"cooldown_gap_sec"`
	CooldownTireTempSec int `koanf:"cooldown_tire_temp_sec"`
	CooldownLockupSec   int `koanf:"cooldown_lockup_sec"`
	CooldownPaceSec     int `koanf:"cooldown_pace_sec"`
	CooldownStrategySec int `koanf:"cooldown_strategy_sec"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":8080",
		OverlayEnabled:          true,
		TickIntervalMS:          1000,
		QueueSize:               256,
		SessionDBPath:           "./data/sessions.db",
		FuelWarningLaps:         5.0,
		FuelCriticalLaps:        2.0,
		FuelWindowLaps:          5,
		MinFuelPerLap:           0.5,
		TireWarningPct:          70.0,
		TireCriticalPct:         85.0,
		TireTempColdC:           60.0,
		TireTempHotC:            110.0,
		TireSpikeDelta:          15.0,
		GapBattleSec:            0.8,
		GapCloseSec:             1.5,
		GapClearSec:             3.0,
		GapDirtyAirSec:          1.5,
		GapCleanAirSec:          2.5,
		PaceTrendLaps:           3,
		PaceDropSec:             0.5,
		PaceGainSec:             0.3,
		PositionMinLap:          2,
		PositionSettleTimeSec:   5,
		RaceHalfwayCallout:    true,
		LapsRemainingCallouts: []int{5, 3, 1},
		PeriodicUpdateLaps:    5,
		CooldownPositionSec:   10,
		CooldownGapSec:        15,
		CooldownTireTempSec:   30,
		CooldownLockupSec:     5,
		CooldownPaceSec:       60,
		CooldownStrategySec:   60,
	}
}

// TickInterval returns the polling period as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
