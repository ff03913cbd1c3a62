package detector

import "time"

// Defaults mirror a 1 Hz telemetry feed on a typical road course.
const (
	defaultPositionMinLap     = 2
	defaultPositionSettle     = 5 * time.Second
	defaultGapBattleSec       = 0.8
	defaultGapCloseSec        = 1.5
	defaultGapClearSec        = 3.0
	defaultDirtyAirSec        = 1.5
	defaultCleanAirSec        = 2.5
	defaultSpikeDeltaC        = 15.0
	defaultPeriodicUpdateLaps = 5

	defaultCooldownPosition = 10 * time.Second
	defaultCooldownGap      = 15 * time.Second
	defaultCooldownTireTemp = 30 * time.Second
	defaultCooldownLockup   = 5 * time.Second
	defaultCooldownPace     = 60 * time.Second
	defaultCooldownStrategy = 60 * time.Second
)

// Option applies a configuration option to the Detector.
type Option func(*Detector, *cooldowns)

// WithPositionBatching configures position-change batching: the first lap on
// which callouts are allowed and the settle window that absorbs rapid rank
// swings into a single report. enabled=false disables the category.
func WithPositionBatching(enabled bool, minLap int, settle time.Duration) Option {
	return func(d *Detector, _ *cooldowns) {
		d.positionEnabled = enabled
		if minLap > 0 {
			d.positionMinLap = minLap
		}
		if settle > 0 {
			d.positionSettle = settle
		}
	}
}

// WithGapThresholds sets the battle/close/clear hysteresis band for the gap
// behind, in seconds. Requires battle < close < clear.
func WithGapThresholds(battle, closeIn, clear float64) Option {
	return func(d *Detector, _ *cooldowns) {
		if battle > 0 && closeIn > battle && clear > closeIn {
			d.gapBattleSec = battle
			d.gapCloseSec = closeIn
			d.gapClearSec = clear
		}
	}
}

// WithAirThresholds sets the dirty-air entry and clean-air exit thresholds
// for the gap ahead, in seconds. Requires dirty < clean.
func WithAirThresholds(dirty, clean float64) Option {
	return func(d *Detector, _ *cooldowns) {
		if dirty > 0 && clean > dirty {
			d.dirtyAirSec = dirty
			d.cleanAirSec = clean
		}
	}
}

// WithSpikeDelta sets the single-tick corner temperature jump, in Celsius,
// treated as a lockup (fronts) or wheelspin (rears).
func WithSpikeDelta(deltaC float64) Option {
	return func(d *Detector, _ *cooldowns) {
		if deltaC > 0 {
			d.spikeDeltaC = deltaC
		}
	}
}

// WithProgressCallouts configures race progress milestones: the halfway
// callout and the set of laps-remaining marks that each fire once.
func WithProgressCallouts(enabled, halfway bool, lapsRemaining []int) Option {
	return func(d *Detector, _ *cooldowns) {
		d.progressEnabled = enabled
		d.halfwayCallout = halfway
		if lapsRemaining != nil {
			d.lapsRemainingCallouts = make(map[int]bool, len(lapsRemaining))
			for _, n := range lapsRemaining {
				if n > 0 {
					d.lapsRemainingCallouts[n] = true
				}
			}
		}
	}
}

// WithStatusCallouts toggles the flag, incident, pit entry/exit and personal
// best categories.
func WithStatusCallouts(flags, incidents, pitEntry, pitExit, personalBest bool) Option {
	return func(d *Detector, _ *cooldowns) {
		d.flagsEnabled = flags
		d.incidentsEnabled = incidents
		d.pitEntryCallout = pitEntry
		d.pitExitCallout = pitExit
		d.personalBest = personalBest
	}
}

// WithPeriodicUpdate sets how many laps pass between routine lap updates.
func WithPeriodicUpdate(laps int) Option {
	return func(d *Detector, _ *cooldowns) {
		if laps > 0 {
			d.periodicUpdateLaps = laps
		}
	}
}

// WithCooldowns overrides the per-category cooldown durations. Zero values
// keep the defaults.
func WithCooldowns(position, gap, tireTemp, lockup, pace, strat time.Duration) Option {
	return func(_ *Detector, c *cooldowns) {
		if position > 0 {
			c.position = position
		}
		if gap > 0 {
			c.gap = gap
		}
		if tireTemp > 0 {
			c.tireTemp = tireTemp
		}
		if lockup > 0 {
			c.lockup = lockup
		}
		if pace > 0 {
			c.pace = pace
		}
		if strat > 0 {
			c.strategy = strat
		}
	}
}
