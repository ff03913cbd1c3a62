package model

import "time"

// Kind enumerates every event the detector can emit. The set is closed:
// consumers switch over it exhaustively, and per-kind cooldown state is kept
// in fixed-size tables indexed by Kind.
type Kind int

const (
	KindUnknown Kind = iota

	// Position
	KindPositionGained
	KindPositionLost

	// Gap / battle
	KindGapClosing
	KindGapDefend
	KindGapClear
	KindDirtyAir
	KindCleanAir

	// Tire temperature
	KindTireCold
	KindTireOptimal
	KindTireHot
	KindLockup
	KindWheelspin

	// Pace
	KindPaceDropping
	KindPaceImproving
	KindPersonalBest

	// Race progress
	KindRaceHalfway
	KindLapsRemaining
	KindFinalLap

	// Flags
	KindYellowFlag
	KindGreenFlag

	// Incidents
	KindIncident

	// Pit lane
	KindPitEntry
	KindPitExit

	// Strategy
	KindFuelWarning
	KindFuelCritical
	KindTireWearWarning
	KindTireWearCritical
	KindPeriodicUpdate

	// KindCount is the number of kinds; keep it last.
	KindCount
)

var kindNames = [KindCount]string{
	KindUnknown:          "unknown",
	KindPositionGained:   "position_gained",
	KindPositionLost:     "position_lost",
	KindGapClosing:       "gap_closing",
	KindGapDefend:        "gap_defend",
	KindGapClear:         "gap_clear",
	KindDirtyAir:         "dirty_air",
	KindCleanAir:         "clean_air",
	KindTireCold:         "tire_cold",
	KindTireOptimal:      "tire_optimal",
	KindTireHot:          "tire_hot",
	KindLockup:           "lockup",
	KindWheelspin:        "wheelspin",
	KindPaceDropping:     "pace_dropping",
	KindPaceImproving:    "pace_improving",
	KindPersonalBest:     "personal_best",
	KindRaceHalfway:      "race_halfway",
	KindLapsRemaining:    "laps_remaining",
	KindFinalLap:         "final_lap",
	KindYellowFlag:       "yellow_flag",
	KindGreenFlag:        "green_flag",
	KindIncident:         "incident",
	KindPitEntry:         "pit_entry",
	KindPitExit:          "pit_exit",
	KindFuelWarning:      "fuel_warning",
	KindFuelCritical:     "fuel_critical",
	KindTireWearWarning:  "tire_wear_warning",
	KindTireWearCritical: "tire_wear_critical",
	KindPeriodicUpdate:   "periodic_update",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromString maps a stored kind name back to its Kind. Unrecognized
// names map to KindUnknown.
func KindFromString(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return Kind(k)
		}
	}
	return KindUnknown
}

// Priority orders simultaneous emissions; higher is more urgent.
type Priority int

const (
	PriorityLow      Priority = 1 // info, periodic
	PriorityMedium   Priority = 2 // tire temps, pace
	PriorityHigh     Priority = 3 // position change, battle
	PriorityCritical Priority = 4 // box now, defend
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

// Payload carries kind-specific structured context. Only the fields relevant
// to the emitting kind are set; the rest stay zero and are omitted on the
// wire.
type Payload struct {
	PositionsGained int     `json:"positions_gained,omitempty"`
	PositionsLost   int     `json:"positions_lost,omitempty"`
	NewPosition     int     `json:"new_position,omitempty"`
	GapAhead        float64 `json:"gap_ahead,omitempty"`
	GapBehind       float64 `json:"gap_behind,omitempty"`
	Corner          string  `json:"corner,omitempty"`
	TempC           float64 `json:"temp_c,omitempty"`
	TempDeltaC      float64 `json:"temp_delta_c,omitempty"`
	LapTime         float64 `json:"lap_time,omitempty"`
	PaceDelta       float64 `json:"pace_delta,omitempty"`
	LapsRemaining   int     `json:"laps_remaining,omitempty"`
	NewIncidents    int     `json:"new_incidents,omitempty"`
	TotalIncidents  int     `json:"total_incidents,omitempty"`
	LapsOfFuel      float64 `json:"laps_of_fuel,omitempty"`
	WearPct         float64 `json:"wear_pct,omitempty"`
}

// Event is one detected race situation, ready for the notification consumer.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Priority  Priority  `json:"priority"`
	Message   string    `json:"message"` // short deterministic fallback text
	Lap       int       `json:"lap"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}
