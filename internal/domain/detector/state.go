package detector

import (
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// gapZone is the hysteresis zone of the gap to the car behind.
type gapZone int

const (
	zoneUnknown gapZone = iota
	zoneClear
	zoneClose
	zoneBattle
)

// State is the only carrier of cross-tick memory for a session. It is
// created at session start, mutated exclusively by Detect on the tick that
// owns it, and discarded at session end.
type State struct {
	// Per-kind cooldown bookkeeping.
	lastFire [model.KindCount]time.Time

	// Position batching.
	hasPosition        bool
	lastPosition       int
	batchActive        bool
	batchStartPosition int
	batchLastChange    time.Time

	// Gap hysteresis.
	behindZone gapZone
	inDirtyAir bool

	// Tire temperature.
	tempState        strategy.TempBand
	announcedOptimal bool
	hasTemps         bool
	lastTemps        [4]float64

	// Pace.
	lastPace    strategy.Pace
	hasBestLap  bool
	lastBestLap float64

	// Race progress one-shots.
	totalLaps          int
	announcedHalfway   bool
	announcedRemaining map[int]bool

	// Strategy urgency edges.
	lastFuelUrgency strategy.Urgency
	lastTireUrgency strategy.Urgency

	// Carried raw values.
	lastLap       int
	lastIncidents int
	lastFlag      model.FlagState
	lastOnPitRoad bool
}

// NewState creates the per-session detector state.
func NewState() *State {
	return &State{
		tempState:          strategy.BandUnknown,
		announcedRemaining: make(map[int]bool),
	}
}

// Reset clears all memory, e.g. when a new session begins.
func (st *State) Reset() {
	*st = *NewState()
}

func (st *State) markFired(now time.Time, kind model.Kind) {
	st.lastFire[kind] = now
}
