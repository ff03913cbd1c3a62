// Package detector turns (snapshot, metrics) pairs into prioritized race
// events.
//
// Detect is pure with respect to its State argument: every piece of
// cross-tick memory lives in the State value the caller threads through, so
// arbitrary situations can be reconstructed in tests from fixtures. The
// detector itself holds only configuration.
package detector

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// Detector evaluates one tick at a time and emits zero or more events.
// Safe for concurrent use only with disjoint State values; a single session
// must never run overlapping detection passes on the same State.
type Detector struct {
	positionEnabled bool
	positionMinLap  int
	positionSettle  time.Duration

	gapBattleSec float64
	gapCloseSec  float64
	gapClearSec  float64
	dirtyAirSec  float64
	cleanAirSec  float64

	spikeDeltaC float64

	lapsRemainingCallouts map[int]bool
	halfwayCallout        bool
	progressEnabled       bool

	flagsEnabled     bool
	incidentsEnabled bool
	pitEntryCallout  bool
	pitExitCallout   bool
	personalBest     bool

	periodicUpdateLaps int

	// Per-kind cooldown table, indexed by model.Kind. Zero means no
	// cooldown; one-shot kinds are handled by State bookkeeping instead.
	cooldown [model.KindCount]time.Duration
}

// New creates a Detector with defaults overridden by the given options.
func New(opts ...Option) *Detector {
	d := &Detector{
		positionEnabled:       true,
		positionMinLap:        defaultPositionMinLap,
		positionSettle:        defaultPositionSettle,
		gapBattleSec:          defaultGapBattleSec,
		gapCloseSec:           defaultGapCloseSec,
		gapClearSec:           defaultGapClearSec,
		dirtyAirSec:           defaultDirtyAirSec,
		cleanAirSec:           defaultCleanAirSec,
		spikeDeltaC:           defaultSpikeDeltaC,
		lapsRemainingCallouts: map[int]bool{5: true, 3: true, 1: true},
		halfwayCallout:        true,
		progressEnabled:       true,
		flagsEnabled:          true,
		incidentsEnabled:      true,
		pitEntryCallout:       true,
		pitExitCallout:        true,
		personalBest:          true,
		periodicUpdateLaps:    defaultPeriodicUpdateLaps,
	}
	cds := cooldownDefaults()
	for _, opt := range opts {
		opt(d, &cds)
	}
	d.buildCooldownTable(cds)
	return d
}

// cooldowns groups the per-category cooldown durations before they are
// spread into the per-kind table.
type cooldowns struct {
	position time.Duration
	gap      time.Duration
	tireTemp time.Duration
	lockup   time.Duration
	pace     time.Duration
	strategy time.Duration
}

func cooldownDefaults() cooldowns {
	return cooldowns{
		position: defaultCooldownPosition,
		gap:      defaultCooldownGap,
		tireTemp: defaultCooldownTireTemp,
		lockup:   defaultCooldownLockup,
		pace:     defaultCooldownPace,
		strategy: defaultCooldownStrategy,
	}
}

func (d *Detector) buildCooldownTable(c cooldowns) {
	d.cooldown[model.KindPositionGained] = c.position
	d.cooldown[model.KindPositionLost] = c.position
	d.cooldown[model.KindGapClosing] = c.gap
	d.cooldown[model.KindGapDefend] = c.gap
	d.cooldown[model.KindGapClear] = c.gap
	d.cooldown[model.KindDirtyAir] = c.gap
	d.cooldown[model.KindCleanAir] = c.gap
	d.cooldown[model.KindTireCold] = c.tireTemp
	d.cooldown[model.KindTireHot] = c.tireTemp
	d.cooldown[model.KindLockup] = c.lockup
	d.cooldown[model.KindWheelspin] = c.lockup
	d.cooldown[model.KindPaceDropping] = c.pace
	d.cooldown[model.KindPaceImproving] = c.pace
	d.cooldown[model.KindFuelWarning] = c.strategy
	d.cooldown[model.KindFuelCritical] = c.strategy
	d.cooldown[model.KindTireWearWarning] = c.strategy
	d.cooldown[model.KindTireWearCritical] = c.strategy
	// Flags, incidents, pit transitions, milestones, the periodic update and
	// personal bests are edge- or one-shot-gated; re-occurrence is a
	// distinct fact.
}

// Detect analyzes one tick and returns the detected events sorted by
// descending priority. All state mutation happens on st.
func (d *Detector) Detect(now time.Time, snap model.Snapshot, m strategy.Metrics, st *State) []model.Event {
	snap = snap.Normalize()

	var events []model.Event
	events = append(events, d.detectPosition(now, snap, st)...)
	events = append(events, d.detectGaps(now, snap, st)...)
	events = append(events, d.detectTireTemps(now, snap, m, st)...)
	events = append(events, d.detectPace(now, snap, m, st)...)
	events = append(events, d.detectProgress(now, snap, st)...)
	events = append(events, d.detectFlags(now, snap, st)...)
	events = append(events, d.detectIncidents(now, snap, st)...)
	events = append(events, d.detectPit(now, snap, st)...)
	events = append(events, d.detectStrategy(now, snap, m, st)...)

	d.updateCarry(snap, st)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Priority > events[j].Priority
	})
	return events
}

// updateCarry records the per-tick values the next tick compares against.
// It runs after every detector regardless of what fired, so transitions are
// never missed behind a cooldown.
func (d *Detector) updateCarry(snap model.Snapshot, st *State) {
	st.lastLap = snap.Lap
	st.lastIncidents = snap.IncidentCount
	st.lastFlag = snap.Flag
	st.lastOnPitRoad = snap.OnPitRoad
	if snap.BestLapTime > 0 {
		st.lastBestLap = snap.BestLapTime
		st.hasBestLap = true
	}
}

func (d *Detector) onCooldown(st *State, now time.Time, kind model.Kind) bool {
	cd := d.cooldown[kind]
	if cd <= 0 {
		return false
	}
	last := st.lastFire[kind]
	return !last.IsZero() && now.Sub(last) < cd
}

func (d *Detector) event(now time.Time, snap model.Snapshot, kind model.Kind, pri model.Priority, msg string, p model.Payload) model.Event {
	return model.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Priority:  pri,
		Message:   msg,
		Lap:       snap.Lap,
		Timestamp: now,
		Payload:   p,
	}
}
