package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// detectGaps handles both gap directions: the three-zone battle hysteresis
// on the gap behind and the dirty/clean air pair on the gap ahead. A missing
// gap (no car holding the neighboring position) suppresses that direction
// for the tick without touching its stored zone.
func (d *Detector) detectGaps(now time.Time, snap model.Snapshot, st *State) []model.Event {
	var events []model.Event

	if snap.GapBehind != nil {
		events = append(events, d.detectBattle(now, snap, *snap.GapBehind, st)...)
	}
	if snap.GapAhead != nil {
		events = append(events, d.detectAir(now, snap, *snap.GapAhead, st)...)
	}
	return events
}

// detectBattle applies battle < close < clear hysteresis. In the deadband
// between close and clear the previous zone is retained, so a gap dithering
// around one boundary cannot re-fire the same report.
func (d *Detector) detectBattle(now time.Time, snap model.Snapshot, gap float64, st *State) []model.Event {
	zone := st.behindZone
	switch {
	case gap < d.gapBattleSec:
		zone = zoneBattle
	case gap < d.gapCloseSec:
		zone = zoneClose
	case gap > d.gapClearSec:
		zone = zoneClear
	}

	var events []model.Event
	if zone != st.behindZone {
		switch zone {
		case zoneBattle:
			if !d.onCooldown(st, now, model.KindGapDefend) {
				events = append(events, d.event(now, snap, model.KindGapDefend, model.PriorityCritical,
					fmt.Sprintf("Defend! %.1f behind", gap),
					model.Payload{GapBehind: gap}))
				st.markFired(now, model.KindGapDefend)
			}
		case zoneClose:
			// Announce only when the car is arriving, not when the gap is
			// recovering out of a battle.
			if st.behindZone != zoneBattle && !d.onCooldown(st, now, model.KindGapClosing) {
				events = append(events, d.event(now, snap, model.KindGapClosing, model.PriorityHigh,
					fmt.Sprintf("Car behind closing, %.1f seconds", gap),
					model.Payload{GapBehind: gap}))
				st.markFired(now, model.KindGapClosing)
			}
		case zoneClear:
			if st.behindZone != zoneUnknown && !d.onCooldown(st, now, model.KindGapClear) {
				events = append(events, d.event(now, snap, model.KindGapClear, model.PriorityMedium,
					fmt.Sprintf("Gap stable, %.1f seconds clear", gap),
					model.Payload{GapBehind: gap}))
				st.markFired(now, model.KindGapClear)
			}
		}
		// Zone is stored even when the cooldown swallowed the report.
		st.behindZone = zone
	}
	return events
}

// detectAir reports entering dirty air and breaking back into clean air,
// with a deadband between the two thresholds.
func (d *Detector) detectAir(now time.Time, snap model.Snapshot, gap float64, st *State) []model.Event {
	var events []model.Event

	switch {
	case gap < d.dirtyAirSec:
		if !st.inDirtyAir && !d.onCooldown(st, now, model.KindDirtyAir) {
			events = append(events, d.event(now, snap, model.KindDirtyAir, model.PriorityMedium,
				"In dirty air, manage the temps",
				model.Payload{GapAhead: gap}))
			st.markFired(now, model.KindDirtyAir)
		}
		st.inDirtyAir = true
	case gap > d.cleanAirSec:
		if st.inDirtyAir {
			if !d.onCooldown(st, now, model.KindCleanAir) {
				events = append(events, d.event(now, snap, model.KindCleanAir, model.PriorityMedium,
					"Clean air, push now",
					model.Payload{GapAhead: gap}))
				st.markFired(now, model.KindCleanAir)
			}
			st.inDirtyAir = false
		}
	}
	return events
}
