package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// detectFlags fires only on flag-state transitions in and out of yellow.
// Steady-state green never reports.
func (d *Detector) detectFlags(now time.Time, snap model.Snapshot, st *State) []model.Event {
	if !d.flagsEnabled {
		return nil
	}

	isYellow := snap.Flag == model.FlagYellow
	wasYellow := st.lastFlag == model.FlagYellow

	var events []model.Event
	switch {
	case isYellow && !wasYellow:
		events = append(events, d.event(now, snap, model.KindYellowFlag, model.PriorityCritical,
			"Yellow flag, caution", model.Payload{}))
	case !isYellow && wasYellow:
		events = append(events, d.event(now, snap, model.KindGreenFlag, model.PriorityHigh,
			"Green flag, go!", model.Payload{}))
	}
	return events
}

// detectIncidents fires whenever the cumulative incident count increases.
// Every increase is a distinct fact, so there is no cooldown.
func (d *Detector) detectIncidents(now time.Time, snap model.Snapshot, st *State) []model.Event {
	if !d.incidentsEnabled || snap.IncidentCount <= st.lastIncidents {
		return nil
	}

	delta := snap.IncidentCount - st.lastIncidents
	return []model.Event{d.event(now, snap, model.KindIncident, model.PriorityMedium,
		fmt.Sprintf("Incident, that's %dx total", snap.IncidentCount),
		model.Payload{NewIncidents: delta, TotalIncidents: snap.IncidentCount})}
}

// detectPit fires on the pit-road boolean edges.
func (d *Detector) detectPit(now time.Time, snap model.Snapshot, st *State) []model.Event {
	var events []model.Event

	if d.pitEntryCallout && snap.OnPitRoad && !st.lastOnPitRoad {
		events = append(events, d.event(now, snap, model.KindPitEntry, model.PriorityMedium,
			"Pit entry, good stop", model.Payload{}))
	}
	if d.pitExitCallout && !snap.OnPitRoad && st.lastOnPitRoad {
		events = append(events, d.event(now, snap, model.KindPitExit, model.PriorityMedium,
			"Out of the pits, push now", model.Payload{}))
	}
	return events
}
