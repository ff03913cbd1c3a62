package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// detectProgress fires the race-distance milestones. Every milestone is a
// one-shot tracked in State, not a cooldown: halfway stays announced even if
// the laps-remaining signal is re-evaluated every tick after the crossing.
func (d *Detector) detectProgress(now time.Time, snap model.Snapshot, st *State) []model.Event {
	if !d.progressEnabled {
		return nil
	}

	remaining := snap.SessionLapsRemain

	// Latch total race length from the first valid reading.
	if st.totalLaps == 0 && remaining > 0 && snap.Lap > 0 {
		st.totalLaps = remaining + snap.Lap
	}

	var events []model.Event

	if d.halfwayCallout && st.totalLaps > 0 && !st.announcedHalfway && snap.Lap >= st.totalLaps/2 {
		events = append(events, d.event(now, snap, model.KindRaceHalfway, model.PriorityLow,
			fmt.Sprintf("Halfway, %d laps to go", remaining),
			model.Payload{LapsRemaining: remaining}))
		st.announcedHalfway = true
	}

	if remaining > 0 && d.lapsRemainingCallouts[remaining] && !st.announcedRemaining[remaining] {
		if remaining == 1 {
			events = append(events, d.event(now, snap, model.KindFinalLap, model.PriorityHigh,
				"Final lap! Bring it home",
				model.Payload{LapsRemaining: 1}))
		} else {
			events = append(events, d.event(now, snap, model.KindLapsRemaining, model.PriorityMedium,
				fmt.Sprintf("%d laps remaining", remaining),
				model.Payload{LapsRemaining: remaining}))
		}
		st.announcedRemaining[remaining] = true
	}

	return events
}
