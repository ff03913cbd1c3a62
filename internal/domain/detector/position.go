package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// detectPosition batches rank changes behind a settle window so the chaotic
// multi-position swings of a race start collapse into one net report.
func (d *Detector) detectPosition(now time.Time, snap model.Snapshot, st *State) []model.Event {
	if !d.positionEnabled || snap.Position <= 0 {
		return nil
	}

	if snap.Lap < d.positionMinLap {
		// Too early; track the rank but never report it.
		st.hasPosition = true
		st.lastPosition = snap.Position
		st.batchActive = false
		return nil
	}

	if !st.hasPosition {
		st.hasPosition = true
		st.lastPosition = snap.Position
		return nil
	}

	changed := snap.Position != st.lastPosition
	if changed {
		if !st.batchActive {
			st.batchActive = true
			st.batchStartPosition = st.lastPosition
		}
		st.batchLastChange = now
	}

	var events []model.Event
	if st.batchActive && !changed && now.Sub(st.batchLastChange) >= d.positionSettle {
		// The rank held still for the whole settle window: flush the net
		// change. Swings that net to zero are dropped entirely.
		delta := st.batchStartPosition - snap.Position
		switch {
		case delta > 0:
			if !d.onCooldown(st, now, model.KindPositionGained) {
				events = append(events, d.event(now, snap, model.KindPositionGained, model.PriorityHigh,
					fmt.Sprintf("Gained %d %s, now P%d", delta, plural("position", delta), snap.Position),
					model.Payload{PositionsGained: delta, NewPosition: snap.Position}))
				st.markFired(now, model.KindPositionGained)
			}
		case delta < 0:
			if !d.onCooldown(st, now, model.KindPositionLost) {
				events = append(events, d.event(now, snap, model.KindPositionLost, model.PriorityHigh,
					fmt.Sprintf("Lost %d %s, now P%d", -delta, plural("position", -delta), snap.Position),
					model.Payload{PositionsLost: -delta, NewPosition: snap.Position}))
				st.markFired(now, model.KindPositionLost)
			}
		}
		st.batchActive = false
	}

	st.lastPosition = snap.Position
	return events
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
