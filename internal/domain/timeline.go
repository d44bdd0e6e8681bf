package domain

import "time"

// TimelineStep is one rendered entry of an order line's progress view.
type TimelineStep struct {
	Name       string     `json:"name"`
	Date       *time.Time `json:"date"`
	Completed  bool       `json:"completed"`
	Current    bool       `json:"current"`
	IsDelay    bool       `json:"isDelay"`
	IsTerminal bool       `json:"isTerminal"`
}

// BuildTimeline replays a status history (ascending creation order) into a
// display-ready progression: one step per main-chain stage, plus a synthetic
// trailing step when the line ended in a terminal status. It is a pure
// function of the event history; callers are responsible for rejecting empty
// histories.
func BuildTimeline(catalog *StatusCatalog, history []StatusEvent) []TimelineStep {
	chain := catalog.Chain()
	steps := make([]TimelineStep, len(chain))
	for i, name := range chain {
		steps[i] = TimelineStep{Name: name}
	}

	currentIdx := -1
	var terminal *TimelineStep

	for _, ev := range history {
		if idx, ok := catalog.ChainIndex(ev.StatusName); ok {
			date := ev.CreatedAt
			steps[idx].Date = &date
			currentIdx = idx
		}

		if catalog.IsDelay(ev.StatusName) && currentIdx != -1 {
			steps[currentIdx].IsDelay = true
		}

		if catalog.IsTerminal(ev.StatusName) {
			date := ev.CreatedAt
			terminal = &TimelineStep{
				Name:       ev.StatusName,
				Date:       &date,
				Completed:  true,
				Current:    true,
				IsTerminal: true,
			}
			// The chain cannot continue past a terminal event.
			break
		}
	}

	for i := range steps {
		if i < currentIdx {
			steps[i].Completed = true
		}
		if i == currentIdx {
			steps[i].Current = true
		}
	}

	if terminal != nil {
		// The state machine forbids chain events after a terminal one, so
		// steps past currentIdx should already be unset. Clear them anyway.
		for i := range steps {
			if i > currentIdx {
				steps[i].Completed = false
				steps[i].Current = false
			}
		}
		steps = append(steps, *terminal)
	}

	return steps
}
