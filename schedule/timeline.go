package schedule

import "fmt"

// =============================================================================
// TIMELINE - The three phases of a development
// =============================================================================

// Timeline holds the phase durations in months. It is computed once per
// project and every schedule is indexed on 0..Total()-1.
type Timeline struct {
	PreConstruction  int
	Construction     int
	PostConstruction int
}

// NewTimeline validates phase lengths and returns the timeline.
func NewTimeline(pre, construction, post int) (Timeline, error) {
	for _, p := range []struct {
		name   string
		months int
	}{
		{"pre_construction_months", pre},
		{"construction_months", construction},
		{"post_construction_months", post},
	} {
		if p.months < 0 {
			return Timeline{}, configErr(p.name, NoMonth, "must be >= 0, got %d", p.months)
		}
	}
	return Timeline{PreConstruction: pre, Construction: construction, PostConstruction: post}, nil
}

// Total returns the horizon length in months.
func (t Timeline) Total() int {
	return t.PreConstruction + t.Construction + t.PostConstruction
}

// Phase identifies one of the timeline's phase windows.
type Phase string

const (
	PhasePreConstruction  Phase = "pre_construction"
	PhaseConstruction     Phase = "construction"
	PhasePostConstruction Phase = "post_construction"
	PhaseHorizon          Phase = "horizon" // the whole timeline
)

// Window returns the contiguous range of months covered by a phase.
func (t Timeline) Window(p Phase) Window {
	switch p {
	case PhasePreConstruction:
		return Window{Phase: p, Start: 0, Length: t.PreConstruction}
	case PhaseConstruction:
		return Window{Phase: p, Start: t.PreConstruction, Length: t.Construction}
	case PhasePostConstruction:
		return Window{Phase: p, Start: t.PreConstruction + t.Construction, Length: t.PostConstruction}
	default:
		return Window{Phase: PhaseHorizon, Start: 0, Length: t.Total()}
	}
}

// =============================================================================
// WINDOW - A phase-scoped range of months
// =============================================================================

// Window is the half-open month range [Start, Start+Length).
type Window struct {
	Phase  Phase
	Start  int
	Length int
}

// First returns the first month of the window.
func (w Window) First() int { return w.Start }

// Last returns the last month of the window.
func (w Window) Last() int { return w.Start + w.Length - 1 }

// End returns the month right after the window.
func (w Window) End() int { return w.Start + w.Length }

// Empty reports whether the window covers no month.
func (w Window) Empty() bool { return w.Length <= 0 }

// Contains reports whether month falls inside the window.
func (w Window) Contains(month int) bool {
	return month >= w.Start && month < w.End()
}

func (w Window) String() string {
	return fmt.Sprintf("%s[%d, %d)", w.Phase, w.Start, w.End())
}
