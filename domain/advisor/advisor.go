/*
Package advisor ranks candidate technicians for an appointment window.
It is a pure scoring function over availability facts supplied by an
external shift roster; it never reads or mutates persistent state.
*/
package advisor

import (
	"sort"
	"time"

	"maintdesk/domain/appointment"
)

// Candidate carries the availability facts for one technician, as
// reported by the roster collaborator and the appointment store.
type Candidate struct {
	TechnicianID string

	// Techniques the technician is qualified for.
	Techniques []string

	// ScheduledInWindow is the roster's answer to "is this technician
	// on shift during the requested window".
	ScheduledInWindow bool

	// DayAssignments / MonthAssignments count work orders already
	// committed on the appointment's day and calendar month.
	DayAssignments   int
	MonthAssignments int

	// DayWindows are the technician's committed appointment windows on
	// the same day, used to measure how tight a new booking would sit.
	DayWindows []appointment.Window
}

// Ranked is one advisor result with the facts that produced its rank.
type Ranked struct {
	TechnicianID     string
	DayAssignments   int
	MonthAssignments int

	// MinGap is the smallest distance between the requested window and
	// the technician's adjacent bookings that day. A free day counts as
	// an unbounded gap.
	MinGap time.Duration
}

// unboundedGap orders technicians with no same-day bookings ahead of
// any technician with a measurable gap at equal day load.
const unboundedGap = time.Duration(1<<63 - 1)

// Rank filters candidates down to those qualified for the technique and
// on shift during the window, then orders them by day load ascending,
// minimum adjacent gap descending, month load ascending, and technician
// id as the deterministic tiebreak.
func Rank(window appointment.Window, technique string, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		if !c.ScheduledInWindow || !hasTechnique(c.Techniques, technique) {
			continue
		}
		ranked = append(ranked, Ranked{
			TechnicianID:     c.TechnicianID,
			DayAssignments:   c.DayAssignments,
			MonthAssignments: c.MonthAssignments,
			MinGap:           minAdjacentGap(window, c.DayWindows),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.DayAssignments != b.DayAssignments {
			return a.DayAssignments < b.DayAssignments
		}
		if a.MinGap != b.MinGap {
			return a.MinGap > b.MinGap
		}
		if a.MonthAssignments != b.MonthAssignments {
			return a.MonthAssignments < b.MonthAssignments
		}
		return a.TechnicianID < b.TechnicianID
	})
	return ranked
}

func hasTechnique(techniques []string, want string) bool {
	for _, t := range techniques {
		if t == want {
			return true
		}
	}
	return false
}

// minAdjacentGap measures the distance from the requested window to the
// nearest committed booking. Overlapping bookings yield a zero gap.
func minAdjacentGap(window appointment.Window, committed []appointment.Window) time.Duration {
	if len(committed) == 0 {
		return unboundedGap
	}
	min := unboundedGap
	for _, w := range committed {
		var gap time.Duration
		switch {
		case w.End.Before(window.Start) || w.End.Equal(window.Start):
			gap = window.Start.Sub(w.End)
		case window.End.Before(w.Start) || window.End.Equal(w.Start):
			gap = w.Start.Sub(window.End)
		default:
			gap = 0
		}
		if gap < min {
			min = gap
		}
	}
	return min
}
