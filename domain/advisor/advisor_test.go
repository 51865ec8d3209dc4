package advisor

import (
	"testing"
	"time"

	"maintdesk/domain/appointment"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func window(startHour, endHour int) appointment.Window {
	return appointment.Window{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func plumber(id string, dayCount, monthCount int, windows ...appointment.Window) Candidate {
	return Candidate{
		TechnicianID:      id,
		Techniques:        []string{"plumbing"},
		ScheduledInWindow: true,
		DayAssignments:    dayCount,
		MonthAssignments:  monthCount,
		DayWindows:        windows,
	}
}

func ids(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.TechnicianID
	}
	return out
}

func TestDayLoadDominatesRanking(t *testing.T) {
	// Day counts {0, 2, 1}: the idle technician wins regardless of gaps.
	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		plumber("tech-b", 2, 0, window(8, 9), window(14, 15)),
		plumber("tech-c", 1, 0, window(13, 14)),
		plumber("tech-a", 0, 0),
	})

	got := ids(ranked)
	want := []string{"tech-a", "tech-c", "tech-b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
}

func TestLargerGapBreaksDayTie(t *testing.T) {
	// Equal day load: the technician with the roomier schedule wins.
	tight := plumber("tech-tight", 1, 0, window(12, 13))
	roomy := plumber("tech-roomy", 1, 0, window(16, 17))

	ranked := Rank(window(10, 12), "plumbing", []Candidate{tight, roomy})
	if ranked[0].TechnicianID != "tech-roomy" {
		t.Errorf("first = %s, want tech-roomy", ranked[0].TechnicianID)
	}
	if ranked[0].MinGap != 4*time.Hour {
		t.Errorf("roomy MinGap = %v, want 4h", ranked[0].MinGap)
	}
	if ranked[1].MinGap != 0 {
		t.Errorf("tight MinGap = %v, want 0 (back-to-back)", ranked[1].MinGap)
	}
}

func TestMonthLoadBreaksRemainingTie(t *testing.T) {
	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		plumber("tech-busy-month", 0, 9),
		plumber("tech-fresh", 0, 2),
	})
	if ranked[0].TechnicianID != "tech-fresh" {
		t.Errorf("first = %s, want tech-fresh", ranked[0].TechnicianID)
	}
}

func TestIDBreaksFullTie(t *testing.T) {
	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		plumber("tech-2", 0, 0),
		plumber("tech-1", 0, 0),
	})
	got := ids(ranked)
	if got[0] != "tech-1" || got[1] != "tech-2" {
		t.Errorf("ranking = %v, want deterministic id order", got)
	}
}

func TestEligibilityFilter(t *testing.T) {
	offShift := plumber("tech-off", 0, 0)
	offShift.ScheduledInWindow = false

	electrician := Candidate{
		TechnicianID:      "tech-elec",
		Techniques:        []string{"electrical"},
		ScheduledInWindow: true,
	}

	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		offShift,
		electrician,
		plumber("tech-1", 0, 0),
	})
	if len(ranked) != 1 || ranked[0].TechnicianID != "tech-1" {
		t.Errorf("ranking = %v, want only tech-1", ids(ranked))
	}
}

func TestOverlappingBookingCountsAsZeroGap(t *testing.T) {
	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		plumber("tech-1", 1, 0, window(11, 13)),
	})
	if ranked[0].MinGap != 0 {
		t.Errorf("overlap MinGap = %v, want 0", ranked[0].MinGap)
	}
}

func TestFreeDayOutranksAnyGap(t *testing.T) {
	ranked := Rank(window(10, 12), "plumbing", []Candidate{
		plumber("tech-far", 1, 0, window(20, 21)),
		plumber("tech-free", 1, 0),
	})
	if ranked[0].TechnicianID != "tech-free" {
		t.Errorf("first = %s, want tech-free", ranked[0].TechnicianID)
	}
}
