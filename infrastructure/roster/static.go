// Package roster provides the roster adapter consumed by the
// appointment service. Shift planning itself lives outside this
// system; the static adapter treats every configured technician as on
// shift for any window.
package roster

import (
	"context"

	appointmentapp "maintdesk/application/appointment"
	"maintdesk/config"
	"maintdesk/domain/appointment"
)

// Static serves roster entries from configuration.
type Static struct {
	entries []appointmentapp.RosterEntry
}

// NewStatic builds a static roster from config.
func NewStatic(cfg config.RosterConfig) *Static {
	entries := make([]appointmentapp.RosterEntry, 0, len(cfg.Technicians))
	for _, t := range cfg.Technicians {
		entries = append(entries, appointmentapp.RosterEntry{
			TechnicianID:      t.ID,
			Techniques:        t.Techniques,
			ScheduledInWindow: true,
		})
	}
	return &Static{entries: entries}
}

func (s *Static) TechniciansFor(ctx context.Context, window appointment.Window) ([]appointmentapp.RosterEntry, error) {
	out := make([]appointmentapp.RosterEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

var _ appointmentapp.Roster = (*Static)(nil)
