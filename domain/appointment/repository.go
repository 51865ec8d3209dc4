package appointment

import (
	"context"
	"time"
)

// Repository persists Appointment aggregates with optimistic locking.
type Repository interface {
	Save(ctx context.Context, a *Appointment) error

	FindByID(ctx context.Context, id string) (*Appointment, error)

	// FindOpenByRequestID returns the request's single open appointment,
	// or nil when none exists. Read inside the scheduling transaction to
	// keep the one-open-appointment invariant race free.
	FindOpenByRequestID(ctx context.Context, requestID string) (*Appointment, error)

	// CountAssignmentsInRange counts a technician's active work orders
	// whose appointment window intersects [from, to). The advisor's
	// day/month load facts are built from it.
	CountAssignmentsInRange(ctx context.Context, technicianID string, from, to time.Time) (int, error)

	// FindWindowsForTechnician lists a technician's active appointment
	// windows intersecting [from, to); the advisor derives adjacency gaps
	// from them.
	FindWindowsForTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]Window, error)
}

// Window is a scheduled time range, the unit the advisor reasons about.
type Window struct {
	Start time.Time
	End   time.Time
}
