package request

import "context"

// Repository persists RepairRequest aggregates. Implementations use
// optimistic locking on the version column; a stale save returns a
// concurrent modification error that the unit of work retries.
type Repository interface {
	// Save creates or updates the aggregate plus its newly appended
	// tracking rows in one transaction.
	Save(ctx context.Context, r *RepairRequest) error

	// FindByID loads the aggregate with its full tracking trail.
	FindByID(ctx context.Context, id string) (*RepairRequest, error)

	// FindByRequesterID lists a requester's requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID string) ([]*RepairRequest, error)

	// FindByStatus lists requests in the given status; the reconciliation
	// worker scans InProgress requests with it.
	FindByStatus(ctx context.Context, status Status, limit int) ([]*RepairRequest, error)
}

// FeedbackRepository persists post-completion feedback.
type FeedbackRepository interface {
	Save(ctx context.Context, f *Feedback) error
	FindByRequestID(ctx context.Context, requestID string) ([]*Feedback, error)
}
