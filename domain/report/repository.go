package report

import "context"

// Repository persists Report aggregates.
type Repository interface {
	Save(ctx context.Context, r *Report) error
	FindByID(ctx context.Context, id string) (*Report, error)
	FindByAppointmentID(ctx context.Context, appointmentID string, kind Kind) (*Report, error)
	FindByRequestID(ctx context.Context, requestID string) ([]*Report, error)
}
