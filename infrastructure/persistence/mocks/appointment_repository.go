package mocks

import (
	"context"
	"sync"
	"time"

	"maintdesk/domain/appointment"
)

// MockAppointmentRepository in-memory implementation of the appointment
// repository for testing
type MockAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[string]*appointment.Appointment
}

// NewMockAppointmentRepository Create mock appointment repository
func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{
		appointments: make(map[string]*appointment.Appointment),
	}
}

func (r *MockAppointmentRepository) Save(ctx context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !a.IsNew() {
		if _, ok := r.appointments[a.ID()]; !ok {
			return appointment.NewAppointmentNotFoundError(a.ID())
		}
		a.IncrementVersionForSave()
	}
	a.ClearDirtyTracking()
	r.appointments[a.ID()] = a
	return nil
}

func (r *MockAppointmentRepository) FindByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, appointment.NewAppointmentNotFoundError(id)
	}
	return a, nil
}

func (r *MockAppointmentRepository) FindOpenByRequestID(ctx context.Context, requestID string) (*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.appointments {
		if a.RequestID() == requestID && a.Status().IsOpen() {
			return a, nil
		}
	}
	return nil, nil
}

func (r *MockAppointmentRepository) CountAssignmentsInRange(ctx context.Context, technicianID string, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.appointments {
		if !r.overlaps(a, from, to) {
			continue
		}
		for _, wo := range a.WorkOrders() {
			if wo.TechnicianID() == technicianID && wo.Status() != appointment.WorkOrderCancelled {
				count++
			}
		}
	}
	return count, nil
}

func (r *MockAppointmentRepository) FindWindowsForTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]appointment.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var windows []appointment.Window
	for _, a := range r.appointments {
		if !r.overlaps(a, from, to) {
			continue
		}
		for _, wo := range a.WorkOrders() {
			if wo.TechnicianID() == technicianID && wo.Status() != appointment.WorkOrderCancelled {
				windows = append(windows, appointment.Window{Start: a.Start(), End: a.End()})
				break
			}
		}
	}
	return windows, nil
}

func (r *MockAppointmentRepository) overlaps(a *appointment.Appointment, from, to time.Time) bool {
	return a.Start().Before(to) && !a.End().Before(from)
}

var _ appointment.Repository = (*MockAppointmentRepository)(nil)
