package mocks

import (
	"context"
	"sort"
	"sync"

	"maintdesk/domain/report"
)

// MockReportRepository in-memory report repository for testing
type MockReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
}

// NewMockReportRepository Create mock report repository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{
		reports: make(map[string]*report.Report),
	}
}

func (r *MockReportRepository) Save(ctx context.Context, rep *report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !rep.IsNew() {
		if _, ok := r.reports[rep.ID()]; !ok {
			return report.NewReportNotFoundError(rep.ID())
		}
		rep.IncrementVersionForSave()
	}
	rep.ClearDirtyTracking()
	r.reports[rep.ID()] = rep
	return nil
}

func (r *MockReportRepository) FindByID(ctx context.Context, id string) (*report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[id]
	if !ok {
		return nil, report.NewReportNotFoundError(id)
	}
	return rep, nil
}

func (r *MockReportRepository) FindByAppointmentID(ctx context.Context, appointmentID string, kind report.Kind) (*report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *report.Report
	for _, rep := range r.reports {
		if rep.AppointmentID() != appointmentID || rep.Kind() != kind {
			continue
		}
		if latest == nil || rep.CreatedAt().After(latest.CreatedAt()) {
			latest = rep
		}
	}
	if latest == nil {
		return nil, report.NewReportNotFoundError(appointmentID)
	}
	return latest, nil
}

func (r *MockReportRepository) FindByRequestID(ctx context.Context, requestID string) ([]*report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*report.Report
	for _, rep := range r.reports {
		if rep.RequestID() == requestID {
			result = append(result, rep)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

var _ report.Repository = (*MockReportRepository)(nil)
