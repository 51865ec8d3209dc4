package mocks

import (
	"context"
	"sync"

	"maintdesk/domain/request"
)

// MockRequestRepository in-memory implementation of the repair request
// repository for testing
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*request.RepairRequest
}

// NewMockRequestRepository Create mock repair request repository
func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*request.RepairRequest),
	}
}

func (r *MockRequestRepository) Save(ctx context.Context, req *request.RepairRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !req.IsNew() {
		if _, ok := r.requests[req.ID()]; !ok {
			return request.NewRequestNotFoundError(req.ID())
		}
		req.IncrementVersionForSave()
	}
	req.ClearDirtyTracking()
	r.requests[req.ID()] = req
	return nil
}

func (r *MockRequestRepository) FindByID(ctx context.Context, id string) (*request.RepairRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, request.NewRequestNotFoundError(id)
	}
	return req, nil
}

func (r *MockRequestRepository) FindByRequesterID(ctx context.Context, requesterID string) ([]*request.RepairRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*request.RepairRequest
	for _, req := range r.requests {
		if req.RequesterID() == requesterID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (r *MockRequestRepository) FindByStatus(ctx context.Context, status request.Status, limit int) ([]*request.RepairRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*request.RepairRequest
	for _, req := range r.requests {
		if req.Status() == status {
			result = append(result, req)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

var _ request.Repository = (*MockRequestRepository)(nil)

// MockFeedbackRepository in-memory feedback repository for testing
type MockFeedbackRepository struct {
	mu        sync.RWMutex
	feedbacks map[string]*request.Feedback
}

// NewMockFeedbackRepository Create mock feedback repository
func NewMockFeedbackRepository() *MockFeedbackRepository {
	return &MockFeedbackRepository{
		feedbacks: make(map[string]*request.Feedback),
	}
}

func (r *MockFeedbackRepository) Save(ctx context.Context, f *request.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedbacks[f.ID()] = f
	return nil
}

func (r *MockFeedbackRepository) FindByRequestID(ctx context.Context, requestID string) ([]*request.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*request.Feedback
	for _, f := range r.feedbacks {
		if f.RequestID() == requestID {
			result = append(result, f)
		}
	}
	return result, nil
}

var _ request.FeedbackRepository = (*MockFeedbackRepository)(nil)
