// Package po holds GORM persistence objects. POs map tables only and
// carry no business logic; GORM associations are prohibited so that
// aggregate boundaries stay explicit in the repositories.
package po

import (
	"time"

	"maintdesk/domain/request"
	"maintdesk/domain/shared"
)

// RepairRequestPO persistence object for the repair_requests table.
type RepairRequestPO struct {
	ID                    string     `gorm:"primaryKey;size:64"`
	RequesterID           string     `gorm:"size:64;index;not null"`
	Origin                string     `gorm:"size:30;not null"`
	ApartmentID           string     `gorm:"size:64;index"`
	CommonAreaObjectID    string     `gorm:"size:64"`
	MaintenanceScheduleID string     `gorm:"size:64"`
	IssueID               string     `gorm:"size:64"`
	ParentRequestID       string     `gorm:"size:64;index"`
	Emergency             bool       `gorm:"not null"`
	Status                string     `gorm:"size:30;index;not null"`
	AcceptanceTime        *time.Time `gorm:""`
	Version               int        `gorm:"default:0"`
	CreatedAt             time.Time  `gorm:"autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime"`
}

func (RepairRequestPO) TableName() string {
	return "repair_requests"
}

// RequestTrackingPO persistence object for the request_tracking audit
// table. Rows are insert-only.
type RequestTrackingPO struct {
	ID         string    `gorm:"primaryKey;size:128"`
	RequestID  string    `gorm:"size:64;index;not null"`
	Status     string    `gorm:"size:30;not null"`
	Note       string    `gorm:"size:500"`
	ActorID    string    `gorm:"size:64;not null"`
	ActorRole  string    `gorm:"size:20;not null"`
	RecordedAt time.Time `gorm:"not null"`
}

func (RequestTrackingPO) TableName() string {
	return "request_tracking"
}

// FeedbackPO persistence object for the request_feedback table.
type FeedbackPO struct {
	ID               string    `gorm:"primaryKey;size:64"`
	RequestID        string    `gorm:"size:64;index;not null"`
	AuthorID         string    `gorm:"size:64;not null"`
	Rating           int       `gorm:"not null"`
	Comment          string    `gorm:"size:1000"`
	ParentFeedbackID string    `gorm:"size:64"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (FeedbackPO) TableName() string {
	return "request_feedback"
}

// FromRequestDomain converts the aggregate to persistence objects. Only
// tracking rows added since load are returned; the audit trail is
// append-only.
func FromRequestDomain(r *request.RepairRequest) (*RepairRequestPO, []RequestTrackingPO) {
	requestPO := &RepairRequestPO{
		ID:                    r.ID(),
		RequesterID:           r.RequesterID(),
		Origin:                string(r.Origin()),
		ApartmentID:           r.ApartmentID(),
		CommonAreaObjectID:    r.CommonAreaObjectID(),
		MaintenanceScheduleID: r.MaintenanceScheduleID(),
		IssueID:               r.IssueID(),
		ParentRequestID:       r.ParentRequestID(),
		Emergency:             r.Emergency(),
		Status:                string(r.Status()),
		AcceptanceTime:        r.AcceptanceTime(),
		Version:               r.Version(),
		CreatedAt:             r.CreatedAt(),
		UpdatedAt:             r.UpdatedAt(),
	}

	added := r.AddedTracking()
	trackingPOs := make([]RequestTrackingPO, len(added))
	for i, entry := range added {
		trackingPOs[i] = RequestTrackingPO{
			ID:         entry.ID(),
			RequestID:  r.ID(),
			Status:     string(entry.Status()),
			Note:       entry.Note(),
			ActorID:    entry.ActorID(),
			ActorRole:  string(entry.ActorRole()),
			RecordedAt: entry.RecordedAt(),
		}
	}

	return requestPO, trackingPOs
}

// ToDomain converts persistence objects back to the aggregate.
func (po *RepairRequestPO) ToDomain(trackingPOs []RequestTrackingPO) *request.RepairRequest {
	tracking := make([]request.TrackingEntry, len(trackingPOs))
	for i, t := range trackingPOs {
		tracking[i] = request.RebuildTracking(request.TrackingReconstructionDTO{
			ID:         t.ID,
			Status:     request.Status(t.Status),
			Note:       t.Note,
			ActorID:    t.ActorID,
			ActorRole:  shared.Role(t.ActorRole),
			RecordedAt: t.RecordedAt,
		})
	}

	return request.Rebuild(request.ReconstructionDTO{
		ID:                    po.ID,
		RequesterID:           po.RequesterID,
		Origin:                request.Origin(po.Origin),
		ApartmentID:           po.ApartmentID,
		CommonAreaObjectID:    po.CommonAreaObjectID,
		MaintenanceScheduleID: po.MaintenanceScheduleID,
		IssueID:               po.IssueID,
		ParentRequestID:       po.ParentRequestID,
		Emergency:             po.Emergency,
		Status:                request.Status(po.Status),
		AcceptanceTime:        po.AcceptanceTime,
		Version:               po.Version,
		CreatedAt:             po.CreatedAt,
		UpdatedAt:             po.UpdatedAt,
		Tracking:              tracking,
	})
}

// FromFeedbackDomain converts a feedback entity to its persistence
// object.
func FromFeedbackDomain(f *request.Feedback) *FeedbackPO {
	return &FeedbackPO{
		ID:               f.ID(),
		RequestID:        f.RequestID(),
		AuthorID:         f.AuthorID(),
		Rating:           f.Rating(),
		Comment:          f.Comment(),
		ParentFeedbackID: f.ParentFeedbackID(),
		CreatedAt:        f.CreatedAt(),
	}
}

// ToDomain converts a feedback persistence object back to the entity.
func (po *FeedbackPO) ToDomain() *request.Feedback {
	return request.RebuildFeedback(request.FeedbackReconstructionDTO{
		ID:               po.ID,
		RequestID:        po.RequestID,
		AuthorID:         po.AuthorID,
		Rating:           po.Rating,
		Comment:          po.Comment,
		ParentFeedbackID: po.ParentFeedbackID,
		CreatedAt:        po.CreatedAt,
	})
}
