package request

import (
	"time"

	"maintdesk/domain/request"
	"maintdesk/domain/shared"
)

// ActorClaims identity claims carried by every mutating command. The
// engine trusts them; validation only checks the role string is known.
type ActorClaims struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorRole string `json:"actor_role" binding:"required"`
}

func (c ActorClaims) actor() (shared.Actor, error) {
	role, ok := shared.ParseRole(c.ActorRole)
	if !ok {
		return shared.Actor{}, shared.NewValidationError("actor", "role", "unknown role")
	}
	return shared.Actor{ID: c.ActorID, Role: role}, nil
}

// SubmitRequestCommand Submit repair request DTO
type SubmitRequestCommand struct {
	RequesterID           string `json:"requester_id" binding:"required"`
	Origin                string `json:"origin" binding:"required"`
	ApartmentID           string `json:"apartment_id"`
	CommonAreaObjectID    string `json:"common_area_object_id"`
	MaintenanceScheduleID string `json:"maintenance_schedule_id"`
	IssueID               string `json:"issue_id" binding:"required"`
	ParentRequestID       string `json:"parent_request_id"`
	Emergency             bool   `json:"emergency"`
	Note                  string `json:"note"`
	ActorClaims
}

// TriageCommand Triage request DTO
type TriageCommand struct {
	RequestID string `json:"-"`
	Approve   bool   `json:"approve"`
	Note      string `json:"note"`
	ActorClaims
}

// EscalateCommand Escalate request DTO
type EscalateCommand struct {
	RequestID string `json:"-"`
	Note      string `json:"note"`
	ActorClaims
}

// CancelCommand Cancel request DTO
type CancelCommand struct {
	RequestID string `json:"-"`
	Reason    string `json:"reason" binding:"required"`
	ActorClaims
}

// VerifyAcceptanceCommand Verify acceptance DTO
type VerifyAcceptanceCommand struct {
	RequestID string `json:"-"`
	ActorClaims
}

// AddFeedbackCommand Record feedback DTO
type AddFeedbackCommand struct {
	RequestID        string `json:"-"`
	AuthorID         string `json:"author_id" binding:"required"`
	ParentFeedbackID string `json:"parent_feedback_id"`
	Rating           int    `json:"rating" binding:"required,min=1,max=5"`
	Comment          string `json:"comment"`
}

// TrackingResponse One audit trail row
type TrackingResponse struct {
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RequestResponse Repair request response DTO
type RequestResponse struct {
	ID                    string             `json:"id"`
	RequesterID           string             `json:"requester_id"`
	Origin                string             `json:"origin"`
	ApartmentID           string             `json:"apartment_id,omitempty"`
	CommonAreaObjectID    string             `json:"common_area_object_id,omitempty"`
	MaintenanceScheduleID string             `json:"maintenance_schedule_id,omitempty"`
	IssueID               string             `json:"issue_id"`
	ParentRequestID       string             `json:"parent_request_id,omitempty"`
	Emergency             bool               `json:"emergency"`
	Chargeable            bool               `json:"chargeable"`
	Status                string             `json:"status"`
	AcceptanceTime        *time.Time         `json:"acceptance_time,omitempty"`
	Tracking              []TrackingResponse `json:"tracking"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// FeedbackResponse Feedback response DTO
type FeedbackResponse struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	AuthorID         string    `json:"author_id"`
	ParentFeedbackID string    `json:"parent_feedback_id,omitempty"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toRequestResponse(req *request.RepairRequest) *RequestResponse {
	tracking := make([]TrackingResponse, len(req.Tracking()))
	for i, t := range req.Tracking() {
		tracking[i] = TrackingResponse{
			Status:     string(t.Status()),
			Note:       t.Note(),
			ActorID:    t.ActorID(),
			ActorRole:  string(t.ActorRole()),
			RecordedAt: t.RecordedAt(),
		}
	}

	return &RequestResponse{
		ID:                    req.ID(),
		RequesterID:           req.RequesterID(),
		Origin:                string(req.Origin()),
		ApartmentID:           req.ApartmentID(),
		CommonAreaObjectID:    req.CommonAreaObjectID(),
		MaintenanceScheduleID: req.MaintenanceScheduleID(),
		IssueID:               req.IssueID(),
		ParentRequestID:       req.ParentRequestID(),
		Emergency:             req.Emergency(),
		Chargeable:            req.Chargeable(),
		Status:                string(req.Status()),
		AcceptanceTime:        req.AcceptanceTime(),
		Tracking:              tracking,
		CreatedAt:             req.CreatedAt(),
		UpdatedAt:             req.UpdatedAt(),
	}
}

func toFeedbackResponse(fb *request.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:               fb.ID(),
		RequestID:        fb.RequestID(),
		AuthorID:         fb.AuthorID(),
		ParentFeedbackID: fb.ParentFeedbackID(),
		Rating:           fb.Rating(),
		Comment:          fb.Comment(),
		CreatedAt:        fb.CreatedAt(),
	}
}
