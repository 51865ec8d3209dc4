package appointment

import (
	"time"

	"maintdesk/domain/appointment"
	"maintdesk/domain/shared"
)

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

// RecommendCommand Advisor query DTO
type RecommendCommand struct {
	AppointmentID string `json:"-"`
	Technique     string `json:"technique" binding:"required"`
}

// AssignTechniciansCommand Assign technicians DTO
type AssignTechniciansCommand struct {
	AppointmentID string   `json:"-"`
	TechnicianIDs []string `json:"technician_ids" binding:"required,min=1"`
	Required      int      `json:"required" binding:"required,min=1"`
	ActorClaims
}

// AdvancePhaseCommand Advance appointment phase DTO
type AdvancePhaseCommand struct {
	AppointmentID string `json:"-"`
	Phase         string `json:"phase" binding:"required,oneof=CONFIRMED IN_VISIT IN_REPAIR COMPLETED"`
	ActorClaims
}

// CancelAppointmentCommand Cancel appointment DTO
type CancelAppointmentCommand struct {
	AppointmentID string `json:"-"`
	Reason        string `json:"reason" binding:"required"`
	ActorClaims
}

// WorkOrderCommand Technician work order DTO
type WorkOrderCommand struct {
	AppointmentID string `json:"-"`
	TechnicianID  string `json:"technician_id" binding:"required"`
}

// WorkOrderResponse Work order response DTO
type WorkOrderResponse struct {
	ID             string     `json:"id"`
	TechnicianID   string     `json:"technician_id"`
	EstimatedStart time.Time  `json:"estimated_start"`
	EstimatedEnd   time.Time  `json:"estimated_end"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	Status         string     `json:"status"`
}

// TrackingResponse One audit trail row
type TrackingResponse struct {
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AppointmentResponse Appointment response DTO
type AppointmentResponse struct {
	ID         string              `json:"id"`
	RequestID  string              `json:"request_id"`
	Start      time.Time           `json:"start"`
	End        time.Time           `json:"end"`
	Note       string              `json:"note,omitempty"`
	Status     string              `json:"status"`
	WorkOrders []WorkOrderResponse `json:"work_orders"`
	Tracking   []TrackingResponse  `json:"tracking"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// RecommendationResponse One advisor ranking row
type RecommendationResponse struct {
	TechnicianID     string `json:"technician_id"`
	DayAssignments   int    `json:"day_assignments"`
	MonthAssignments int    `json:"month_assignments"`
}

func toAppointmentResponse(appt *appointment.Appointment) *AppointmentResponse {
	workOrders := make([]WorkOrderResponse, len(appt.WorkOrders()))
	for i, wo := range appt.WorkOrders() {
		workOrders[i] = WorkOrderResponse{
			ID:             wo.ID(),
			TechnicianID:   wo.TechnicianID(),
			EstimatedStart: wo.EstimatedStart(),
			EstimatedEnd:   wo.EstimatedEnd(),
			ActualStart:    wo.ActualStart(),
			ActualEnd:      wo.ActualEnd(),
			Status:         string(wo.Status()),
		}
	}

	tracking := make([]TrackingResponse, len(appt.Tracking()))
	for i, t := range appt.Tracking() {
		tracking[i] = TrackingResponse{
			Status:     string(t.Status()),
			Note:       t.Note(),
			ActorID:    t.ActorID(),
			ActorRole:  string(t.ActorRole()),
			RecordedAt: t.RecordedAt(),
		}
	}

	return &AppointmentResponse{
		ID:         appt.ID(),
		RequestID:  appt.RequestID(),
		Start:      appt.Start(),
		End:        appt.End(),
		Note:       appt.Note(),
		Status:     string(appt.Status()),
		WorkOrders: workOrders,
		Tracking:   tracking,
		CreatedAt:  appt.CreatedAt(),
		UpdatedAt:  appt.UpdatedAt(),
	}
}
