package report

import (
	"time"

	"maintdesk/domain/report"
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

// SubmitInspectionCommand File inspection report DTO
type SubmitInspectionCommand struct {
	AppointmentID string `json:"-"`
	AuthorID      string `json:"author_id" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Solution      string `json:"solution" binding:"required"`
	FaultOwner    string `json:"fault_owner" binding:"required,oneof=BUILDING RESIDENT"`
	SolutionType  string `json:"solution_type" binding:"required,oneof=REPAIR REPLACEMENT OUTSOURCE"`
}

// SubmitRepairCommand File repair report DTO
type SubmitRepairCommand struct {
	AppointmentID string `json:"-"`
	AuthorID      string `json:"author_id" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

// RecordApprovalCommand Record approval decision DTO
type RecordApprovalCommand struct {
	ReportID string `json:"-"`
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comment  string `json:"comment"`
	ActorClaims
}

// ReworkCommand Rework rejected report DTO
type ReworkCommand struct {
	ReportID    string `json:"-"`
	Description string `json:"description" binding:"required"`
	Solution    string `json:"solution"`
}

// ApprovalResponse One approval audit row
type ApprovalResponse struct {
	ApproverID string    `json:"approver_id"`
	Role       string    `json:"role"`
	Decision   string    `json:"decision"`
	Comment    string    `json:"comment,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ReportResponse Report response DTO
type ReportResponse struct {
	ID               string             `json:"id"`
	AppointmentID    string             `json:"appointment_id"`
	RequestID        string             `json:"request_id"`
	Kind             string             `json:"kind"`
	AuthorID         string             `json:"author_id"`
	Description      string             `json:"description"`
	Solution         string             `json:"solution,omitempty"`
	FaultOwner       string             `json:"fault_owner,omitempty"`
	SolutionType     string             `json:"solution_type,omitempty"`
	Status           string             `json:"status"`
	NextApproverRole string             `json:"next_approver_role,omitempty"`
	Approvals        []ApprovalResponse `json:"approvals"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func toReportResponse(rep *report.Report) *ReportResponse {
	approvals := make([]ApprovalResponse, len(rep.Approvals()))
	for i, a := range rep.Approvals() {
		approvals[i] = ApprovalResponse{
			ApproverID: a.ApproverID(),
			Role:       string(a.Role()),
			Decision:   string(a.Decision()),
			Comment:    a.Comment(),
			RecordedAt: a.RecordedAt(),
		}
	}

	resp := &ReportResponse{
		ID:            rep.ID(),
		AppointmentID: rep.AppointmentID(),
		RequestID:     rep.RequestID(),
		Kind:          string(rep.Kind()),
		AuthorID:      rep.AuthorID(),
		Description:   rep.Description(),
		Solution:      rep.Solution(),
		FaultOwner:    string(rep.FaultOwner()),
		SolutionType:  string(rep.SolutionType()),
		Status:        string(rep.Status()),
		Approvals:     approvals,
		CreatedAt:     rep.CreatedAt(),
		UpdatedAt:     rep.UpdatedAt(),
	}
	if next, pending := rep.NextExpectedRole(); pending {
		resp.NextApproverRole = string(next)
	}
	return resp
}
