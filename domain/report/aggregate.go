/*
Package report models technician-authored inspection and repair reports
and their role-ordered approval chain. Approvals are append-only child
entities owned by the Report aggregate; the next expected role and the
finalized state are derived from the recorded chain, never stored
redundantly.
*/
package report

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Report aggregate root covering both report kinds. Inspection-specific
// fields (fault owner, solution type) are zero for repair reports.
type Report struct {
	id            string
	appointmentID string
	requestID     string
	kind          Kind
	authorID      string

	description  string
	solution     string
	faultOwner   FaultOwner
	solutionType SolutionType

	// residentFacing selects the approval chain's second role: Resident
	// for resident-originated requests, Manager for maintenance ones.
	residentFacing bool

	status    Status
	version   int
	createdAt time.Time
	updatedAt time.Time

	approvals []Approval

	events []shared.DomainEvent

	addedApprovals []Approval
	isNew          bool
}

// Approval is one append-only approval row; immutable once recorded.
type Approval struct {
	id         string
	approverID string
	role       shared.Role
	decision   Decision
	comment    string
	recordedAt time.Time
}

func (a Approval) ID() string            { return a.id }
func (a Approval) ApproverID() string    { return a.approverID }
func (a Approval) Role() shared.Role     { return a.role }
func (a Approval) Decision() Decision    { return a.decision }
func (a Approval) Comment() string       { return a.comment }
func (a Approval) RecordedAt() time.Time { return a.recordedAt }

// InspectionOptions parameterizes inspection report submission.
type InspectionOptions struct {
	AppointmentID  string
	RequestID      string
	AuthorID       string
	Description    string
	Solution       string
	FaultOwner     FaultOwner
	SolutionType   SolutionType
	ResidentFacing bool
}

// SubmitInspection creates an inspection report in Pending.
func SubmitInspection(opts InspectionOptions) (*Report, error) {
	if opts.AppointmentID == "" {
		return nil, shared.NewValidationError("report", "appointment_id", "appointment is required")
	}
	if _, ok := ParseFaultOwner(string(opts.FaultOwner)); !ok {
		return nil, shared.NewValidationError("report", "fault_owner", "unknown fault owner")
	}
	if _, ok := ParseSolutionType(string(opts.SolutionType)); !ok {
		return nil, shared.NewValidationError("report", "solution_type", "unknown solution type")
	}

	r, err := newReport(KindInspection, opts.AppointmentID, opts.RequestID, opts.AuthorID, opts.Description, opts.ResidentFacing)
	if err != nil {
		return nil, err
	}
	r.solution = opts.Solution
	r.faultOwner = opts.FaultOwner
	r.solutionType = opts.SolutionType
	r.events = append(r.events, NewReportSubmittedEvent(r.id, r.requestID, string(KindInspection)))
	return r, nil
}

// SubmitRepair creates a repair report in Pending.
func SubmitRepair(appointmentID, requestID, authorID, description string, residentFacing bool) (*Report, error) {
	if appointmentID == "" {
		return nil, shared.NewValidationError("report", "appointment_id", "appointment is required")
	}
	r, err := newReport(KindRepair, appointmentID, requestID, authorID, description, residentFacing)
	if err != nil {
		return nil, err
	}
	r.events = append(r.events, NewReportSubmittedEvent(r.id, r.requestID, string(KindRepair)))
	return r, nil
}

func newReport(kind Kind, appointmentID, requestID, authorID, description string, residentFacing bool) (*Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report ID: %w", err)
	}
	now := time.Now()
	return &Report{
		id:             id.String(),
		appointmentID:  appointmentID,
		requestID:      requestID,
		kind:           kind,
		authorID:       authorID,
		description:    description,
		residentFacing: residentFacing,
		status:         StatusPending,
		createdAt:      now,
		updatedAt:      now,
		events:         make([]shared.DomainEvent, 0),
		isNew:          true,
	}, nil
}

// chainProgress counts consecutive approvals since the last rejection; a
// rejection restarts the chain at the TechnicianLead.
func (r *Report) chainProgress() int {
	progress := 0
	for _, a := range r.approvals {
		if a.decision == DecisionRejected {
			progress = 0
		} else {
			progress++
		}
	}
	return progress
}

// NextExpectedRole returns the role whose approval is due next, or false
// when the chain is complete.
func (r *Report) NextExpectedRole() (shared.Role, bool) {
	chain := approvalChain(r.residentFacing)
	progress := r.chainProgress()
	if progress >= len(chain) {
		return "", false
	}
	return chain[progress], true
}

// IsFinalized reports whether the approval chain has run to completion.
func (r *Report) IsFinalized() bool {
	_, pending := r.NextExpectedRole()
	return !pending
}

// RecordApproval appends one approval row and advances the report
// status. Role order is fixed: TechnicianLead first, then Resident or
// Manager depending on the request origin. A rejection sends the report
// back to the technician for rework instead of terminating anything.
func (r *Report) RecordApproval(approver shared.Actor, decision Decision, comment string) error {
	expected, pending := r.NextExpectedRole()
	if !pending {
		return NewAlreadyFinalizedError(r.id, r.status)
	}
	if approver.Role != expected {
		return NewOutOfOrderApprovalError(r.id, expected, approver.Role)
	}

	approval := Approval{
		id:         uuid.NewString(),
		approverID: approver.ID,
		role:       approver.Role,
		decision:   decision,
		comment:    comment,
		recordedAt: time.Now(),
	}
	r.approvals = append(r.approvals, approval)
	r.addedApprovals = append(r.addedApprovals, approval)
	r.updatedAt = approval.recordedAt

	if decision == DecisionRejected {
		r.status = StatusPending
		r.events = append(r.events, NewReportRejectedEvent(r.id, r.requestID, approver.ID, comment))
		return nil
	}

	r.advanceStatus()
	r.events = append(r.events, NewReportApprovalRecordedEvent(r.id, r.requestID, string(approver.Role), r.IsFinalized()))
	return nil
}

// advanceStatus maps chain progress onto the visible automaton:
// resident-facing reports step Pending → Approved → ResidentApproved;
// internal reports jump Pending → Approved when the chain completes.
func (r *Report) advanceStatus() {
	progress := r.chainProgress()
	chain := approvalChain(r.residentFacing)

	switch {
	case progress >= len(chain) && r.residentFacing:
		r.status = StatusResidentApproved
	case progress >= len(chain):
		r.status = StatusApproved
	case r.residentFacing && progress == 1:
		r.status = StatusApproved
	default:
		r.status = StatusPending
	}
}

// Rework replaces the report content after a rejection (or before any
// approval). Rework is re-submission of the same report, not a new one.
func (r *Report) Rework(description, solution string) error {
	if r.IsFinalized() || r.chainProgress() > 0 {
		return ErrNotReworkable
	}
	r.description = description
	if r.kind == KindInspection {
		r.solution = solution
	}
	r.updatedAt = time.Now()
	return nil
}

// Getters.

func (r *Report) ID() string                 { return r.id }
func (r *Report) AppointmentID() string      { return r.appointmentID }
func (r *Report) RequestID() string          { return r.requestID }
func (r *Report) Kind() Kind                 { return r.kind }
func (r *Report) AuthorID() string           { return r.authorID }
func (r *Report) Description() string        { return r.description }
func (r *Report) Solution() string           { return r.solution }
func (r *Report) FaultOwner() FaultOwner     { return r.faultOwner }
func (r *Report) SolutionType() SolutionType { return r.solutionType }
func (r *Report) ResidentFacing() bool       { return r.residentFacing }
func (r *Report) Status() Status             { return r.status }
func (r *Report) Version() int               { return r.version }
func (r *Report) CreatedAt() time.Time       { return r.createdAt }
func (r *Report) UpdatedAt() time.Time       { return r.updatedAt }

// Approvals returns a copy of the recorded approval rows.
func (r *Report) Approvals() []Approval {
	approvals := make([]Approval, len(r.approvals))
	copy(approvals, r.approvals)
	return approvals
}

// Persistence support.

func (r *Report) IsNew() bool { return r.isNew }

// AddedApprovals returns approval rows appended since load (insert only).
func (r *Report) AddedApprovals() []Approval {
	approvals := make([]Approval, len(r.addedApprovals))
	copy(approvals, r.addedApprovals)
	return approvals
}

func (r *Report) IncrementVersionForSave() {
	r.version++
}

func (r *Report) ClearDirtyTracking() {
	r.addedApprovals = nil
	r.isNew = false
}

func (r *Report) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(r.events))
	copy(events, r.events)
	r.events = r.events[:0]
	return events
}

// ReconstructionDTO rebuilds the aggregate from storage; repository use
// only.
type ReconstructionDTO struct {
	ID             string
	AppointmentID  string
	RequestID      string
	Kind           Kind
	AuthorID       string
	Description    string
	Solution       string
	FaultOwner     FaultOwner
	SolutionType   SolutionType
	ResidentFacing bool
	Status         Status
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Approvals      []Approval
}

// Rebuild reconstructs a Report from persisted state.
func Rebuild(dto ReconstructionDTO) *Report {
	return &Report{
		id:             dto.ID,
		appointmentID:  dto.AppointmentID,
		requestID:      dto.RequestID,
		kind:           dto.Kind,
		authorID:       dto.AuthorID,
		description:    dto.Description,
		solution:       dto.Solution,
		faultOwner:     dto.FaultOwner,
		solutionType:   dto.SolutionType,
		residentFacing: dto.ResidentFacing,
		status:         dto.Status,
		version:        dto.Version,
		createdAt:      dto.CreatedAt,
		updatedAt:      dto.UpdatedAt,
		approvals:      dto.Approvals,
	}
}

// ApprovalReconstructionDTO rebuilds one approval row from storage.
type ApprovalReconstructionDTO struct {
	ID         string
	ApproverID string
	Role       shared.Role
	Decision   Decision
	Comment    string
	RecordedAt time.Time
}

// RebuildApproval reconstructs an Approval from persisted state.
func RebuildApproval(dto ApprovalReconstructionDTO) Approval {
	return Approval{
		id:         dto.ID,
		approverID: dto.ApproverID,
		role:       dto.Role,
		decision:   dto.Decision,
		comment:    dto.Comment,
		recordedAt: dto.RecordedAt,
	}
}

var _ shared.AggregateRoot = (*Report)(nil)
