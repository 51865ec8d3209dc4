/*
Package request is the top-level coordinator subdomain. The RepairRequest
aggregate owns the externally observable lifecycle status and the
append-only tracking audit trail; appointments, reports and invoices are
separate aggregates that reference the request by id.

The lifecycle is driven top-down (request → appointment → reports →
invoice) while approval, payment and completion facts flow back up
through the reconciliation guard in the application layer.
*/
package request

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// RepairRequest aggregate root.
type RepairRequest struct {
	id          string
	requesterID string
	origin      Origin

	// Exactly one of these is meaningful, selected by origin.
	apartmentID           string
	commonAreaObjectID    string
	maintenanceScheduleID string

	issueID         string
	parentRequestID string
	emergency       bool

	status         Status
	acceptanceTime *time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time

	tracking []TrackingEntry

	events []shared.DomainEvent

	// Dirty tracking for the persistence layer.
	addedTracking []TrackingEntry
	isNew         bool
}

// TrackingEntry is an append-only audit row; immutable once written. The
// recorded status sequence is always a valid path through the lifecycle
// state machine.
type TrackingEntry struct {
	id         string
	status     Status
	note       string
	actorID    string
	actorRole  shared.Role
	recordedAt time.Time
}

func (t TrackingEntry) ID() string             { return t.id }
func (t TrackingEntry) Status() Status         { return t.status }
func (t TrackingEntry) Note() string           { return t.note }
func (t TrackingEntry) ActorID() string        { return t.actorID }
func (t TrackingEntry) ActorRole() shared.Role { return t.actorRole }
func (t TrackingEntry) RecordedAt() time.Time  { return t.recordedAt }

// SubmitOptions parameterizes request submission.
type SubmitOptions struct {
	RequesterID           string
	Origin                Origin
	ApartmentID           string
	CommonAreaObjectID    string
	MaintenanceScheduleID string
	IssueID               string
	ParentRequestID       string
	Emergency             bool
	Note                  string
}

// Submit creates a new RepairRequest in Pending and writes the first
// tracking row. This is the only way to create the aggregate.
func Submit(opts SubmitOptions, actor shared.Actor) (*RepairRequest, error) {
	if opts.RequesterID == "" {
		return nil, shared.NewValidationError("repair_request", "requester_id", "requester is required")
	}
	if _, ok := ParseOrigin(string(opts.Origin)); !ok {
		return nil, shared.NewValidationError("repair_request", "origin", "unknown origin")
	}
	if err := validateOriginContext(opts); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request ID: %w", err)
	}

	now := time.Now()
	r := &RepairRequest{
		id:                    id.String(),
		requesterID:           opts.RequesterID,
		origin:                opts.Origin,
		apartmentID:           opts.ApartmentID,
		commonAreaObjectID:    opts.CommonAreaObjectID,
		maintenanceScheduleID: opts.MaintenanceScheduleID,
		issueID:               opts.IssueID,
		parentRequestID:       opts.ParentRequestID,
		emergency:             opts.Emergency,
		status:                StatusPending,
		version:               0,
		createdAt:             now,
		updatedAt:             now,
		events:                make([]shared.DomainEvent, 0),
		isNew:                 true,
	}
	r.appendTracking(StatusPending, opts.Note, actor)

	r.events = append(r.events, NewRequestSubmittedEvent(r.id, r.requesterID, string(r.origin), r.emergency))

	return r, nil
}

func validateOriginContext(opts SubmitOptions) error {
	switch opts.Origin {
	case OriginResident:
		if opts.ApartmentID == "" || opts.CommonAreaObjectID != "" || opts.MaintenanceScheduleID != "" {
			return ErrMissingOriginContext
		}
	case OriginCommonArea:
		if opts.CommonAreaObjectID == "" || opts.ApartmentID != "" || opts.MaintenanceScheduleID != "" {
			return ErrMissingOriginContext
		}
	case OriginMaintenance:
		if opts.MaintenanceScheduleID == "" || opts.ApartmentID != "" || opts.CommonAreaObjectID != "" {
			return ErrMissingOriginContext
		}
	}
	return nil
}

// transition performs one guarded status change plus its audit row.
func (r *RepairRequest) transition(to Status, note string, actor shared.Actor) error {
	if !CanTransition(r.status, to) {
		return newInvalidTransition(r.status, to)
	}
	r.status = to
	r.updatedAt = time.Now()
	r.appendTracking(to, note, actor)
	return nil
}

// Triage resolves a Pending or WaitingManagerApproval request.
// TechnicianLead triage of a maintenance-originated request moves it to
// WaitingManagerApproval (capital-expense approval); resident-initiated
// requests skip straight to Approved. Manager triage resolves
// WaitingManagerApproval. Rejection is terminal.
func (r *RepairRequest) Triage(approve bool, note string, actor shared.Actor) error {
	if !approve {
		if err := r.transition(StatusRejected, note, actor); err != nil {
			return err
		}
		r.events = append(r.events, NewRequestRejectedEvent(r.id, actor.ID, note))
		return nil
	}

	target := StatusApproved
	if r.status == StatusPending && r.requiresManagerApproval() {
		target = StatusWaitingManagerApproval
	}
	if err := r.transition(target, note, actor); err != nil {
		return err
	}
	if target == StatusApproved {
		r.events = append(r.events, NewRequestApprovedEvent(r.id, actor.ID))
	}
	return nil
}

func (r *RepairRequest) requiresManagerApproval() bool {
	return r.origin == OriginMaintenance
}

// Escalate sends a Pending request to the manager explicitly.
func (r *RepairRequest) Escalate(note string, actor shared.Actor) error {
	if r.status != StatusPending {
		return newInvalidTransition(r.status, StatusWaitingManagerApproval)
	}
	return r.transition(StatusWaitingManagerApproval, note, actor)
}

// Cancel aborts the request. Legal only before work starts; the
// application layer cascades the cancellation to the open appointment.
func (r *RepairRequest) Cancel(reason string, actor shared.Actor) error {
	if err := r.transition(StatusCancelled, reason, actor); err != nil {
		return err
	}
	r.events = append(r.events, NewRequestCancelledEvent(r.id, actor.ID, reason))
	return nil
}

// MarkInProgress records that the appointment visit has started.
func (r *RepairRequest) MarkInProgress(actor shared.Actor) error {
	return r.transition(StatusInProgress, "", actor)
}

// AdvanceToAcceptance moves InProgress → AcceptancePendingVerify. Called
// by the reconciliation guard once the repair report is terminally
// approved, the appointment is completed and, for chargeable work, the
// invoice is paid.
func (r *RepairRequest) AdvanceToAcceptance(actor shared.Actor) error {
	if err := r.transition(StatusAcceptancePendingVerify, "", actor); err != nil {
		return err
	}
	r.events = append(r.events, NewRequestAwaitingAcceptanceEvent(r.id))
	return nil
}

// VerifyAcceptance completes the request. Only the requester may verify;
// for maintenance-originated requests the manager stands in for the
// system.
func (r *RepairRequest) VerifyAcceptance(actor shared.Actor) error {
	if !r.canVerifyAcceptance(actor) {
		return ErrNotRequester
	}
	if err := r.transition(StatusCompleted, "", actor); err != nil {
		return err
	}
	now := time.Now()
	r.acceptanceTime = &now
	r.events = append(r.events, NewRequestCompletedEvent(r.id, actor.ID))
	return nil
}

func (r *RepairRequest) canVerifyAcceptance(actor shared.Actor) bool {
	if actor.ID == r.requesterID {
		return true
	}
	if r.origin == OriginMaintenance && (actor.Role == shared.RoleManager || actor.Role == shared.RoleAdmin) {
		return true
	}
	return false
}

func (r *RepairRequest) appendTracking(status Status, note string, actor shared.Actor) {
	entry := TrackingEntry{
		id:         uuid.NewString(),
		status:     status,
		note:       note,
		actorID:    actor.ID,
		actorRole:  actor.Role,
		recordedAt: time.Now(),
	}
	r.tracking = append(r.tracking, entry)
	r.addedTracking = append(r.addedTracking, entry)
}

// Getters.

func (r *RepairRequest) ID() string                    { return r.id }
func (r *RepairRequest) RequesterID() string           { return r.requesterID }
func (r *RepairRequest) Origin() Origin                { return r.origin }
func (r *RepairRequest) ApartmentID() string           { return r.apartmentID }
func (r *RepairRequest) CommonAreaObjectID() string    { return r.commonAreaObjectID }
func (r *RepairRequest) MaintenanceScheduleID() string { return r.maintenanceScheduleID }
func (r *RepairRequest) IssueID() string               { return r.issueID }
func (r *RepairRequest) ParentRequestID() string       { return r.parentRequestID }
func (r *RepairRequest) Emergency() bool               { return r.emergency }
func (r *RepairRequest) Status() Status                { return r.status }
func (r *RepairRequest) Version() int                  { return r.version }
func (r *RepairRequest) CreatedAt() time.Time          { return r.createdAt }
func (r *RepairRequest) UpdatedAt() time.Time          { return r.updatedAt }

// AcceptanceTime is non-nil once the request is Completed.
func (r *RepairRequest) AcceptanceTime() *time.Time {
	if r.acceptanceTime == nil {
		return nil
	}
	t := *r.acceptanceTime
	return &t
}

// Tracking returns a copy of the audit trail.
func (r *RepairRequest) Tracking() []TrackingEntry {
	entries := make([]TrackingEntry, len(r.tracking))
	copy(entries, r.tracking)
	return entries
}

// Chargeable reports whether the requester is billed for the work by
// default. The inspection report's fault owner has the final word; this
// only reflects origin defaults.
func (r *RepairRequest) Chargeable() bool {
	return r.origin != OriginMaintenance
}

// Persistence support.

// IsNew reports whether the aggregate has never been persisted.
func (r *RepairRequest) IsNew() bool { return r.isNew }

// AddedTracking returns audit rows appended since load; the repository
// inserts these (tracking rows are never updated or deleted).
func (r *RepairRequest) AddedTracking() []TrackingEntry {
	entries := make([]TrackingEntry, len(r.addedTracking))
	copy(entries, r.addedTracking)
	return entries
}

// IncrementVersionForSave bumps the optimistic lock version after a
// successful save.
func (r *RepairRequest) IncrementVersionForSave() {
	r.version++
}

// ClearDirtyTracking resets dirty state after a successful save.
func (r *RepairRequest) ClearDirtyTracking() {
	r.addedTracking = nil
	r.isNew = false
}

// PullEvents drains recorded domain events.
func (r *RepairRequest) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(r.events))
	copy(events, r.events)
	r.events = r.events[:0]
	return events
}

// ReconstructionDTO rebuilds the aggregate from storage; repository use
// only.
type ReconstructionDTO struct {
	ID                    string
	RequesterID           string
	Origin                Origin
	ApartmentID           string
	CommonAreaObjectID    string
	MaintenanceScheduleID string
	IssueID               string
	ParentRequestID       string
	Emergency             bool
	Status                Status
	AcceptanceTime        *time.Time
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Tracking              []TrackingEntry
}

// Rebuild reconstructs a RepairRequest from persisted state.
func Rebuild(dto ReconstructionDTO) *RepairRequest {
	return &RepairRequest{
		id:                    dto.ID,
		requesterID:           dto.RequesterID,
		origin:                dto.Origin,
		apartmentID:           dto.ApartmentID,
		commonAreaObjectID:    dto.CommonAreaObjectID,
		maintenanceScheduleID: dto.MaintenanceScheduleID,
		issueID:               dto.IssueID,
		parentRequestID:       dto.ParentRequestID,
		emergency:             dto.Emergency,
		status:                dto.Status,
		acceptanceTime:        dto.AcceptanceTime,
		version:               dto.Version,
		createdAt:             dto.CreatedAt,
		updatedAt:             dto.UpdatedAt,
		tracking:              dto.Tracking,
	}
}

// TrackingReconstructionDTO rebuilds one audit row from storage.
type TrackingReconstructionDTO struct {
	ID         string
	Status     Status
	Note       string
	ActorID    string
	ActorRole  shared.Role
	RecordedAt time.Time
}

// RebuildTracking reconstructs a TrackingEntry from persisted state.
func RebuildTracking(dto TrackingReconstructionDTO) TrackingEntry {
	return TrackingEntry{
		id:         dto.ID,
		status:     dto.Status,
		note:       dto.Note,
		actorID:    dto.ActorID,
		actorRole:  dto.ActorRole,
		recordedAt: dto.RecordedAt,
	}
}

var _ shared.AggregateRoot = (*RepairRequest)(nil)
