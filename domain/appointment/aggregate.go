/*
Package appointment models a scheduled technician visit against a repair
request. The Appointment aggregate owns its work orders (one per
assigned technician) and its append-only tracking audit; work orders are
accessed only through the aggregate root.
*/
package appointment

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Appointment aggregate root. At most one open (non-terminal)
// appointment exists per repair request at any time; the application
// layer enforces the slot via the repository inside the transaction.
type Appointment struct {
	id        string
	requestID string
	start     time.Time
	end       time.Time
	note      string
	status    Status
	version   int
	createdAt time.Time
	updatedAt time.Time

	workOrders []WorkOrder
	tracking   []TrackingEntry

	events []shared.DomainEvent

	addedWorkOrders []WorkOrder
	dirtyWorkOrders []WorkOrder
	addedTracking   []TrackingEntry
	isNew           bool
}

// WorkOrder is one technician's assignment within the appointment.
// ActualStartTime is set when the technician starts working and
// ActualEndTime when the work order completes, never otherwise.
type WorkOrder struct {
	id             string
	technicianID   string
	estimatedStart time.Time
	estimatedEnd   time.Time
	actualStart    *time.Time
	actualEnd      *time.Time
	status         WorkOrderStatus
}

func (w WorkOrder) ID() string                { return w.id }
func (w WorkOrder) TechnicianID() string      { return w.technicianID }
func (w WorkOrder) EstimatedStart() time.Time { return w.estimatedStart }
func (w WorkOrder) EstimatedEnd() time.Time   { return w.estimatedEnd }
func (w WorkOrder) Status() WorkOrderStatus   { return w.status }

func (w WorkOrder) ActualStart() *time.Time {
	if w.actualStart == nil {
		return nil
	}
	t := *w.actualStart
	return &t
}

func (w WorkOrder) ActualEnd() *time.Time {
	if w.actualEnd == nil {
		return nil
	}
	t := *w.actualEnd
	return &t
}

// TrackingEntry mirrors the request tracking audit for appointments.
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

// Schedule creates a new appointment for a request. start must already
// respect the configured minimum lead time; the application layer
// computes it from the issue's estimated duration.
func Schedule(requestID string, start, end time.Time, note string, actor shared.Actor) (*Appointment, error) {
	if requestID == "" {
		return nil, shared.NewValidationError("appointment", "request_id", "request is required")
	}
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate appointment ID: %w", err)
	}

	now := time.Now()
	a := &Appointment{
		id:        id.String(),
		requestID: requestID,
		start:     start,
		end:       end,
		note:      note,
		status:    StatusPending,
		version:   0,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
		isNew:     true,
	}
	a.appendTracking(StatusPending, note, actor)
	a.events = append(a.events, NewAppointmentScheduledEvent(a.id, requestID, start, end))

	return a, nil
}

func (a *Appointment) transition(to Status, note string, actor shared.Actor) error {
	if !CanTransition(a.status, to) {
		return newInvalidTransition(a.status, to)
	}
	a.status = to
	a.updatedAt = time.Now()
	a.appendTracking(to, note, actor)
	return nil
}

// AssignTechnicians creates one Pending work order per technician and
// moves the appointment to Assigned. required is the issue's technician
// headcount; supplying fewer fails with InsufficientTechnicians.
func (a *Appointment) AssignTechnicians(technicianIDs []string, required int, actor shared.Actor) error {
	if len(technicianIDs) < required {
		return NewInsufficientTechniciansError(a.id, len(technicianIDs), required)
	}
	seen := make(map[string]bool, len(technicianIDs))
	for _, techID := range technicianIDs {
		if seen[techID] {
			return ErrDuplicateTechnician
		}
		seen[techID] = true
		for _, wo := range a.workOrders {
			if wo.technicianID == techID && wo.status != WorkOrderCancelled {
				return ErrDuplicateTechnician
			}
		}
	}
	if err := a.transition(StatusAssigned, "", actor); err != nil {
		return err
	}

	for _, techID := range technicianIDs {
		wo := WorkOrder{
			id:             uuid.NewString(),
			technicianID:   techID,
			estimatedStart: a.start,
			estimatedEnd:   a.end,
			status:         WorkOrderPending,
		}
		a.workOrders = append(a.workOrders, wo)
		if !a.isNew {
			a.addedWorkOrders = append(a.addedWorkOrders, wo)
		}
	}
	a.events = append(a.events, NewTechniciansAssignedEvent(a.id, a.requestID, technicianIDs))
	return nil
}

// Confirm records resident/lead confirmation of the window.
func (a *Appointment) Confirm(actor shared.Actor) error {
	return a.transition(StatusConfirmed, "", actor)
}

// StartVisit moves the appointment into the on-site visit phase.
func (a *Appointment) StartVisit(actor shared.Actor) error {
	return a.transition(StatusInVisit, "", actor)
}

// StartRepair moves the appointment into the repair phase.
func (a *Appointment) StartRepair(actor shared.Actor) error {
	return a.transition(StatusInRepair, "", actor)
}

// Complete closes the appointment. Work orders still marked Working are
// completed alongside; the lead's explicit action is authoritative.
func (a *Appointment) Complete(actor shared.Actor) error {
	if err := a.transition(StatusCompleted, "", actor); err != nil {
		return err
	}
	now := time.Now()
	for i := range a.workOrders {
		if a.workOrders[i].status == WorkOrderWorking {
			a.workOrders[i].status = WorkOrderCompleted
			a.workOrders[i].actualEnd = &now
			a.markWorkOrderDirty(a.workOrders[i])
		}
	}
	a.events = append(a.events, NewAppointmentCompletedEvent(a.id, a.requestID))
	return nil
}

// Cancel aborts the appointment and every non-terminal work order.
func (a *Appointment) Cancel(reason string, actor shared.Actor) error {
	if err := a.transition(StatusCancelled, reason, actor); err != nil {
		return err
	}
	for i := range a.workOrders {
		switch a.workOrders[i].status {
		case WorkOrderPending, WorkOrderWorking:
			a.workOrders[i].status = WorkOrderCancelled
			a.markWorkOrderDirty(a.workOrders[i])
		}
	}
	a.events = append(a.events, NewAppointmentCancelledEvent(a.id, a.requestID, reason))
	return nil
}

// StartWork advances one technician's work order to Working and stamps
// the actual start time.
func (a *Appointment) StartWork(technicianID string) error {
	idx := a.findWorkOrder(technicianID)
	if idx < 0 {
		return ErrWorkOrderNotFound
	}
	wo := &a.workOrders[idx]
	if !CanTransitionWorkOrder(wo.status, WorkOrderWorking) {
		return newInvalidWorkOrderTransition(wo.status, WorkOrderWorking)
	}
	now := time.Now()
	wo.status = WorkOrderWorking
	wo.actualStart = &now
	a.markWorkOrderDirty(*wo)
	a.updatedAt = now
	return nil
}

// CompleteWork advances one technician's work order to Completed and
// stamps the actual end time. The appointment phase is unaffected.
func (a *Appointment) CompleteWork(technicianID string) error {
	idx := a.findWorkOrder(technicianID)
	if idx < 0 {
		return ErrWorkOrderNotFound
	}
	wo := &a.workOrders[idx]
	if !CanTransitionWorkOrder(wo.status, WorkOrderCompleted) {
		return newInvalidWorkOrderTransition(wo.status, WorkOrderCompleted)
	}
	now := time.Now()
	wo.status = WorkOrderCompleted
	wo.actualEnd = &now
	a.markWorkOrderDirty(*wo)
	a.updatedAt = now
	return nil
}

func (a *Appointment) findWorkOrder(technicianID string) int {
	for i, wo := range a.workOrders {
		if wo.technicianID == technicianID && wo.status != WorkOrderCancelled {
			return i
		}
	}
	return -1
}

func (a *Appointment) markWorkOrderDirty(wo WorkOrder) {
	if a.isNew {
		return
	}
	for i, added := range a.addedWorkOrders {
		if added.id == wo.id {
			a.addedWorkOrders[i] = wo
			return
		}
	}
	for i, dirty := range a.dirtyWorkOrders {
		if dirty.id == wo.id {
			a.dirtyWorkOrders[i] = wo
			return
		}
	}
	a.dirtyWorkOrders = append(a.dirtyWorkOrders, wo)
}

func (a *Appointment) appendTracking(status Status, note string, actor shared.Actor) {
	entry := TrackingEntry{
		id:         uuid.NewString(),
		status:     status,
		note:       note,
		actorID:    actor.ID,
		actorRole:  actor.Role,
		recordedAt: time.Now(),
	}
	a.tracking = append(a.tracking, entry)
	a.addedTracking = append(a.addedTracking, entry)
}

// IsTechnicianAssigned reports whether technicianID holds an active work
// order on this appointment.
func (a *Appointment) IsTechnicianAssigned(technicianID string) bool {
	return a.findWorkOrder(technicianID) >= 0
}

// Getters.

func (a *Appointment) ID() string           { return a.id }
func (a *Appointment) RequestID() string    { return a.requestID }
func (a *Appointment) Start() time.Time     { return a.start }
func (a *Appointment) End() time.Time       { return a.end }
func (a *Appointment) Note() string         { return a.note }
func (a *Appointment) Status() Status       { return a.status }
func (a *Appointment) Version() int         { return a.version }
func (a *Appointment) CreatedAt() time.Time { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time { return a.updatedAt }

// WorkOrders returns a copy of the work orders.
func (a *Appointment) WorkOrders() []WorkOrder {
	orders := make([]WorkOrder, len(a.workOrders))
	copy(orders, a.workOrders)
	return orders
}

// Tracking returns a copy of the audit trail.
func (a *Appointment) Tracking() []TrackingEntry {
	entries := make([]TrackingEntry, len(a.tracking))
	copy(entries, a.tracking)
	return entries
}

// Persistence support.

func (a *Appointment) IsNew() bool { return a.isNew }

// AddedWorkOrders returns work orders created since load (insert).
func (a *Appointment) AddedWorkOrders() []WorkOrder {
	orders := make([]WorkOrder, len(a.addedWorkOrders))
	copy(orders, a.addedWorkOrders)
	return orders
}

// DirtyWorkOrders returns pre-existing work orders mutated since load
// (update).
func (a *Appointment) DirtyWorkOrders() []WorkOrder {
	orders := make([]WorkOrder, len(a.dirtyWorkOrders))
	copy(orders, a.dirtyWorkOrders)
	return orders
}

// AddedTracking returns audit rows appended since load (insert only).
func (a *Appointment) AddedTracking() []TrackingEntry {
	entries := make([]TrackingEntry, len(a.addedTracking))
	copy(entries, a.addedTracking)
	return entries
}

func (a *Appointment) IncrementVersionForSave() {
	a.version++
}

func (a *Appointment) ClearDirtyTracking() {
	a.addedWorkOrders = nil
	a.dirtyWorkOrders = nil
	a.addedTracking = nil
	a.isNew = false
}

func (a *Appointment) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(a.events))
	copy(events, a.events)
	a.events = a.events[:0]
	return events
}

// ReconstructionDTO rebuilds the aggregate from storage; repository use
// only.
type ReconstructionDTO struct {
	ID         string
	RequestID  string
	Start      time.Time
	End        time.Time
	Note       string
	Status     Status
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	WorkOrders []WorkOrder
	Tracking   []TrackingEntry
}

// Rebuild reconstructs an Appointment from persisted state.
func Rebuild(dto ReconstructionDTO) *Appointment {
	return &Appointment{
		id:         dto.ID,
		requestID:  dto.RequestID,
		start:      dto.Start,
		end:        dto.End,
		note:       dto.Note,
		status:     dto.Status,
		version:    dto.Version,
		createdAt:  dto.CreatedAt,
		updatedAt:  dto.UpdatedAt,
		workOrders: dto.WorkOrders,
		tracking:   dto.Tracking,
	}
}

// WorkOrderReconstructionDTO rebuilds one work order from storage.
type WorkOrderReconstructionDTO struct {
	ID             string
	TechnicianID   string
	EstimatedStart time.Time
	EstimatedEnd   time.Time
	ActualStart    *time.Time
	ActualEnd      *time.Time
	Status         WorkOrderStatus
}

// RebuildWorkOrder reconstructs a WorkOrder from persisted state.
func RebuildWorkOrder(dto WorkOrderReconstructionDTO) WorkOrder {
	return WorkOrder{
		id:             dto.ID,
		technicianID:   dto.TechnicianID,
		estimatedStart: dto.EstimatedStart,
		estimatedEnd:   dto.EstimatedEnd,
		actualStart:    dto.ActualStart,
		actualEnd:      dto.ActualEnd,
		status:         dto.Status,
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

var _ shared.AggregateRoot = (*Appointment)(nil)
