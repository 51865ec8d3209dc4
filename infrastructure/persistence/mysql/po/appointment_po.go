package po

import (
	"time"

	"maintdesk/domain/appointment"
	"maintdesk/domain/shared"
)

// AppointmentPO persistence object for the appointments table.
type AppointmentPO struct {
	ID        string    `gorm:"primaryKey;size:64"`
	RequestID string    `gorm:"size:64;index;not null"`
	Start     time.Time `gorm:"column:start_time;index;not null"`
	End       time.Time `gorm:"column:end_time;not null"`
	Note      string    `gorm:"size:500"`
	Status    string    `gorm:"size:20;index;not null"`
	Version   int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AppointmentPO) TableName() string {
	return "appointments"
}

// WorkOrderPO persistence object for the appointment_work_orders table.
type WorkOrderPO struct {
	ID             string     `gorm:"primaryKey;size:128"`
	AppointmentID  string     `gorm:"size:64;index;not null"`
	TechnicianID   string     `gorm:"size:64;index;not null"`
	EstimatedStart time.Time  `gorm:"not null"`
	EstimatedEnd   time.Time  `gorm:"not null"`
	ActualStart    *time.Time `gorm:""`
	ActualEnd      *time.Time `gorm:""`
	Status         string     `gorm:"size:20;not null"`
}

func (WorkOrderPO) TableName() string {
	return "appointment_work_orders"
}

// AppointmentTrackingPO persistence object for the appointment_tracking
// audit table. Rows are insert-only.
type AppointmentTrackingPO struct {
	ID            string    `gorm:"primaryKey;size:128"`
	AppointmentID string    `gorm:"size:64;index;not null"`
	Status        string    `gorm:"size:20;not null"`
	Note          string    `gorm:"size:500"`
	ActorID       string    `gorm:"size:64;not null"`
	ActorRole     string    `gorm:"size:20;not null"`
	RecordedAt    time.Time `gorm:"not null"`
}

func (AppointmentTrackingPO) TableName() string {
	return "appointment_tracking"
}

// FromAppointmentDomain converts the aggregate to persistence objects.
// Work orders split into freshly added rows (insert) and dirty rows
// (update); tracking rows are append-only.
func FromAppointmentDomain(a *appointment.Appointment) (*AppointmentPO, []WorkOrderPO, []WorkOrderPO, []AppointmentTrackingPO) {
	appointmentPO := &AppointmentPO{
		ID:        a.ID(),
		RequestID: a.RequestID(),
		Start:     a.Start(),
		End:       a.End(),
		Note:      a.Note(),
		Status:    string(a.Status()),
		Version:   a.Version(),
		CreatedAt: a.CreatedAt(),
		UpdatedAt: a.UpdatedAt(),
	}

	toWorkOrderPO := func(wo appointment.WorkOrder) WorkOrderPO {
		return WorkOrderPO{
			ID:             wo.ID(),
			AppointmentID:  a.ID(),
			TechnicianID:   wo.TechnicianID(),
			EstimatedStart: wo.EstimatedStart(),
			EstimatedEnd:   wo.EstimatedEnd(),
			ActualStart:    wo.ActualStart(),
			ActualEnd:      wo.ActualEnd(),
			Status:         string(wo.Status()),
		}
	}

	var added, dirty []WorkOrderPO
	if a.IsNew() {
		for _, wo := range a.WorkOrders() {
			added = append(added, toWorkOrderPO(wo))
		}
	} else {
		for _, wo := range a.AddedWorkOrders() {
			added = append(added, toWorkOrderPO(wo))
		}
		for _, wo := range a.DirtyWorkOrders() {
			dirty = append(dirty, toWorkOrderPO(wo))
		}
	}

	addedTracking := a.AddedTracking()
	trackingPOs := make([]AppointmentTrackingPO, len(addedTracking))
	for i, entry := range addedTracking {
		trackingPOs[i] = AppointmentTrackingPO{
			ID:            entry.ID(),
			AppointmentID: a.ID(),
			Status:        string(entry.Status()),
			Note:          entry.Note(),
			ActorID:       entry.ActorID(),
			ActorRole:     string(entry.ActorRole()),
			RecordedAt:    entry.RecordedAt(),
		}
	}

	return appointmentPO, added, dirty, trackingPOs
}

// ToDomain converts persistence objects back to the aggregate.
func (po *AppointmentPO) ToDomain(workOrderPOs []WorkOrderPO, trackingPOs []AppointmentTrackingPO) *appointment.Appointment {
	workOrders := make([]appointment.WorkOrder, len(workOrderPOs))
	for i, wo := range workOrderPOs {
		workOrders[i] = appointment.RebuildWorkOrder(appointment.WorkOrderReconstructionDTO{
			ID:             wo.ID,
			TechnicianID:   wo.TechnicianID,
			EstimatedStart: wo.EstimatedStart,
			EstimatedEnd:   wo.EstimatedEnd,
			ActualStart:    wo.ActualStart,
			ActualEnd:      wo.ActualEnd,
			Status:         appointment.WorkOrderStatus(wo.Status),
		})
	}

	tracking := make([]appointment.TrackingEntry, len(trackingPOs))
	for i, t := range trackingPOs {
		tracking[i] = appointment.RebuildTracking(appointment.TrackingReconstructionDTO{
			ID:         t.ID,
			Status:     appointment.Status(t.Status),
			Note:       t.Note,
			ActorID:    t.ActorID,
			ActorRole:  shared.Role(t.ActorRole),
			RecordedAt: t.RecordedAt,
		})
	}

	return appointment.Rebuild(appointment.ReconstructionDTO{
		ID:         po.ID,
		RequestID:  po.RequestID,
		Start:      po.Start,
		End:        po.End,
		Note:       po.Note,
		Status:     appointment.Status(po.Status),
		Version:    po.Version,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
		WorkOrders: workOrders,
		Tracking:   tracking,
	})
}
