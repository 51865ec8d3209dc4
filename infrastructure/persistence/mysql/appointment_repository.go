package mysql

import (
	"context"
	"errors"
	"time"

	"maintdesk/domain/appointment"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// AppointmentRepository MySQL/GORM implementation of the appointment
// repository.
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository Create appointment repository
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the aggregate, its work order changes and its appended
// tracking rows under an optimistic version check.
func (r *AppointmentRepository) Save(ctx context.Context, a *appointment.Appointment) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, a)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, a)
	})
}

func (r *AppointmentRepository) saveWithTx(tx *gorm.DB, a *appointment.Appointment) error {
	appointmentPO, addedOrders, dirtyOrders, trackingPOs := po.FromAppointmentDomain(a)

	if a.IsNew() {
		if err := tx.Create(appointmentPO).Error; err != nil {
			return err
		}
	} else {
		expectedVersion := a.Version()

		result := tx.Model(&po.AppointmentPO{}).
			Where("id = ? AND version = ?", a.ID(), expectedVersion).
			Updates(map[string]interface{}{
				"status":     appointmentPO.Status,
				"version":    expectedVersion + 1,
				"updated_at": appointmentPO.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&po.AppointmentPO{}).Where("id = ?", a.ID()).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return appointment.NewAppointmentNotFoundError(a.ID())
			}
			return appointment.NewConcurrentModificationError(a.ID())
		}

		a.IncrementVersionForSave()
	}

	if len(addedOrders) > 0 {
		if err := tx.Create(&addedOrders).Error; err != nil {
			return err
		}
	}
	for _, wo := range dirtyOrders {
		result := tx.Model(&po.WorkOrderPO{}).
			Where("id = ?", wo.ID).
			Updates(map[string]interface{}{
				"status":       wo.Status,
				"actual_start": wo.ActualStart,
				"actual_end":   wo.ActualEnd,
			})
		if result.Error != nil {
			return result.Error
		}
	}

	if len(trackingPOs) > 0 {
		if err := tx.Create(&trackingPOs).Error; err != nil {
			return err
		}
	}

	a.ClearDirtyTracking()
	return nil
}

// FindByID loads the aggregate with its work orders and tracking trail.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	db := r.getDB(ctx)

	var appointmentPO po.AppointmentPO
	result := db.First(&appointmentPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, appointment.NewAppointmentNotFoundError(id)
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, appointmentPO)
}

// FindOpenByRequestID returns the request's one non-terminal
// appointment, or nil when none is open.
func (r *AppointmentRepository) FindOpenByRequestID(ctx context.Context, requestID string) (*appointment.Appointment, error) {
	db := r.getDB(ctx)

	var appointmentPO po.AppointmentPO
	result := db.Where("request_id = ? AND status NOT IN ?", requestID, []string{
		string(appointment.StatusCompleted),
		string(appointment.StatusCancelled),
	}).First(&appointmentPO)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, appointmentPO)
}

// CountAssignmentsInRange counts a technician's active work orders whose
// appointment window overlaps [from, to). Used by the advisor's load
// facts.
func (r *AppointmentRepository) CountAssignmentsInRange(ctx context.Context, technicianID string, from, to time.Time) (int, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&po.WorkOrderPO{}).
		Joins("JOIN appointments ON appointments.id = appointment_work_orders.appointment_id").
		Where("appointment_work_orders.technician_id = ?", technicianID).
		Where("appointment_work_orders.status NOT IN ?", []string{string(appointment.WorkOrderCancelled)}).
		Where("appointments.start_time < ? AND appointments.end_time >= ?", to, from).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// FindWindowsForTechnician lists a technician's committed appointment
// windows overlapping [from, to).
func (r *AppointmentRepository) FindWindowsForTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]appointment.Window, error) {
	db := r.getDB(ctx)

	var appointmentPOs []po.AppointmentPO
	err := db.Model(&po.AppointmentPO{}).
		Joins("JOIN appointment_work_orders ON appointment_work_orders.appointment_id = appointments.id").
		Where("appointment_work_orders.technician_id = ?", technicianID).
		Where("appointment_work_orders.status NOT IN ?", []string{string(appointment.WorkOrderCancelled)}).
		Where("appointments.start_time < ? AND appointments.end_time >= ?", to, from).
		Order("appointments.start_time ASC").
		Find(&appointmentPOs).Error
	if err != nil {
		return nil, err
	}

	windows := make([]appointment.Window, len(appointmentPOs))
	for i, a := range appointmentPOs {
		windows[i] = appointment.Window{Start: a.Start, End: a.End}
	}
	return windows, nil
}

func (r *AppointmentRepository) loadAggregate(db *gorm.DB, appointmentPO po.AppointmentPO) (*appointment.Appointment, error) {
	var workOrderPOs []po.WorkOrderPO
	if err := db.Where("appointment_id = ?", appointmentPO.ID).Find(&workOrderPOs).Error; err != nil {
		return nil, err
	}

	var trackingPOs []po.AppointmentTrackingPO
	if err := db.Where("appointment_id = ?", appointmentPO.ID).
		Order("recorded_at ASC").
		Find(&trackingPOs).Error; err != nil {
		return nil, err
	}

	return appointmentPO.ToDomain(workOrderPOs, trackingPOs), nil
}

// Compile-time interface implementation check
var _ appointment.Repository = (*AppointmentRepository)(nil)
