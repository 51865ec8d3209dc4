package appointment

import (
	"time"

	"maintdesk/domain/shared"
)

type AppointmentScheduledEvent struct{ shared.BaseEvent }

func NewAppointmentScheduledEvent(appointmentID, requestID string, start, end time.Time) *AppointmentScheduledEvent {
	return &AppointmentScheduledEvent{shared.NewBaseEvent("appointment.scheduled", appointmentID, map[string]any{
		"request_id": requestID,
		"start":      start,
		"end":        end,
	})}
}

type TechniciansAssignedEvent struct{ shared.BaseEvent }

func NewTechniciansAssignedEvent(appointmentID, requestID string, technicianIDs []string) *TechniciansAssignedEvent {
	return &TechniciansAssignedEvent{shared.NewBaseEvent("appointment.technicians_assigned", appointmentID, map[string]any{
		"request_id":     requestID,
		"technician_ids": technicianIDs,
	})}
}

type AppointmentCompletedEvent struct{ shared.BaseEvent }

func NewAppointmentCompletedEvent(appointmentID, requestID string) *AppointmentCompletedEvent {
	return &AppointmentCompletedEvent{shared.NewBaseEvent("appointment.completed", appointmentID, map[string]any{
		"request_id": requestID,
	})}
}

type AppointmentCancelledEvent struct{ shared.BaseEvent }

func NewAppointmentCancelledEvent(appointmentID, requestID, reason string) *AppointmentCancelledEvent {
	return &AppointmentCancelledEvent{shared.NewBaseEvent("appointment.cancelled", appointmentID, map[string]any{
		"request_id": requestID,
		"reason":     reason,
	})}
}
