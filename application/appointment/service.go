// Package appointment Application Layer - visit scheduling and
// technician assignment orchestration.
package appointment

import (
	"context"
	"time"

	"maintdesk/domain/advisor"
	"maintdesk/domain/appointment"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
)

// RosterEntry is one technician's shift facts for a window, as supplied
// by the external roster collaborator.
type RosterEntry struct {
	TechnicianID      string
	Techniques        []string
	ScheduledInWindow bool
}

// Roster answers "who is on shift during this window". Production wires
// the facility's shift system behind it; tests use a fixture.
type Roster interface {
	TechniciansFor(ctx context.Context, window appointment.Window) ([]RosterEntry, error)
}

// ApplicationService Appointment application service - coordinates the
// visit lifecycle and advisor-backed technician assignment
type ApplicationService struct {
	appointmentRepo appointment.Repository
	requestRepo     request.Repository
	roster          Roster
	uowFactory      shared.UnitOfWorkFactory
}

// NewApplicationService Create appointment application service
func NewApplicationService(
	appointmentRepo appointment.Repository,
	requestRepo request.Repository,
	roster Roster,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		appointmentRepo: appointmentRepo,
		requestRepo:     requestRepo,
		roster:          roster,
		uowFactory:      uowFactory,
	}
}

// GetAppointment Get one appointment with its work orders and tracking
func (s *ApplicationService) GetAppointment(ctx context.Context, appointmentID string) (*AppointmentResponse, error) {
	appt, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

// GetOpenAppointmentForRequest Get the request's open appointment, if
// any
func (s *ApplicationService) GetOpenAppointmentForRequest(ctx context.Context, requestID string) (*AppointmentResponse, error) {
	appt, err := s.appointmentRepo.FindOpenByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, appointment.NewAppointmentNotFoundError(requestID)
	}
	return toAppointmentResponse(appt), nil
}

// RecommendTechnicians Rank roster candidates for an appointment's
// window. Read-only: assignment is a separate explicit step.
func (s *ApplicationService) RecommendTechnicians(ctx context.Context, cmd RecommendCommand) ([]RecommendationResponse, error) {
	appt, err := s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
	if err != nil {
		return nil, err
	}

	window := appointment.Window{Start: appt.Start(), End: appt.End()}
	candidates, err := s.buildCandidates(ctx, window)
	if err != nil {
		return nil, err
	}

	ranked := advisor.Rank(window, cmd.Technique, candidates)
	responses := make([]RecommendationResponse, len(ranked))
	for i, r := range ranked {
		responses[i] = RecommendationResponse{
			TechnicianID:     r.TechnicianID,
			DayAssignments:   r.DayAssignments,
			MonthAssignments: r.MonthAssignments,
		}
	}
	return responses, nil
}

// buildCandidates joins roster shift facts with committed assignment
// load from the appointment store.
func (s *ApplicationService) buildCandidates(ctx context.Context, window appointment.Window) ([]advisor.Candidate, error) {
	entries, err := s.roster.TechniciansFor(ctx, window)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, window.Start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(window.Start.Year(), window.Start.Month(), 1, 0, 0, 0, 0, window.Start.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	candidates := make([]advisor.Candidate, 0, len(entries))
	for _, entry := range entries {
		dayCount, err := s.appointmentRepo.CountAssignmentsInRange(ctx, entry.TechnicianID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		monthCount, err := s.appointmentRepo.CountAssignmentsInRange(ctx, entry.TechnicianID, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		dayWindows, err := s.appointmentRepo.FindWindowsForTechnician(ctx, entry.TechnicianID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, advisor.Candidate{
			TechnicianID:      entry.TechnicianID,
			Techniques:        entry.Techniques,
			ScheduledInWindow: entry.ScheduledInWindow,
			DayAssignments:    dayCount,
			MonthAssignments:  monthCount,
			DayWindows:        dayWindows,
		})
	}
	return candidates, nil
}

// AssignTechnicians Create work orders for the chosen technicians
func (s *ApplicationService) AssignTechnicians(ctx context.Context, cmd AssignTechniciansCommand) (*AppointmentResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var appt *appointment.Appointment
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		appt, err = s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if err := appt.AssignTechnicians(cmd.TechnicianIDs, cmd.Required, actor); err != nil {
			return err
		}
		if err := s.appointmentRepo.Save(ctx, appt); err != nil {
			return err
		}
		uow.Register(appt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

// AdvancePhase Move the appointment through its visit phases. Starting
// the visit also marks the owning request InProgress in the same
// transaction.
func (s *ApplicationService) AdvancePhase(ctx context.Context, cmd AdvancePhaseCommand) (*AppointmentResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var appt *appointment.Appointment
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		appt, err = s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}

		switch appointment.Status(cmd.Phase) {
		case appointment.StatusConfirmed:
			err = appt.Confirm(actor)
		case appointment.StatusInVisit:
			err = appt.StartVisit(actor)
		case appointment.StatusInRepair:
			err = appt.StartRepair(actor)
		case appointment.StatusCompleted:
			err = appt.Complete(actor)
		default:
			err = shared.NewValidationError("appointment", "phase", "unknown phase")
		}
		if err != nil {
			return err
		}

		if err := s.appointmentRepo.Save(ctx, appt); err != nil {
			return err
		}
		uow.Register(appt)

		if appt.Status() == appointment.StatusInVisit {
			return s.markRequestInProgress(ctx, uow, appt.RequestID(), actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

func (s *ApplicationService) markRequestInProgress(ctx context.Context, uow shared.UnitOfWork, requestID string, actor shared.Actor) error {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := req.MarkInProgress(actor); err != nil {
		return err
	}
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return err
	}
	uow.Register(req)
	return nil
}

// CancelAppointment Abort the appointment and its open work orders
func (s *ApplicationService) CancelAppointment(ctx context.Context, cmd CancelAppointmentCommand) (*AppointmentResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var appt *appointment.Appointment
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		appt, err = s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if err := appt.Cancel(cmd.Reason, actor); err != nil {
			return err
		}
		if err := s.appointmentRepo.Save(ctx, appt); err != nil {
			return err
		}
		uow.Register(appt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}

// StartWork Stamp one technician's work order as started
func (s *ApplicationService) StartWork(ctx context.Context, cmd WorkOrderCommand) (*AppointmentResponse, error) {
	return s.updateWorkOrder(ctx, cmd, func(appt *appointment.Appointment) error {
		return appt.StartWork(cmd.TechnicianID)
	})
}

// CompleteWork Stamp one technician's work order as finished
func (s *ApplicationService) CompleteWork(ctx context.Context, cmd WorkOrderCommand) (*AppointmentResponse, error) {
	return s.updateWorkOrder(ctx, cmd, func(appt *appointment.Appointment) error {
		return appt.CompleteWork(cmd.TechnicianID)
	})
}

func (s *ApplicationService) updateWorkOrder(ctx context.Context, cmd WorkOrderCommand, op func(*appointment.Appointment) error) (*AppointmentResponse, error) {
	var appt *appointment.Appointment
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if err := op(appt); err != nil {
			return err
		}
		if err := s.appointmentRepo.Save(ctx, appt); err != nil {
			return err
		}
		uow.Register(appt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAppointmentResponse(appt), nil
}
