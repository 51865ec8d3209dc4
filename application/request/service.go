/*
Package request Application Layer - Repair Request Process Orchestration

Responsibilities of Application Layer:
1. Receive external requests (usually from Controller)
2. Call domain services for business rule validation
3. Call aggregate root methods to execute business operations
4. Use UoW to manage transactions and event collection (Outbox pattern)
5. Return results to caller

Important: Application services do not directly publish events!
- UoW collects events from aggregates and saves to outbox table before commit
- The outbox worker reads the table asynchronously and relays to subscribers
- This ensures atomicity of events and business data
*/
package request

import (
	"context"
	"time"

	"maintdesk/config"
	"maintdesk/domain/appointment"
	"maintdesk/domain/billing"
	"maintdesk/domain/report"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
)

// reconcileActor stamps transitions driven by the reconciliation guard
// rather than a human caller.
var reconcileActor = shared.Actor{ID: "system", Role: shared.RoleAdmin}

// ApplicationService Repair request application service - coordinates
// the request lifecycle across appointments, reports and invoices
type ApplicationService struct {
	requestRepo     request.Repository
	feedbackRepo    request.FeedbackRepository
	appointmentRepo appointment.Repository
	reportRepo      report.Repository
	invoiceRepo     billing.InvoiceRepository
	domainService   *request.DomainService
	uowFactory      shared.UnitOfWorkFactory
	scheduling      config.SchedulingConfig
}

// NewApplicationService Create repair request application service
func NewApplicationService(
	requestRepo request.Repository,
	feedbackRepo request.FeedbackRepository,
	appointmentRepo appointment.Repository,
	reportRepo report.Repository,
	invoiceRepo billing.InvoiceRepository,
	uowFactory shared.UnitOfWorkFactory,
	scheduling config.SchedulingConfig,
) *ApplicationService {
	return &ApplicationService{
		requestRepo:     requestRepo,
		feedbackRepo:    feedbackRepo,
		appointmentRepo: appointmentRepo,
		reportRepo:      reportRepo,
		invoiceRepo:     invoiceRepo,
		domainService:   request.NewDomainService(requestRepo),
		uowFactory:      uowFactory,
		scheduling:      scheduling,
	}
}

// SubmitRequest Submit a new repair request
// Validates the parent link against persisted ancestors inside the same
// transaction that inserts the request
func (s *ApplicationService) SubmitRequest(ctx context.Context, cmd SubmitRequestCommand) (*RequestResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	origin, ok := request.ParseOrigin(cmd.Origin)
	if !ok {
		return nil, shared.NewValidationError("request", "origin", "unknown origin")
	}

	var req *request.RepairRequest
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		req, err = request.Submit(request.SubmitOptions{
			RequesterID:           cmd.RequesterID,
			Origin:                origin,
			ApartmentID:           cmd.ApartmentID,
			CommonAreaObjectID:    cmd.CommonAreaObjectID,
			MaintenanceScheduleID: cmd.MaintenanceScheduleID,
			IssueID:               cmd.IssueID,
			ParentRequestID:       cmd.ParentRequestID,
			Emergency:             cmd.Emergency,
			Note:                  cmd.Note,
		}, actor)
		if err != nil {
			return err
		}

		if err := s.domainService.ValidateParent(ctx, req.ID(), cmd.ParentRequestID); err != nil {
			return err
		}

		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}

		uow.Register(req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRequestResponse(req), nil
}

// TriageRequest Resolve a Pending or WaitingManagerApproval request
// Approval that lands the request in Approved schedules the visit
// appointment in the same transaction
func (s *ApplicationService) TriageRequest(ctx context.Context, cmd TriageCommand) (*RequestResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var req *request.RepairRequest
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		req, err = s.requestRepo.FindByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}

		if err := req.Triage(cmd.Approve, cmd.Note, actor); err != nil {
			return err
		}
		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}
		uow.Register(req)

		if req.Status() == request.StatusApproved {
			return s.scheduleAppointment(ctx, uow, req, actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRequestResponse(req), nil
}

// scheduleAppointment books the visit window off the configured lead
// time once a request is approved.
func (s *ApplicationService) scheduleAppointment(ctx context.Context, uow shared.UnitOfWork, req *request.RepairRequest, actor shared.Actor) error {
	start := time.Now().Add(s.scheduling.LeadTime)
	end := start.Add(s.scheduling.DefaultDuration)

	appt, err := appointment.Schedule(req.ID(), start, end, "", actor)
	if err != nil {
		return err
	}
	if err := s.appointmentRepo.Save(ctx, appt); err != nil {
		return err
	}
	uow.Register(appt)
	return nil
}

// EscalateRequest Send a Pending request to the manager explicitly
func (s *ApplicationService) EscalateRequest(ctx context.Context, cmd EscalateCommand) (*RequestResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var req *request.RepairRequest
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		req, err = s.requestRepo.FindByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		if err := req.Escalate(cmd.Note, actor); err != nil {
			return err
		}
		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}
		uow.Register(req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRequestResponse(req), nil
}

// CancelRequest Abort a request before work starts
// Cascades the cancellation to the open appointment, which in turn
// cancels its work orders
func (s *ApplicationService) CancelRequest(ctx context.Context, cmd CancelCommand) (*RequestResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var req *request.RepairRequest
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		req, err = s.requestRepo.FindByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		if err := req.Cancel(cmd.Reason, actor); err != nil {
			return err
		}
		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}
		uow.Register(req)

		appt, err := s.appointmentRepo.FindOpenByRequestID(ctx, req.ID())
		if err != nil {
			return err
		}
		if appt != nil {
			if err := appt.Cancel(cmd.Reason, actor); err != nil {
				return err
			}
			if err := s.appointmentRepo.Save(ctx, appt); err != nil {
				return err
			}
			uow.Register(appt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRequestResponse(req), nil
}

// VerifyAcceptance Complete a request awaiting the requester's sign-off
func (s *ApplicationService) VerifyAcceptance(ctx context.Context, cmd VerifyAcceptanceCommand) (*RequestResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var req *request.RepairRequest
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		req, err = s.requestRepo.FindByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		if err := req.VerifyAcceptance(actor); err != nil {
			return err
		}
		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}
		uow.Register(req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRequestResponse(req), nil
}

// GetRequest Get one request with its tracking trail
func (s *ApplicationService) GetRequest(ctx context.Context, requestID string) (*RequestResponse, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(req), nil
}

// GetRequesterRequests List a requester's requests, newest first
func (s *ApplicationService) GetRequesterRequests(ctx context.Context, requesterID string) ([]*RequestResponse, error) {
	requests, err := s.requestRepo.FindByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	responses := make([]*RequestResponse, len(requests))
	for i, req := range requests {
		responses[i] = toRequestResponse(req)
	}
	return responses, nil
}

// AddFeedback Record a rating against a completed request
func (s *ApplicationService) AddFeedback(ctx context.Context, cmd AddFeedbackCommand) (*FeedbackResponse, error) {
	req, err := s.requestRepo.FindByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status() != request.StatusCompleted {
		return nil, shared.NewValidationError("feedback", "request_id", "request is not completed")
	}

	if cmd.ParentFeedbackID != "" {
		if err := s.validateParentFeedback(ctx, cmd.RequestID, cmd.ParentFeedbackID); err != nil {
			return nil, err
		}
	}

	fb, err := request.NewFeedback(cmd.RequestID, cmd.AuthorID, cmd.ParentFeedbackID, cmd.Comment, cmd.Rating)
	if err != nil {
		return nil, err
	}
	if err := s.feedbackRepo.Save(ctx, fb); err != nil {
		return nil, err
	}

	return toFeedbackResponse(fb), nil
}

func (s *ApplicationService) validateParentFeedback(ctx context.Context, requestID, parentFeedbackID string) error {
	siblings, err := s.feedbackRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	for _, fb := range siblings {
		if fb.ID() == parentFeedbackID {
			return nil
		}
	}
	return shared.NewValidationError("feedback", "parent_feedback_id", "parent feedback not found on this request")
}

// ListFeedback List feedback recorded against a request
func (s *ApplicationService) ListFeedback(ctx context.Context, requestID string) ([]*FeedbackResponse, error) {
	feedbacks, err := s.feedbackRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	responses := make([]*FeedbackResponse, len(feedbacks))
	for i, fb := range feedbacks {
		responses[i] = toFeedbackResponse(fb)
	}
	return responses, nil
}

// ReconcileRequest Advance one InProgress request whose downstream work
// has settled. Idempotent: a request that is not ready is left alone
// and (false, nil) is returned.
func (s *ApplicationService) ReconcileRequest(ctx context.Context, requestID string) (bool, error) {
	advanced := false
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		req, err := s.requestRepo.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status() != request.StatusInProgress {
			return nil
		}

		ready, err := s.readyForAcceptance(ctx, req)
		if err != nil || !ready {
			return err
		}

		if err := req.AdvanceToAcceptance(reconcileActor); err != nil {
			return err
		}
		if err := s.requestRepo.Save(ctx, req); err != nil {
			return err
		}
		uow.Register(req)
		advanced = true
		return nil
	})
	return advanced, err
}

// ReconcileInProgress Sweep InProgress requests and advance the ready
// ones. Used by the worker's periodic reconciler.
func (s *ApplicationService) ReconcileInProgress(ctx context.Context, batchSize int) (int, error) {
	requests, err := s.requestRepo.FindByStatus(ctx, request.StatusInProgress, batchSize)
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, req := range requests {
		ok, err := s.ReconcileRequest(ctx, req.ID())
		if err != nil {
			return advanced, err
		}
		if ok {
			advanced++
		}
	}
	return advanced, nil
}

// readyForAcceptance checks the settlement guard: repair report
// terminally approved, its appointment completed and, for chargeable
// work, every invoice paid.
func (s *ApplicationService) readyForAcceptance(ctx context.Context, req *request.RepairRequest) (bool, error) {
	reports, err := s.reportRepo.FindByRequestID(ctx, req.ID())
	if err != nil {
		return false, err
	}

	var repairReport *report.Report
	for _, rep := range reports {
		if rep.Kind() == report.KindRepair && rep.IsFinalized() {
			repairReport = rep
		}
	}
	if repairReport == nil {
		return false, nil
	}

	appt, err := s.appointmentRepo.FindByID(ctx, repairReport.AppointmentID())
	if err != nil {
		return false, err
	}
	if appt.Status() != appointment.StatusCompleted {
		return false, nil
	}

	invoices, err := s.invoiceRepo.FindByRequestID(ctx, req.ID())
	if err != nil {
		return false, err
	}
	paid := 0
	for _, inv := range invoices {
		switch inv.Status() {
		case billing.InvoiceStatusCancelled:
			continue
		case billing.InvoiceStatusPaid:
			paid++
		default:
			return false, nil
		}
	}
	if req.Chargeable() && paid == 0 {
		return false, nil
	}
	return true, nil
}
