// Package report Application Layer - inspection/repair report filing
// and the role-ordered approval chain.
package report

import (
	"context"

	"maintdesk/domain/appointment"
	"maintdesk/domain/billing"
	"maintdesk/domain/report"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
)

// ApplicationService Report application service - files reports against
// appointments and walks the approval chain. Submitting an inspection
// report drafts the settlement invoice in the same transaction.
type ApplicationService struct {
	reportRepo      report.Repository
	requestRepo     request.Repository
	appointmentRepo appointment.Repository
	invoiceRepo     billing.InvoiceRepository
	uowFactory      shared.UnitOfWorkFactory
}

// NewApplicationService Create report application service
func NewApplicationService(
	reportRepo report.Repository,
	requestRepo request.Repository,
	appointmentRepo appointment.Repository,
	invoiceRepo billing.InvoiceRepository,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		reportRepo:      reportRepo,
		requestRepo:     requestRepo,
		appointmentRepo: appointmentRepo,
		invoiceRepo:     invoiceRepo,
		uowFactory:      uowFactory,
	}
}

// SubmitInspection File the inspection report for an appointment and
// draft the invoice its solution type selects
func (s *ApplicationService) SubmitInspection(ctx context.Context, cmd SubmitInspectionCommand) (*ReportResponse, error) {
	faultOwner, ok := report.ParseFaultOwner(cmd.FaultOwner)
	if !ok {
		return nil, shared.NewValidationError("report", "fault_owner", "unknown fault owner")
	}
	solutionType, ok := report.ParseSolutionType(cmd.SolutionType)
	if !ok {
		return nil, shared.NewValidationError("report", "solution_type", "unknown solution type")
	}

	var rep *report.Report
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		appt, err := s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		req, err := s.requestRepo.FindByID(ctx, appt.RequestID())
		if err != nil {
			return err
		}

		rep, err = report.SubmitInspection(report.InspectionOptions{
			AppointmentID:  appt.ID(),
			RequestID:      req.ID(),
			AuthorID:       cmd.AuthorID,
			Description:    cmd.Description,
			Solution:       cmd.Solution,
			FaultOwner:     faultOwner,
			SolutionType:   solutionType,
			ResidentFacing: req.Origin() == request.OriginResident,
		})
		if err != nil {
			return err
		}
		if err := s.reportRepo.Save(ctx, rep); err != nil {
			return err
		}
		uow.Register(rep)

		return s.draftInvoice(ctx, uow, req, rep)
	})
	if err != nil {
		return nil, err
	}

	return toReportResponse(rep), nil
}

// draftInvoice opens the settlement invoice selected by the inspection
// verdict: in-house work bills as internal repair, outsourced work as
// external contractor. The request origin only sets the default;
// the inspector's fault owner has the final word on chargeability,
// so a building fault absorbs the cost even on a resident request.
func (s *ApplicationService) draftInvoice(ctx context.Context, uow shared.UnitOfWork, req *request.RepairRequest, rep *report.Report) error {
	invoiceType := billing.InvoiceTypeInternalRepair
	if rep.SolutionType() == report.SolutionOutsource {
		invoiceType = billing.InvoiceTypeExternalContractor
	}
	chargeable := req.Chargeable() && rep.FaultOwner() == report.FaultResident

	inv, err := billing.NewDraft(req.ID(), rep.ID(), chargeable, invoiceType)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return err
	}
	uow.Register(inv)
	return nil
}

// SubmitRepair File the repair report for an appointment
func (s *ApplicationService) SubmitRepair(ctx context.Context, cmd SubmitRepairCommand) (*ReportResponse, error) {
	var rep *report.Report
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		appt, err := s.appointmentRepo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		req, err := s.requestRepo.FindByID(ctx, appt.RequestID())
		if err != nil {
			return err
		}

		rep, err = report.SubmitRepair(appt.ID(), req.ID(), cmd.AuthorID, cmd.Description, req.Origin() == request.OriginResident)
		if err != nil {
			return err
		}
		if err := s.reportRepo.Save(ctx, rep); err != nil {
			return err
		}
		uow.Register(rep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toReportResponse(rep), nil
}

// RecordApproval Append one approver's verdict and advance the chain
func (s *ApplicationService) RecordApproval(ctx context.Context, cmd RecordApprovalCommand) (*ReportResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}
	decision, ok := report.ParseDecision(cmd.Decision)
	if !ok {
		return nil, shared.NewValidationError("report", "decision", "unknown decision")
	}

	var rep *report.Report
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		rep, err = s.reportRepo.FindByID(ctx, cmd.ReportID)
		if err != nil {
			return err
		}
		if err := rep.RecordApproval(actor, decision, cmd.Comment); err != nil {
			return err
		}
		if err := s.reportRepo.Save(ctx, rep); err != nil {
			return err
		}
		uow.Register(rep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toReportResponse(rep), nil
}

// ReworkReport Replace the narrative of a report sent back by a
// rejection, before any new approvals land
func (s *ApplicationService) ReworkReport(ctx context.Context, cmd ReworkCommand) (*ReportResponse, error) {
	var rep *report.Report
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		rep, err = s.reportRepo.FindByID(ctx, cmd.ReportID)
		if err != nil {
			return err
		}
		if err := rep.Rework(cmd.Description, cmd.Solution); err != nil {
			return err
		}
		if err := s.reportRepo.Save(ctx, rep); err != nil {
			return err
		}
		uow.Register(rep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toReportResponse(rep), nil
}

// GetReport Get one report with its approval trail
func (s *ApplicationService) GetReport(ctx context.Context, reportID string) (*ReportResponse, error) {
	rep, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return toReportResponse(rep), nil
}

// GetRequestReports List every report filed over a request's lifetime
func (s *ApplicationService) GetRequestReports(ctx context.Context, requestID string) ([]*ReportResponse, error) {
	reports, err := s.reportRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	responses := make([]*ReportResponse, len(reports))
	for i, rep := range reports {
		responses[i] = toReportResponse(rep)
	}
	return responses, nil
}
