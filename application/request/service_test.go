package request

import (
	"context"
	"errors"
	"testing"
	"time"

	appappointment "maintdesk/application/appointment"
	appbilling "maintdesk/application/billing"
	appreport "maintdesk/application/report"
	"maintdesk/config"
	"maintdesk/domain/appointment"
	"maintdesk/domain/billing"
	"maintdesk/domain/request"
	"maintdesk/infrastructure/persistence/mocks"
)

type fixedRoster struct {
	entries []appappointment.RosterEntry
}

func (r *fixedRoster) TechniciansFor(ctx context.Context, window appointment.Window) ([]appappointment.RosterEntry, error) {
	return r.entries, nil
}

// testServices wires the full application layer over in-memory
// repositories so lifecycle flows can run end to end.
type testServices struct {
	requests     *ApplicationService
	appointments *appappointment.ApplicationService
	reports      *appreport.ApplicationService
	billing      *appbilling.ApplicationService
	uowFactory   *mocks.MockUnitOfWorkFactory

	requestRepo   *mocks.MockRequestRepository
	accessoryRepo *mocks.MockAccessoryRepository
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	uowFactory := mocks.NewMockUnitOfWorkFactory()
	requestRepo := mocks.NewMockRequestRepository()
	feedbackRepo := mocks.NewMockFeedbackRepository()
	appointmentRepo := mocks.NewMockAppointmentRepository()
	reportRepo := mocks.NewMockReportRepository()
	invoiceRepo := mocks.NewMockInvoiceRepository()
	transactionRepo := mocks.NewMockTransactionRepository()
	accessoryRepo := mocks.NewMockAccessoryRepository()
	stockTxRepo := mocks.NewMockStockTransactionRepository()

	scheduling := config.SchedulingConfig{
		LeadTime:        24 * time.Hour,
		DefaultDuration: 2 * time.Hour,
	}

	requests := NewApplicationService(requestRepo, feedbackRepo, appointmentRepo, reportRepo, invoiceRepo, uowFactory, scheduling)
	roster := &fixedRoster{entries: []appappointment.RosterEntry{
		{TechnicianID: "tech-1", Techniques: []string{"PLUMBING"}, ScheduledInWindow: true},
		{TechnicianID: "tech-2", Techniques: []string{"PLUMBING"}, ScheduledInWindow: true},
	}}
	appointments := appappointment.NewApplicationService(appointmentRepo, requestRepo, roster, uowFactory)
	reports := appreport.NewApplicationService(reportRepo, requestRepo, appointmentRepo, invoiceRepo, uowFactory)
	billingSvc := appbilling.NewApplicationService(invoiceRepo, transactionRepo, reportRepo, requestRepo, accessoryRepo, stockTxRepo, requests, uowFactory)

	return &testServices{
		requests:      requests,
		appointments:  appointments,
		reports:       reports,
		billing:       billingSvc,
		uowFactory:    uowFactory,
		requestRepo:   requestRepo,
		accessoryRepo: accessoryRepo,
	}
}

func submitResidentRequest(t *testing.T, svc *testServices) *RequestResponse {
	t.Helper()
	resp, err := svc.requests.SubmitRequest(context.Background(), SubmitRequestCommand{
		RequesterID: "resident-1",
		Origin:      "RESIDENT",
		ApartmentID: "apt-101",
		IssueID:     "issue-leak",
		Note:        "kitchen sink leaking",
		ActorClaims: ActorClaims{ActorID: "resident-1", ActorRole: "RESIDENT"},
	})
	if err != nil {
		t.Fatalf("SubmitRequest() error = %v", err)
	}
	return resp
}

func TestSubmitResidentRequest(t *testing.T) {
	svc := newTestServices(t)

	resp := submitResidentRequest(t, svc)
	if resp.Status != string(request.StatusPending) {
		t.Errorf("status = %s, want PENDING", resp.Status)
	}
	if !resp.Chargeable {
		t.Error("resident request should be chargeable")
	}
	if len(resp.Tracking) != 1 {
		t.Errorf("tracking rows = %d, want 1", len(resp.Tracking))
	}
}

func TestSubmitRejectsUnknownParent(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.requests.SubmitRequest(context.Background(), SubmitRequestCommand{
		RequesterID:     "resident-1",
		Origin:          "RESIDENT",
		ApartmentID:     "apt-101",
		IssueID:         "issue-leak",
		ParentRequestID: "missing",
		ActorClaims:     ActorClaims{ActorID: "resident-1", ActorRole: "RESIDENT"},
	})
	if !errors.Is(err, request.ErrParentNotFound) {
		t.Errorf("error = %v, want ErrParentNotFound", err)
	}
}

func TestTriageApprovalSchedulesAppointment(t *testing.T) {
	svc := newTestServices(t)
	submitted := submitResidentRequest(t, svc)

	resp, err := svc.requests.TriageRequest(context.Background(), TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
	})
	if err != nil {
		t.Fatalf("TriageRequest() error = %v", err)
	}
	if resp.Status != string(request.StatusApproved) {
		t.Errorf("status = %s, want APPROVED", resp.Status)
	}

	appt, err := svc.appointments.GetOpenAppointmentForRequest(context.Background(), submitted.ID)
	if err != nil {
		t.Fatalf("no appointment scheduled: %v", err)
	}
	if appt.Status != string(appointment.StatusPending) {
		t.Errorf("appointment status = %s, want PENDING", appt.Status)
	}
	if !appt.End.After(appt.Start) {
		t.Error("appointment window is empty")
	}
}

func TestMaintenanceTriageRoutesThroughManager(t *testing.T) {
	svc := newTestServices(t)

	submitted, err := svc.requests.SubmitRequest(context.Background(), SubmitRequestCommand{
		RequesterID:           "system-scheduler",
		Origin:                "MAINTENANCE_SCHEDULE",
		MaintenanceScheduleID: "sched-9",
		IssueID:               "issue-hvac",
		ActorClaims:           ActorClaims{ActorID: "admin-1", ActorRole: "ADMIN"},
	})
	if err != nil {
		t.Fatalf("SubmitRequest() error = %v", err)
	}
	if submitted.Chargeable {
		t.Error("maintenance request should not be chargeable")
	}

	resp, err := svc.requests.TriageRequest(context.Background(), TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
	})
	if err != nil {
		t.Fatalf("lead triage error = %v", err)
	}
	if resp.Status != string(request.StatusWaitingManagerApproval) {
		t.Errorf("status = %s, want WAITING_MANAGER_APPROVAL", resp.Status)
	}

	resp, err = svc.requests.TriageRequest(context.Background(), TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "mgr-1", ActorRole: "MANAGER"},
	})
	if err != nil {
		t.Fatalf("manager triage error = %v", err)
	}
	if resp.Status != string(request.StatusApproved) {
		t.Errorf("status = %s, want APPROVED", resp.Status)
	}
}

func TestCancelCascadesToOpenAppointment(t *testing.T) {
	svc := newTestServices(t)
	submitted := submitResidentRequest(t, svc)

	if _, err := svc.requests.TriageRequest(context.Background(), TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
	}); err != nil {
		t.Fatalf("triage error = %v", err)
	}
	appt, err := svc.appointments.GetOpenAppointmentForRequest(context.Background(), submitted.ID)
	if err != nil {
		t.Fatalf("appointment lookup error = %v", err)
	}

	resp, err := svc.requests.CancelRequest(context.Background(), CancelCommand{
		RequestID:   submitted.ID,
		Reason:      "resident resolved it",
		ActorClaims: ActorClaims{ActorID: "resident-1", ActorRole: "RESIDENT"},
	})
	if err != nil {
		t.Fatalf("CancelRequest() error = %v", err)
	}
	if resp.Status != string(request.StatusCancelled) {
		t.Errorf("request status = %s, want CANCELLED", resp.Status)
	}

	cancelled, err := svc.appointments.GetAppointment(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment() error = %v", err)
	}
	if cancelled.Status != string(appointment.StatusCancelled) {
		t.Errorf("appointment status = %s, want CANCELLED", cancelled.Status)
	}
}

// TestResidentLifecycleEndToEnd drives one chargeable resident request
// from submission through settlement to completion.
func TestResidentLifecycleEndToEnd(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	// Seed the accessory catalogue.
	tap, err := svc.accessoryRepo.Seed("Ceramic tap", "piece", 60, 10)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}

	submitted := submitResidentRequest(t, svc)

	if _, err := svc.requests.TriageRequest(ctx, TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
	}); err != nil {
		t.Fatalf("triage: %v", err)
	}

	appt, err := svc.appointments.GetOpenAppointmentForRequest(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("appointment lookup: %v", err)
	}

	lead := ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"}
	if _, err := svc.appointments.AssignTechnicians(ctx, appappointment.AssignTechniciansCommand{
		AppointmentID: appt.ID,
		TechnicianIDs: []string{"tech-1"},
		Required:      1,
		ActorClaims:   appappointment.ActorClaims(lead),
	}); err != nil {
		t.Fatalf("assign technicians: %v", err)
	}

	for _, phase := range []string{"CONFIRMED", "IN_VISIT", "IN_REPAIR"} {
		if _, err := svc.appointments.AdvancePhase(ctx, appappointment.AdvancePhaseCommand{
			AppointmentID: appt.ID,
			Phase:         phase,
			ActorClaims:   appappointment.ActorClaims(lead),
		}); err != nil {
			t.Fatalf("advance to %s: %v", phase, err)
		}
	}

	// Starting the visit must have marked the request in progress.
	reqResp, err := svc.requests.GetRequest(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if reqResp.Status != string(request.StatusInProgress) {
		t.Fatalf("request status = %s, want IN_PROGRESS", reqResp.Status)
	}

	// Inspection verdict drafts the internal repair invoice.
	inspection, err := svc.reports.SubmitInspection(ctx, appreport.SubmitInspectionCommand{
		AppointmentID: appt.ID,
		AuthorID:      "tech-1",
		Description:   "worn tap cartridge",
		Solution:      "replace tap",
		FaultOwner:    "RESIDENT",
		SolutionType:  "REPLACEMENT",
	})
	if err != nil {
		t.Fatalf("submit inspection: %v", err)
	}
	for _, approver := range []ActorClaims{
		{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
		{ActorID: "resident-1", ActorRole: "RESIDENT"},
	} {
		if _, err := svc.reports.RecordApproval(ctx, appreport.RecordApprovalCommand{
			ReportID:    inspection.ID,
			Decision:    "APPROVED",
			ActorClaims: appreport.ActorClaims(approver),
		}); err != nil {
			t.Fatalf("approve inspection as %s: %v", approver.ActorRole, err)
		}
	}

	invoices, err := svc.billing.GetRequestInvoices(ctx, submitted.ID)
	if err != nil || len(invoices) != 1 {
		t.Fatalf("invoices = %v (err %v), want exactly one", invoices, err)
	}
	inv := invoices[0]
	if inv.Type != string(billing.InvoiceTypeInternalRepair) {
		t.Errorf("invoice type = %s, want INTERNAL_REPAIR", inv.Type)
	}

	if _, err := svc.billing.AddAccessoryLine(ctx, appbilling.AddAccessoryLineCommand{
		InvoiceID:   inv.ID,
		AccessoryID: tap,
		Quantity:    2,
		Source:      "FROM_STOCK",
	}); err != nil {
		t.Fatalf("add accessory line: %v", err)
	}
	if _, err := svc.billing.AddServiceLine(ctx, appbilling.AddServiceLineCommand{
		InvoiceID: inv.ID,
		Name:      "labor",
		Price:     100,
		Currency:  "VND",
	}); err != nil {
		t.Fatalf("add service line: %v", err)
	}

	settlement, err := svc.billing.FinalizeInvoice(ctx, appbilling.FinalizeCommand{
		InvoiceID:   inv.ID,
		ActorClaims: appbilling.ActorClaims(lead),
	})
	if err != nil {
		t.Fatalf("finalize invoice: %v", err)
	}
	if settlement.Invoice.Status != string(billing.InvoiceStatusAwaitingPayment) {
		t.Errorf("invoice status = %s, want AWAITING_PAYMENT", settlement.Invoice.Status)
	}
	if settlement.Invoice.Total.Amount != 2*60+100 {
		t.Errorf("invoice total = %d, want 220", settlement.Invoice.Total.Amount)
	}
	if got := svc.accessoryRepo.Quantity(tap); got != 8 {
		t.Errorf("stock after export = %d, want 8", got)
	}

	// Close out the visit and file the repair report.
	if _, err := svc.appointments.StartWork(ctx, appappointment.WorkOrderCommand{
		AppointmentID: appt.ID, TechnicianID: "tech-1",
	}); err != nil {
		t.Fatalf("start work order: %v", err)
	}
	if _, err := svc.appointments.CompleteWork(ctx, appappointment.WorkOrderCommand{
		AppointmentID: appt.ID, TechnicianID: "tech-1",
	}); err != nil {
		t.Fatalf("complete work order: %v", err)
	}
	if _, err := svc.appointments.AdvancePhase(ctx, appappointment.AdvancePhaseCommand{
		AppointmentID: appt.ID,
		Phase:         "COMPLETED",
		ActorClaims:   appappointment.ActorClaims(lead),
	}); err != nil {
		t.Fatalf("complete appointment: %v", err)
	}

	repair, err := svc.reports.SubmitRepair(ctx, appreport.SubmitRepairCommand{
		AppointmentID: appt.ID,
		AuthorID:      "tech-1",
		Description:   "tap replaced and tested",
	})
	if err != nil {
		t.Fatalf("submit repair report: %v", err)
	}
	for _, approver := range []ActorClaims{
		{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
		{ActorID: "resident-1", ActorRole: "RESIDENT"},
	} {
		if _, err := svc.reports.RecordApproval(ctx, appreport.RecordApprovalCommand{
			ReportID:    repair.ID,
			Decision:    "APPROVED",
			ActorClaims: appreport.ActorClaims(approver),
		}); err != nil {
			t.Fatalf("approve repair as %s: %v", approver.ActorRole, err)
		}
	}

	// Payment closes the settlement leg; the reconciler advances the
	// request to acceptance.
	if _, err := svc.billing.RecordPayment(ctx, appbilling.RecordPaymentCommand{
		TransactionID:     settlement.Transaction.ID,
		ExternalReference: "gw-ref-1",
		PaidAt:            time.Now(),
	}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	reqResp, err = svc.requests.GetRequest(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if reqResp.Status != string(request.StatusAcceptancePendingVerify) {
		t.Fatalf("request status = %s, want ACCEPTANCE_PENDING_VERIFY", reqResp.Status)
	}

	// Only the requester can sign off.
	if _, err := svc.requests.VerifyAcceptance(ctx, VerifyAcceptanceCommand{
		RequestID:   submitted.ID,
		ActorClaims: ActorClaims{ActorID: "someone-else", ActorRole: "RESIDENT"},
	}); !errors.Is(err, request.ErrNotRequester) {
		t.Errorf("foreign verify error = %v, want ErrNotRequester", err)
	}

	final, err := svc.requests.VerifyAcceptance(ctx, VerifyAcceptanceCommand{
		RequestID:   submitted.ID,
		ActorClaims: ActorClaims{ActorID: "resident-1", ActorRole: "RESIDENT"},
	})
	if err != nil {
		t.Fatalf("verify acceptance: %v", err)
	}
	if final.Status != string(request.StatusCompleted) {
		t.Errorf("final status = %s, want COMPLETED", final.Status)
	}
	if final.AcceptanceTime == nil {
		t.Error("acceptance time not set")
	}

	// Feedback is only accepted once the request completed.
	fb, err := svc.requests.AddFeedback(ctx, AddFeedbackCommand{
		RequestID: submitted.ID,
		AuthorID:  "resident-1",
		Rating:    5,
		Comment:   "quick fix",
	})
	if err != nil {
		t.Fatalf("add feedback: %v", err)
	}
	if fb.Rating != 5 {
		t.Errorf("feedback rating = %d, want 5", fb.Rating)
	}
}

func TestReconcileLeavesUnsettledRequestAlone(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	submitted := submitResidentRequest(t, svc)
	if _, err := svc.requests.TriageRequest(ctx, TriageCommand{
		RequestID:   submitted.ID,
		Approve:     true,
		ActorClaims: ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"},
	}); err != nil {
		t.Fatalf("triage: %v", err)
	}

	advanced, err := svc.requests.ReconcileRequest(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("ReconcileRequest() error = %v", err)
	}
	if advanced {
		t.Error("reconcile advanced a request with no settled work")
	}

	resp, _ := svc.requests.GetRequest(ctx, submitted.ID)
	if resp.Status != string(request.StatusApproved) {
		t.Errorf("status = %s, want APPROVED untouched", resp.Status)
	}
}

func TestFeedbackRejectedBeforeCompletion(t *testing.T) {
	svc := newTestServices(t)
	submitted := submitResidentRequest(t, svc)

	_, err := svc.requests.AddFeedback(context.Background(), AddFeedbackCommand{
		RequestID: submitted.ID,
		AuthorID:  "resident-1",
		Rating:    4,
	})
	if err == nil {
		t.Error("feedback accepted on a pending request")
	}
}
