package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"maintdesk/domain/appointment"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
	"maintdesk/infrastructure/persistence/mocks"
)

type stubRoster struct {
	entries []RosterEntry
}

func (r *stubRoster) TechniciansFor(ctx context.Context, window appointment.Window) ([]RosterEntry, error) {
	return r.entries, nil
}

type testEnv struct {
	service         *ApplicationService
	appointmentRepo *mocks.MockAppointmentRepository
	requestRepo     *mocks.MockRequestRepository
	roster          *stubRoster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	appointmentRepo := mocks.NewMockAppointmentRepository()
	requestRepo := mocks.NewMockRequestRepository()
	roster := &stubRoster{}
	service := NewApplicationService(appointmentRepo, requestRepo, roster, mocks.NewMockUnitOfWorkFactory())

	return &testEnv{
		service:         service,
		appointmentRepo: appointmentRepo,
		requestRepo:     requestRepo,
		roster:          roster,
	}
}

var (
	leadActor     = shared.Actor{ID: "lead-1", Role: shared.RoleTechnicianLead}
	residentActor = shared.Actor{ID: "resident-1", Role: shared.RoleResident}
	leadClaims    = ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"}
)

// seedScheduled plants an approved request with a pending appointment a
// day out, the state triage approval leaves behind.
func seedScheduled(t *testing.T, env *testEnv) *appointment.Appointment {
	t.Helper()
	ctx := context.Background()

	req, err := request.Submit(request.SubmitOptions{
		RequesterID: "resident-1",
		Origin:      request.OriginResident,
		ApartmentID: "apt-101",
		IssueID:     "issue-leak",
	}, residentActor)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	if err := req.Triage(true, "", leadActor); err != nil {
		t.Fatalf("triage request: %v", err)
	}
	if err := env.requestRepo.Save(ctx, req); err != nil {
		t.Fatalf("save request: %v", err)
	}

	start := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	appt, err := appointment.Schedule(req.ID(), start, start.Add(2*time.Hour), "", leadActor)
	if err != nil {
		t.Fatalf("schedule appointment: %v", err)
	}
	if err := env.appointmentRepo.Save(ctx, appt); err != nil {
		t.Fatalf("save appointment: %v", err)
	}
	return appt
}

func TestRecommendRanksIdleTechnicianFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := seedScheduled(t, env)

	env.roster.entries = []RosterEntry{
		{TechnicianID: "tech-busy", Techniques: []string{"PLUMBING"}, ScheduledInWindow: true},
		{TechnicianID: "tech-idle", Techniques: []string{"PLUMBING"}, ScheduledInWindow: true},
		{TechnicianID: "tech-hvac", Techniques: []string{"HVAC"}, ScheduledInWindow: true},
		{TechnicianID: "tech-off", Techniques: []string{"PLUMBING"}, ScheduledInWindow: false},
	}

	// Commit a same-day work order for tech-busy on another appointment.
	other, err := appointment.Schedule("req-other", appt.Start().Add(3*time.Hour), appt.End().Add(3*time.Hour), "", leadActor)
	if err != nil {
		t.Fatalf("schedule other appointment: %v", err)
	}
	if err := other.AssignTechnicians([]string{"tech-busy"}, 1, leadActor); err != nil {
		t.Fatalf("assign tech-busy: %v", err)
	}
	if err := env.appointmentRepo.Save(ctx, other); err != nil {
		t.Fatalf("save other appointment: %v", err)
	}

	ranked, err := env.service.RecommendTechnicians(ctx, RecommendCommand{
		AppointmentID: appt.ID(),
		Technique:     "PLUMBING",
	})
	if err != nil {
		t.Fatalf("RecommendTechnicians() error = %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("ranked = %d candidates, want 2 (off-shift and wrong technique filtered)", len(ranked))
	}
	if ranked[0].TechnicianID != "tech-idle" {
		t.Errorf("first = %s, want tech-idle", ranked[0].TechnicianID)
	}
	if ranked[1].TechnicianID != "tech-busy" || ranked[1].DayAssignments != 1 {
		t.Errorf("second = %+v, want tech-busy with one day assignment", ranked[1])
	}
}

func TestAssignRejectsInsufficientHeadcount(t *testing.T) {
	env := newTestEnv(t)
	appt := seedScheduled(t, env)

	_, err := env.service.AssignTechnicians(context.Background(), AssignTechniciansCommand{
		AppointmentID: appt.ID(),
		TechnicianIDs: []string{"tech-1"},
		Required:      2,
		ActorClaims:   leadClaims,
	})
	if !errors.Is(err, appointment.ErrInsufficientTechnicians) {
		t.Errorf("error = %v, want ErrInsufficientTechnicians", err)
	}
}

func TestAssignRejectsDuplicateTechnician(t *testing.T) {
	env := newTestEnv(t)
	appt := seedScheduled(t, env)

	_, err := env.service.AssignTechnicians(context.Background(), AssignTechniciansCommand{
		AppointmentID: appt.ID(),
		TechnicianIDs: []string{"tech-1", "tech-1"},
		Required:      2,
		ActorClaims:   leadClaims,
	})
	if !errors.Is(err, appointment.ErrDuplicateTechnician) {
		t.Errorf("error = %v, want ErrDuplicateTechnician", err)
	}
}

func TestStartVisitMarksRequestInProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := seedScheduled(t, env)

	if _, err := env.service.AssignTechnicians(ctx, AssignTechniciansCommand{
		AppointmentID: appt.ID(),
		TechnicianIDs: []string{"tech-1"},
		Required:      1,
		ActorClaims:   leadClaims,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	for _, phase := range []string{"CONFIRMED", "IN_VISIT"} {
		if _, err := env.service.AdvancePhase(ctx, AdvancePhaseCommand{
			AppointmentID: appt.ID(),
			Phase:         phase,
			ActorClaims:   leadClaims,
		}); err != nil {
			t.Fatalf("advance to %s: %v", phase, err)
		}
	}

	req, err := env.requestRepo.FindByID(ctx, appt.RequestID())
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	if req.Status() != request.StatusInProgress {
		t.Errorf("request status = %s, want IN_PROGRESS", req.Status())
	}
}

func TestPhaseCannotSkipAssignment(t *testing.T) {
	env := newTestEnv(t)
	appt := seedScheduled(t, env)

	_, err := env.service.AdvancePhase(context.Background(), AdvancePhaseCommand{
		AppointmentID: appt.ID(),
		Phase:         "CONFIRMED",
		ActorClaims:   leadClaims,
	})
	if err == nil {
		t.Error("confirm succeeded on an unassigned appointment")
	}
}

func TestCompleteFinishesWorkingOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := seedScheduled(t, env)

	if _, err := env.service.AssignTechnicians(ctx, AssignTechniciansCommand{
		AppointmentID: appt.ID(),
		TechnicianIDs: []string{"tech-1", "tech-2"},
		Required:      2,
		ActorClaims:   leadClaims,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, phase := range []string{"CONFIRMED", "IN_VISIT", "IN_REPAIR"} {
		if _, err := env.service.AdvancePhase(ctx, AdvancePhaseCommand{
			AppointmentID: appt.ID(),
			Phase:         phase,
			ActorClaims:   leadClaims,
		}); err != nil {
			t.Fatalf("advance to %s: %v", phase, err)
		}
	}

	// One technician starts; the other never does.
	if _, err := env.service.StartWork(ctx, WorkOrderCommand{AppointmentID: appt.ID(), TechnicianID: "tech-1"}); err != nil {
		t.Fatalf("start work: %v", err)
	}

	resp, err := env.service.AdvancePhase(ctx, AdvancePhaseCommand{
		AppointmentID: appt.ID(),
		Phase:         "COMPLETED",
		ActorClaims:   leadClaims,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Status != string(appointment.StatusCompleted) {
		t.Errorf("status = %s, want COMPLETED", resp.Status)
	}
	for _, wo := range resp.WorkOrders {
		if wo.TechnicianID == "tech-1" && wo.Status != string(appointment.WorkOrderCompleted) {
			t.Errorf("started order status = %s, want COMPLETED", wo.Status)
		}
	}
}

func TestWorkOrderUnknownTechnician(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := seedScheduled(t, env)

	if _, err := env.service.AssignTechnicians(ctx, AssignTechniciansCommand{
		AppointmentID: appt.ID(),
		TechnicianIDs: []string{"tech-1"},
		Required:      1,
		ActorClaims:   leadClaims,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := env.service.StartWork(ctx, WorkOrderCommand{AppointmentID: appt.ID(), TechnicianID: "tech-9"})
	if !errors.Is(err, appointment.ErrWorkOrderNotFound) {
		t.Errorf("error = %v, want ErrWorkOrderNotFound", err)
	}
}

func TestCancelClosesAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := seedScheduled(t, env)

	resp, err := env.service.CancelAppointment(ctx, CancelAppointmentCommand{
		AppointmentID: appt.ID(),
		Reason:        "resident unavailable",
		ActorClaims:   leadClaims,
	})
	if err != nil {
		t.Fatalf("CancelAppointment() error = %v", err)
	}
	if resp.Status != string(appointment.StatusCancelled) {
		t.Errorf("status = %s, want CANCELLED", resp.Status)
	}

	if _, err := env.service.GetOpenAppointmentForRequest(ctx, appt.RequestID()); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("open lookup error = %v, want ErrAppointmentNotFound", err)
	}
}
