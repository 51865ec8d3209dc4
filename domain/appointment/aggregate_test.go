package appointment

import (
	"errors"
	"testing"
	"time"

	"maintdesk/domain/shared"
)

var lead = shared.Actor{ID: "lead-1", Role: shared.RoleTechnicianLead}

func scheduled(t *testing.T) *Appointment {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	a, err := Schedule("request-1", start, start.Add(2*time.Hour), "", lead)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	return a
}

func TestScheduleRejectsInvertedWindow(t *testing.T) {
	start := time.Now()
	if _, err := Schedule("request-1", start, start, "", lead); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestAssignTechniciansBelowHeadcount(t *testing.T) {
	a := scheduled(t)
	err := a.AssignTechnicians([]string{"tech-1"}, 2, lead)
	if !errors.Is(err, ErrInsufficientTechnicians) {
		t.Fatalf("err = %v, want ErrInsufficientTechnicians", err)
	}
	if a.Status() != StatusPending {
		t.Errorf("failed assignment must not advance status, got %s", a.Status())
	}
	if len(a.WorkOrders()) != 0 {
		t.Error("failed assignment must not create work orders")
	}
}

func TestAssignTechniciansRejectsDuplicates(t *testing.T) {
	a := scheduled(t)
	if err := a.AssignTechnicians([]string{"tech-1", "tech-1"}, 1, lead); !errors.Is(err, ErrDuplicateTechnician) {
		t.Errorf("err = %v, want ErrDuplicateTechnician", err)
	}
}

func TestAssignTechniciansCreatesPendingWorkOrders(t *testing.T) {
	a := scheduled(t)
	if err := a.AssignTechnicians([]string{"tech-1", "tech-2"}, 2, lead); err != nil {
		t.Fatalf("AssignTechnicians: %v", err)
	}
	if a.Status() != StatusAssigned {
		t.Errorf("status = %s, want %s", a.Status(), StatusAssigned)
	}
	orders := a.WorkOrders()
	if len(orders) != 2 {
		t.Fatalf("work orders = %d, want 2", len(orders))
	}
	for _, wo := range orders {
		if wo.Status() != WorkOrderPending {
			t.Errorf("work order %s status = %s, want %s", wo.TechnicianID(), wo.Status(), WorkOrderPending)
		}
	}
	if !a.IsTechnicianAssigned("tech-1") || a.IsTechnicianAssigned("tech-3") {
		t.Error("IsTechnicianAssigned answered wrong")
	}
}

func TestPhaseProgression(t *testing.T) {
	a := scheduled(t)
	a.AssignTechnicians([]string{"tech-1"}, 1, lead)

	steps := []struct {
		name string
		op   func() error
		want Status
	}{
		{"confirm", func() error { return a.Confirm(lead) }, StatusConfirmed},
		{"visit", func() error { return a.StartVisit(lead) }, StatusInVisit},
		{"repair", func() error { return a.StartRepair(lead) }, StatusInRepair},
		{"complete", func() error { return a.Complete(lead) }, StatusCompleted},
	}
	for _, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if a.Status() != s.want {
			t.Fatalf("%s: status = %s, want %s", s.name, a.Status(), s.want)
		}
	}
}

func TestCannotSkipPhases(t *testing.T) {
	a := scheduled(t)
	if err := a.StartRepair(lead); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("repair from pending: err = %v, want ErrInvalidTransition", err)
	}
	a.AssignTechnicians([]string{"tech-1"}, 1, lead)
	if err := a.Complete(lead); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("complete from assigned: err = %v, want ErrInvalidTransition", err)
	}
}

func TestWorkOrderLifecycle(t *testing.T) {
	a := scheduled(t)
	a.AssignTechnicians([]string{"tech-1"}, 1, lead)
	a.Confirm(lead)
	a.StartVisit(lead)
	a.StartRepair(lead)

	if err := a.StartWork("tech-1"); err != nil {
		t.Fatalf("StartWork: %v", err)
	}
	wo := a.WorkOrders()[0]
	if wo.Status() != WorkOrderWorking || wo.ActualStart() == nil {
		t.Errorf("work order after start: status=%s actualStart=%v", wo.Status(), wo.ActualStart())
	}

	if err := a.CompleteWork("tech-1"); err != nil {
		t.Fatalf("CompleteWork: %v", err)
	}
	wo = a.WorkOrders()[0]
	if wo.Status() != WorkOrderCompleted || wo.ActualEnd() == nil {
		t.Errorf("work order after complete: status=%s actualEnd=%v", wo.Status(), wo.ActualEnd())
	}

	if err := a.StartWork("tech-2"); !errors.Is(err, ErrWorkOrderNotFound) {
		t.Errorf("unknown technician: err = %v, want ErrWorkOrderNotFound", err)
	}
}

func TestCompleteClosesWorkingOrders(t *testing.T) {
	a := scheduled(t)
	a.AssignTechnicians([]string{"tech-1", "tech-2"}, 2, lead)
	a.Confirm(lead)
	a.StartVisit(lead)
	a.StartRepair(lead)
	a.StartWork("tech-1")

	if err := a.Complete(lead); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	for _, wo := range a.WorkOrders() {
		if wo.TechnicianID() == "tech-1" && wo.Status() != WorkOrderCompleted {
			t.Errorf("working order should be completed, got %s", wo.Status())
		}
	}
}

func TestCancelCascadesToOpenWorkOrders(t *testing.T) {
	a := scheduled(t)
	a.AssignTechnicians([]string{"tech-1", "tech-2"}, 2, lead)

	if err := a.Cancel("resident rescheduled", lead); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if a.Status() != StatusCancelled {
		t.Fatalf("status = %s, want %s", a.Status(), StatusCancelled)
	}
	for _, wo := range a.WorkOrders() {
		if wo.Status() != WorkOrderCancelled {
			t.Errorf("work order %s status = %s, want %s", wo.TechnicianID(), wo.Status(), WorkOrderCancelled)
		}
	}
}

func TestCancelAfterCompletionFails(t *testing.T) {
	a := scheduled(t)
	a.AssignTechnicians([]string{"tech-1"}, 1, lead)
	a.Confirm(lead)
	a.StartVisit(lead)
	a.StartRepair(lead)
	a.Complete(lead)

	if err := a.Cancel("too late", lead); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}
