package report

import (
	"errors"
	"testing"

	"maintdesk/domain/shared"
)

var (
	tech     = shared.Actor{ID: "tech-1", Role: shared.RoleTechnician}
	lead     = shared.Actor{ID: "lead-1", Role: shared.RoleTechnicianLead}
	manager  = shared.Actor{ID: "manager-1", Role: shared.RoleManager}
	resident = shared.Actor{ID: "resident-1", Role: shared.RoleResident}
)

func inspection(t *testing.T, residentFacing bool) *Report {
	t.Helper()
	r, err := SubmitInspection(InspectionOptions{
		AppointmentID:  "appointment-1",
		RequestID:      "request-1",
		AuthorID:       tech.ID,
		Description:    "burst pipe behind kitchen wall",
		Solution:       "replace pipe section",
		FaultOwner:     FaultBuilding,
		SolutionType:   SolutionRepair,
		ResidentFacing: residentFacing,
	})
	if err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}
	return r
}

func TestResidentFacingChainOrder(t *testing.T) {
	r := inspection(t, true)

	role, pending := r.NextExpectedRole()
	if !pending || role != shared.RoleTechnicianLead {
		t.Fatalf("first expected role = %s, want %s", role, shared.RoleTechnicianLead)
	}

	if err := r.RecordApproval(lead, DecisionApproved, ""); err != nil {
		t.Fatalf("lead approval: %v", err)
	}
	if r.Status() != StatusApproved {
		t.Errorf("status after lead = %s, want %s", r.Status(), StatusApproved)
	}

	if err := r.RecordApproval(resident, DecisionApproved, "looks good"); err != nil {
		t.Fatalf("resident approval: %v", err)
	}
	if r.Status() != StatusResidentApproved {
		t.Errorf("status = %s, want %s", r.Status(), StatusResidentApproved)
	}
	if !r.IsFinalized() {
		t.Error("chain should be finalized")
	}
}

func TestInternalChainOrder(t *testing.T) {
	r := inspection(t, false)

	if err := r.RecordApproval(lead, DecisionApproved, ""); err != nil {
		t.Fatalf("lead approval: %v", err)
	}
	if r.Status() != StatusPending {
		t.Errorf("internal report must stay Pending mid-chain, got %s", r.Status())
	}

	if err := r.RecordApproval(manager, DecisionApproved, ""); err != nil {
		t.Fatalf("manager approval: %v", err)
	}
	if r.Status() != StatusApproved {
		t.Errorf("status = %s, want %s", r.Status(), StatusApproved)
	}
	if !r.IsFinalized() {
		t.Error("chain should be finalized")
	}
}

func TestOutOfOrderApprovalRejected(t *testing.T) {
	r := inspection(t, true)
	err := r.RecordApproval(resident, DecisionApproved, "")
	if !errors.Is(err, ErrOutOfOrderApproval) {
		t.Fatalf("err = %v, want ErrOutOfOrderApproval", err)
	}
	if len(r.Approvals()) != 0 {
		t.Error("rejected vote must not be recorded")
	}
}

func TestApprovalAfterFinalizationRejected(t *testing.T) {
	r := inspection(t, false)
	r.RecordApproval(lead, DecisionApproved, "")
	r.RecordApproval(manager, DecisionApproved, "")

	err := r.RecordApproval(manager, DecisionApproved, "again")
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestRejectionRestartsChain(t *testing.T) {
	r := inspection(t, true)
	r.RecordApproval(lead, DecisionApproved, "")
	if err := r.RecordApproval(resident, DecisionRejected, "wrong pipe"); err != nil {
		t.Fatalf("rejection: %v", err)
	}

	if r.Status() != StatusPending {
		t.Errorf("status after rejection = %s, want %s", r.Status(), StatusPending)
	}
	role, pending := r.NextExpectedRole()
	if !pending || role != shared.RoleTechnicianLead {
		t.Errorf("chain must restart at %s, got %s", shared.RoleTechnicianLead, role)
	}

	// The full chain runs again after rework.
	if err := r.Rework("burst pipe, second attempt", "replace longer section"); err != nil {
		t.Fatalf("Rework: %v", err)
	}
	r.RecordApproval(lead, DecisionApproved, "")
	if err := r.RecordApproval(resident, DecisionApproved, ""); err != nil {
		t.Fatalf("second resident approval: %v", err)
	}
	if r.Status() != StatusResidentApproved {
		t.Errorf("status = %s, want %s", r.Status(), StatusResidentApproved)
	}
	if len(r.Approvals()) != 4 {
		t.Errorf("approval audit rows = %d, want 4", len(r.Approvals()))
	}
}

func TestReworkOnlyBeforeChainProgress(t *testing.T) {
	r := inspection(t, true)
	r.RecordApproval(lead, DecisionApproved, "")
	if err := r.Rework("mid-chain edit", ""); !errors.Is(err, ErrNotReworkable) {
		t.Errorf("err = %v, want ErrNotReworkable", err)
	}
}

func TestRepairReportChain(t *testing.T) {
	r, err := SubmitRepair("appointment-1", "request-1", tech.ID, "replaced pipe section", true)
	if err != nil {
		t.Fatalf("SubmitRepair: %v", err)
	}
	if r.Kind() != KindRepair {
		t.Errorf("kind = %s, want %s", r.Kind(), KindRepair)
	}
	r.RecordApproval(lead, DecisionApproved, "")
	r.RecordApproval(resident, DecisionApproved, "")
	if r.Status() != StatusResidentApproved {
		t.Errorf("status = %s, want %s", r.Status(), StatusResidentApproved)
	}
}

func TestRebuildResumesChain(t *testing.T) {
	r := inspection(t, false)
	r.RecordApproval(lead, DecisionApproved, "")

	rebuilt := Rebuild(ReconstructionDTO{
		ID:             r.ID(),
		AppointmentID:  r.AppointmentID(),
		RequestID:      r.RequestID(),
		Kind:           r.Kind(),
		AuthorID:       r.AuthorID(),
		Description:    r.Description(),
		Solution:       r.Solution(),
		FaultOwner:     r.FaultOwner(),
		SolutionType:   r.SolutionType(),
		ResidentFacing: r.ResidentFacing(),
		Status:         r.Status(),
		Version:        1,
		Approvals:      r.Approvals(),
	})

	role, pending := rebuilt.NextExpectedRole()
	if !pending || role != shared.RoleManager {
		t.Errorf("rebuilt chain expects %s, got %s", shared.RoleManager, role)
	}
	if err := rebuilt.RecordApproval(manager, DecisionApproved, ""); err != nil {
		t.Fatalf("manager approval on rebuilt report: %v", err)
	}
	if !rebuilt.IsFinalized() {
		t.Error("rebuilt report should finalize")
	}
}
