package report

import "maintdesk/domain/shared"

// Kind distinguishes the two report types sharing one approval automaton.
type Kind string

const (
	// KindInspection technician findings after the first visit.
	KindInspection Kind = "INSPECTION"

	// KindRepair record of completed work.
	KindRepair Kind = "REPAIR"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindInspection, KindRepair:
		return Kind(s), true
	default:
		return "", false
	}
}

// Status is the report's approval state. Internal work finalizes at
// Approved; resident-facing work adds the ResidentApproved step.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusApproved         Status = "APPROVED"
	StatusResidentApproved Status = "RESIDENT_APPROVED"
)

// FaultOwner assigns responsibility for the fault, which drives whether
// the invoice is chargeable to the resident.
type FaultOwner string

const (
	FaultBuilding FaultOwner = "BUILDING"
	FaultResident FaultOwner = "RESIDENT"
)

// ParseFaultOwner validates a raw fault owner string.
func ParseFaultOwner(s string) (FaultOwner, bool) {
	switch FaultOwner(s) {
	case FaultBuilding, FaultResident:
		return FaultOwner(s), true
	default:
		return "", false
	}
}

// SolutionType is the inspection verdict; it selects the invoice type
// created once the report is approved.
type SolutionType string

const (
	SolutionRepair      SolutionType = "REPAIR"
	SolutionReplacement SolutionType = "REPLACEMENT"
	SolutionOutsource   SolutionType = "OUTSOURCE"
)

// ParseSolutionType validates a raw solution type string.
func ParseSolutionType(s string) (SolutionType, bool) {
	switch SolutionType(s) {
	case SolutionRepair, SolutionReplacement, SolutionOutsource:
		return SolutionType(s), true
	default:
		return "", false
	}
}

// Decision is one approver's verdict.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// ParseDecision validates a raw decision string.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApproved, DecisionRejected:
		return Decision(s), true
	default:
		return "", false
	}
}

// approvalChain returns the fixed role order for a report. The
// TechnicianLead always signs first; the second approver depends on who
// the work is for.
func approvalChain(residentFacing bool) []shared.Role {
	if residentFacing {
		return []shared.Role{shared.RoleTechnicianLead, shared.RoleResident}
	}
	return []shared.Role{shared.RoleTechnicianLead, shared.RoleManager}
}
