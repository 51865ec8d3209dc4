package request

// Status is the externally observable lifecycle state of a repair
// request. The allow-list below is the single source of truth for legal
// transitions; InvalidTransition detection is one table lookup.
type Status string

const (
	StatusPending                 Status = "PENDING"
	StatusWaitingManagerApproval  Status = "WAITING_MANAGER_APPROVAL"
	StatusApproved                Status = "APPROVED"
	StatusInProgress              Status = "IN_PROGRESS"
	StatusAcceptancePendingVerify Status = "ACCEPTANCE_PENDING_VERIFY"
	StatusCompleted               Status = "COMPLETED"
	StatusRejected                Status = "REJECTED"
	StatusCancelled               Status = "CANCELLED"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusWaitingManagerApproval: true,
		StatusApproved:               true,
		StatusRejected:               true,
		StatusCancelled:              true,
	},
	StatusWaitingManagerApproval: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusApproved: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusAcceptancePendingVerify: true,
	},
	StatusAcceptancePendingVerify: {
		StatusCompleted: true,
	},
	// Terminal states.
	StatusCompleted: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, bool) {
	if _, ok := allowedTransitions[Status(s)]; ok {
		return Status(s), true
	}
	return "", false
}

// Origin identifies where a repair request came from. Exactly one origin
// context (apartment, common-area object, maintenance schedule) is
// meaningful per request.
type Origin string

const (
	// OriginResident a resident reported a fault in their apartment.
	OriginResident Origin = "RESIDENT"

	// OriginCommonArea a fault on a common-area object.
	OriginCommonArea Origin = "COMMON_AREA"

	// OriginMaintenance a maintenance schedule trigger created the request.
	OriginMaintenance Origin = "MAINTENANCE_SCHEDULE"
)

// ParseOrigin validates a raw origin string.
func ParseOrigin(s string) (Origin, bool) {
	switch Origin(s) {
	case OriginResident, OriginCommonArea, OriginMaintenance:
		return Origin(s), true
	default:
		return "", false
	}
}
