package appointment

// Status is the appointment phase. It is advanced explicitly by the
// technician lead's actions, never derived from individual work orders,
// so one technician finishing early cannot close a multi-technician job.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusInVisit   Status = "IN_VISIT"
	StatusInRepair  Status = "IN_REPAIR"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusAssigned: true, StatusCancelled: true},
	StatusAssigned:  {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusInVisit: true, StatusCancelled: true},
	StatusInVisit:   {StatusInRepair: true, StatusCancelled: true},
	StatusInRepair:  {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from → to is a legal phase step.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// IsOpen reports whether the appointment still occupies its request's
// single open slot.
func (s Status) IsOpen() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, bool) {
	if _, ok := allowedTransitions[Status(s)]; ok {
		return Status(s), true
	}
	return "", false
}

// WorkOrderStatus is one technician's progress within an appointment,
// advanced independently per technician.
type WorkOrderStatus string

const (
	WorkOrderPending   WorkOrderStatus = "PENDING"
	WorkOrderWorking   WorkOrderStatus = "WORKING"
	WorkOrderCompleted WorkOrderStatus = "COMPLETED"
	WorkOrderCancelled WorkOrderStatus = "CANCELLED"
)

var allowedWorkOrderTransitions = map[WorkOrderStatus]map[WorkOrderStatus]bool{
	WorkOrderPending:   {WorkOrderWorking: true, WorkOrderCancelled: true},
	WorkOrderWorking:   {WorkOrderCompleted: true, WorkOrderCancelled: true},
	WorkOrderCompleted: {},
	WorkOrderCancelled: {},
}

// CanTransitionWorkOrder reports whether from → to is legal for a work
// order.
func CanTransitionWorkOrder(from, to WorkOrderStatus) bool {
	next, ok := allowedWorkOrderTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}
