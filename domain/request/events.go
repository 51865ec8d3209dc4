package request

import "maintdesk/domain/shared"

// Domain events of the request lifecycle. The external notification
// dispatcher consumes these from the outbox.

type RequestSubmittedEvent struct{ shared.BaseEvent }

func NewRequestSubmittedEvent(requestID, requesterID, origin string, emergency bool) *RequestSubmittedEvent {
	return &RequestSubmittedEvent{shared.NewBaseEvent("request.submitted", requestID, map[string]any{
		"requester_id": requesterID,
		"origin":       origin,
		"emergency":    emergency,
	})}
}

type RequestApprovedEvent struct{ shared.BaseEvent }

func NewRequestApprovedEvent(requestID, actorID string) *RequestApprovedEvent {
	return &RequestApprovedEvent{shared.NewBaseEvent("request.approved", requestID, map[string]any{
		"actor_id": actorID,
	})}
}

type RequestRejectedEvent struct{ shared.BaseEvent }

func NewRequestRejectedEvent(requestID, actorID, reason string) *RequestRejectedEvent {
	return &RequestRejectedEvent{shared.NewBaseEvent("request.rejected", requestID, map[string]any{
		"actor_id": actorID,
		"reason":   reason,
	})}
}

type RequestCancelledEvent struct{ shared.BaseEvent }

func NewRequestCancelledEvent(requestID, actorID, reason string) *RequestCancelledEvent {
	return &RequestCancelledEvent{shared.NewBaseEvent("request.cancelled", requestID, map[string]any{
		"actor_id": actorID,
		"reason":   reason,
	})}
}

type RequestAwaitingAcceptanceEvent struct{ shared.BaseEvent }

func NewRequestAwaitingAcceptanceEvent(requestID string) *RequestAwaitingAcceptanceEvent {
	return &RequestAwaitingAcceptanceEvent{shared.NewBaseEvent("request.awaiting_acceptance", requestID, nil)}
}

type RequestCompletedEvent struct{ shared.BaseEvent }

func NewRequestCompletedEvent(requestID, actorID string) *RequestCompletedEvent {
	return &RequestCompletedEvent{shared.NewBaseEvent("request.completed", requestID, map[string]any{
		"actor_id": actorID,
	})}
}
