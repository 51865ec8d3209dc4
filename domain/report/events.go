package report

import "maintdesk/domain/shared"

const (
	ReportSubmittedEventName        = "report.submitted"
	ReportApprovalRecordedEventName = "report.approval_recorded"
	ReportRejectedEventName         = "report.rejected"
)

// ReportSubmittedEvent is raised when an inspection or repair report is filed.
type ReportSubmittedEvent struct {
	shared.BaseEvent
}

func NewReportSubmittedEvent(reportID, requestID, kind string) *ReportSubmittedEvent {
	return &ReportSubmittedEvent{
		BaseEvent: shared.NewBaseEvent(ReportSubmittedEventName, reportID, map[string]any{
			"report_id":  reportID,
			"request_id": requestID,
			"kind":       kind,
		}),
	}
}

// ReportApprovalRecordedEvent is raised for every approval vote in the chain.
type ReportApprovalRecordedEvent struct {
	shared.BaseEvent
}

func NewReportApprovalRecordedEvent(reportID, requestID, role string, finalized bool) *ReportApprovalRecordedEvent {
	return &ReportApprovalRecordedEvent{
		BaseEvent: shared.NewBaseEvent(ReportApprovalRecordedEventName, reportID, map[string]any{
			"report_id":  reportID,
			"request_id": requestID,
			"role":       role,
			"finalized":  finalized,
		}),
	}
}

// ReportRejectedEvent is raised when an approver rejects, sending the report back for rework.
type ReportRejectedEvent struct {
	shared.BaseEvent
}

func NewReportRejectedEvent(reportID, requestID, actorID, comment string) *ReportRejectedEvent {
	return &ReportRejectedEvent{
		BaseEvent: shared.NewBaseEvent(ReportRejectedEventName, reportID, map[string]any{
			"report_id":  reportID,
			"request_id": requestID,
			"actor_id":   actorID,
			"comment":    comment,
		}),
	}
}
