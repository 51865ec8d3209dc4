package po

import (
	"time"

	"maintdesk/domain/report"
	"maintdesk/domain/shared"
)

// ReportPO persistence object for the reports table. Inspection and
// repair reports share one table; inspection-only columns stay empty
// for repair rows.
type ReportPO struct {
	ID             string    `gorm:"primaryKey;size:64"`
	AppointmentID  string    `gorm:"size:64;index;not null"`
	RequestID      string    `gorm:"size:64;index;not null"`
	Kind           string    `gorm:"size:20;index;not null"`
	AuthorID       string    `gorm:"size:64;not null"`
	Description    string    `gorm:"size:2000"`
	Solution       string    `gorm:"size:2000"`
	FaultOwner     string    `gorm:"size:20"`
	SolutionType   string    `gorm:"size:20"`
	ResidentFacing bool      `gorm:"not null"`
	Status         string    `gorm:"size:30;index;not null"`
	Version        int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (ReportPO) TableName() string {
	return "reports"
}

// ReportApprovalPO persistence object for the report_approvals audit
// table. Rows are insert-only; chain position is derived from insertion
// order.
type ReportApprovalPO struct {
	ID         string    `gorm:"primaryKey;size:128"`
	ReportID   string    `gorm:"size:64;index;not null"`
	ApproverID string    `gorm:"size:64;not null"`
	Role       string    `gorm:"size:20;not null"`
	Decision   string    `gorm:"size:20;not null"`
	Comment    string    `gorm:"size:1000"`
	RecordedAt time.Time `gorm:"not null"`
}

func (ReportApprovalPO) TableName() string {
	return "report_approvals"
}

// FromReportDomain converts the aggregate to persistence objects. Only
// approvals recorded since load are returned.
func FromReportDomain(r *report.Report) (*ReportPO, []ReportApprovalPO) {
	reportPO := &ReportPO{
		ID:             r.ID(),
		AppointmentID:  r.AppointmentID(),
		RequestID:      r.RequestID(),
		Kind:           string(r.Kind()),
		AuthorID:       r.AuthorID(),
		Description:    r.Description(),
		Solution:       r.Solution(),
		FaultOwner:     string(r.FaultOwner()),
		SolutionType:   string(r.SolutionType()),
		ResidentFacing: r.ResidentFacing(),
		Status:         string(r.Status()),
		Version:        r.Version(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}

	added := r.AddedApprovals()
	approvalPOs := make([]ReportApprovalPO, len(added))
	for i, a := range added {
		approvalPOs[i] = ReportApprovalPO{
			ID:         a.ID(),
			ReportID:   r.ID(),
			ApproverID: a.ApproverID(),
			Role:       string(a.Role()),
			Decision:   string(a.Decision()),
			Comment:    a.Comment(),
			RecordedAt: a.RecordedAt(),
		}
	}

	return reportPO, approvalPOs
}

// ToDomain converts persistence objects back to the aggregate. Approval
// rows must be supplied in insertion order.
func (po *ReportPO) ToDomain(approvalPOs []ReportApprovalPO) *report.Report {
	approvals := make([]report.Approval, len(approvalPOs))
	for i, a := range approvalPOs {
		approvals[i] = report.RebuildApproval(report.ApprovalReconstructionDTO{
			ID:         a.ID,
			ApproverID: a.ApproverID,
			Role:       shared.Role(a.Role),
			Decision:   report.Decision(a.Decision),
			Comment:    a.Comment,
			RecordedAt: a.RecordedAt,
		})
	}

	return report.Rebuild(report.ReconstructionDTO{
		ID:             po.ID,
		AppointmentID:  po.AppointmentID,
		RequestID:      po.RequestID,
		Kind:           report.Kind(po.Kind),
		AuthorID:       po.AuthorID,
		Description:    po.Description,
		Solution:       po.Solution,
		FaultOwner:     report.FaultOwner(po.FaultOwner),
		SolutionType:   report.SolutionType(po.SolutionType),
		ResidentFacing: po.ResidentFacing,
		Status:         report.Status(po.Status),
		Version:        po.Version,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
		Approvals:      approvals,
	})
}
