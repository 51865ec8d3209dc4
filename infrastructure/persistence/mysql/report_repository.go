package mysql

import (
	"context"
	"errors"

	"maintdesk/domain/report"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// ReportRepository MySQL/GORM implementation of the report repository.
// Inspection and repair reports share one table; approval rows are an
// insert-only audit trail.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository Create report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the report plus any approvals recorded since load.
// Updates run under a strict optimistic version check.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, rep)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, rep)
	})
}

func (r *ReportRepository) saveWithTx(tx *gorm.DB, rep *report.Report) error {
	reportPO, approvalPOs := po.FromReportDomain(rep)

	if rep.IsNew() {
		if err := tx.Create(reportPO).Error; err != nil {
			return err
		}
	} else {
		expectedVersion := rep.Version()

		result := tx.Model(&po.ReportPO{}).
			Where("id = ? AND version = ?", rep.ID(), expectedVersion).
			Updates(map[string]interface{}{
				"status":     reportPO.Status,
				"version":    expectedVersion + 1,
				"updated_at": reportPO.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&po.ReportPO{}).Where("id = ?", rep.ID()).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return report.NewReportNotFoundError(rep.ID())
			}
			return report.NewConcurrentModificationError(rep.ID())
		}

		rep.IncrementVersionForSave()
	}

	// Approval rows are append-only, never updated or deleted.
	if len(approvalPOs) > 0 {
		if err := tx.Create(&approvalPOs).Error; err != nil {
			return err
		}
	}

	rep.ClearDirtyTracking()
	return nil
}

// FindByID loads the report with its full approval trail.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*report.Report, error) {
	db := r.getDB(ctx)

	var reportPO po.ReportPO
	result := db.First(&reportPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, report.NewReportNotFoundError(id)
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, reportPO)
}

// FindByAppointmentID loads the report of the given kind filed against
// an appointment. Each appointment carries at most one report per kind.
func (r *ReportRepository) FindByAppointmentID(ctx context.Context, appointmentID string, kind report.Kind) (*report.Report, error) {
	db := r.getDB(ctx)

	var reportPO po.ReportPO
	result := db.Where("appointment_id = ? AND kind = ?", appointmentID, string(kind)).First(&reportPO)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, report.NewReportNotFoundError(appointmentID)
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, reportPO)
}

// FindByRequestID lists all reports filed over a request's lifetime,
// oldest first.
func (r *ReportRepository) FindByRequestID(ctx context.Context, requestID string) ([]*report.Report, error) {
	db := r.getDB(ctx)

	var reportPOs []po.ReportPO
	if err := db.Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&reportPOs).Error; err != nil {
		return nil, err
	}

	reports := make([]*report.Report, 0, len(reportPOs))
	for _, p := range reportPOs {
		rep, err := r.loadAggregate(db, p)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (r *ReportRepository) loadAggregate(db *gorm.DB, reportPO po.ReportPO) (*report.Report, error) {
	var approvalPOs []po.ReportApprovalPO
	if err := db.Where("report_id = ?", reportPO.ID).
		Order("recorded_at ASC").
		Find(&approvalPOs).Error; err != nil {
		return nil, err
	}
	return reportPO.ToDomain(approvalPOs), nil
}
