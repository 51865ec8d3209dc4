package mysql

import (
	"context"
	"errors"

	"maintdesk/domain/request"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// RequestRepository MySQL/GORM implementation of the repair request
// repository. GORM associations are prohibited; child tables are
// managed by hand so aggregate boundaries stay visible.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository Create repair request repository
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *RequestRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the aggregate plus its newly appended tracking rows.
// Updates run under a strict optimistic version check; a lost race
// surfaces as ConcurrentModification so the unit of work can retry.
func (r *RequestRepository) Save(ctx context.Context, req *request.RepairRequest) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, req)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, req)
	})
}

func (r *RequestRepository) saveWithTx(tx *gorm.DB, req *request.RepairRequest) error {
	requestPO, trackingPOs := po.FromRequestDomain(req)

	if req.IsNew() {
		if err := tx.Create(requestPO).Error; err != nil {
			return err
		}
	} else {
		expectedVersion := req.Version()

		result := tx.Model(&po.RepairRequestPO{}).
			Where("id = ? AND version = ?", req.ID(), expectedVersion).
			Updates(map[string]interface{}{
				"status":          requestPO.Status,
				"acceptance_time": requestPO.AcceptanceTime,
				"version":         expectedVersion + 1,
				"updated_at":      requestPO.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&po.RepairRequestPO{}).Where("id = ?", req.ID()).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return request.NewRequestNotFoundError(req.ID())
			}
			return request.NewConcurrentModificationError(req.ID())
		}

		req.IncrementVersionForSave()
	}

	// Tracking rows are append-only, never updated or deleted.
	if len(trackingPOs) > 0 {
		if err := tx.Create(&trackingPOs).Error; err != nil {
			return err
		}
	}

	req.ClearDirtyTracking()
	return nil
}

// FindByID loads the aggregate with its full tracking trail.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*request.RepairRequest, error) {
	db := r.getDB(ctx)

	var requestPO po.RepairRequestPO
	result := db.First(&requestPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, request.NewRequestNotFoundError(id)
		}
		return nil, result.Error
	}

	trackingPOs, err := r.loadTracking(db, id)
	if err != nil {
		return nil, err
	}

	return requestPO.ToDomain(trackingPOs), nil
}

// FindByRequesterID lists a requester's repair requests, newest first.
func (r *RequestRepository) FindByRequesterID(ctx context.Context, requesterID string) ([]*request.RepairRequest, error) {
	db := r.getDB(ctx)

	var requestPOs []po.RepairRequestPO
	if err := db.Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requestPOs).Error; err != nil {
		return nil, err
	}

	return r.toDomainList(db, requestPOs)
}

// FindByStatus lists requests in a given status, oldest first, capped
// at limit. The reconciliation worker feeds off this.
func (r *RequestRepository) FindByStatus(ctx context.Context, status request.Status, limit int) ([]*request.RepairRequest, error) {
	db := r.getDB(ctx)

	var requestPOs []po.RepairRequestPO
	if err := db.Where("status = ?", string(status)).
		Order("created_at ASC").
		Limit(limit).
		Find(&requestPOs).Error; err != nil {
		return nil, err
	}

	return r.toDomainList(db, requestPOs)
}

func (r *RequestRepository) loadTracking(db *gorm.DB, requestID string) ([]po.RequestTrackingPO, error) {
	var trackingPOs []po.RequestTrackingPO
	if err := db.Where("request_id = ?", requestID).
		Order("recorded_at ASC").
		Find(&trackingPOs).Error; err != nil {
		return nil, err
	}
	return trackingPOs, nil
}

func (r *RequestRepository) toDomainList(db *gorm.DB, requestPOs []po.RepairRequestPO) ([]*request.RepairRequest, error) {
	requests := make([]*request.RepairRequest, len(requestPOs))
	for i, requestPO := range requestPOs {
		trackingPOs, err := r.loadTracking(db, requestPO.ID)
		if err != nil {
			return nil, err
		}
		requests[i] = requestPO.ToDomain(trackingPOs)
	}
	return requests, nil
}

// Compile-time interface implementation check
var _ request.Repository = (*RequestRepository)(nil)
