package mysql

import (
	"context"

	"maintdesk/domain/request"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// FeedbackRepository MySQL/GORM implementation of the feedback
// repository. Feedback rows are insert-only.
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository Create feedback repository
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save inserts one feedback entry.
func (r *FeedbackRepository) Save(ctx context.Context, f *request.Feedback) error {
	return r.getDB(ctx).Create(po.FromFeedbackDomain(f)).Error
}

// FindByRequestID lists feedback for a request in thread order.
func (r *FeedbackRepository) FindByRequestID(ctx context.Context, requestID string) ([]*request.Feedback, error) {
	var feedbackPOs []po.FeedbackPO
	if err := r.getDB(ctx).Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&feedbackPOs).Error; err != nil {
		return nil, err
	}

	feedback := make([]*request.Feedback, len(feedbackPOs))
	for i, f := range feedbackPOs {
		feedback[i] = f.ToDomain()
	}
	return feedback, nil
}

// Compile-time interface implementation check
var _ request.FeedbackRepository = (*FeedbackRepository)(nil)
