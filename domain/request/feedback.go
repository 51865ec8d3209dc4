package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feedback is a post-completion rating for a repair request, optionally
// threaded as a reply to earlier feedback.
type Feedback struct {
	id               string
	requestID        string
	authorID         string
	parentFeedbackID string
	rating           int
	comment          string
	createdAt        time.Time
}

// NewFeedback validates and creates a feedback entry. The caller ensures
// the referenced request is Completed.
func NewFeedback(requestID, authorID, parentFeedbackID, comment string, rating int) (*Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrFeedbackRating
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate feedback ID: %w", err)
	}
	return &Feedback{
		id:               id.String(),
		requestID:        requestID,
		authorID:         authorID,
		parentFeedbackID: parentFeedbackID,
		rating:           rating,
		comment:          comment,
		createdAt:        time.Now(),
	}, nil
}

func (f *Feedback) ID() string               { return f.id }
func (f *Feedback) RequestID() string        { return f.requestID }
func (f *Feedback) AuthorID() string         { return f.authorID }
func (f *Feedback) ParentFeedbackID() string { return f.parentFeedbackID }
func (f *Feedback) Rating() int              { return f.rating }
func (f *Feedback) Comment() string          { return f.comment }
func (f *Feedback) CreatedAt() time.Time     { return f.createdAt }

// FeedbackReconstructionDTO rebuilds feedback from storage.
type FeedbackReconstructionDTO struct {
	ID               string
	RequestID        string
	AuthorID         string
	ParentFeedbackID string
	Rating           int
	Comment          string
	CreatedAt        time.Time
}

// RebuildFeedback reconstructs a Feedback from persisted state.
func RebuildFeedback(dto FeedbackReconstructionDTO) *Feedback {
	return &Feedback{
		id:               dto.ID,
		requestID:        dto.RequestID,
		authorID:         dto.AuthorID,
		parentFeedbackID: dto.ParentFeedbackID,
		rating:           dto.Rating,
		comment:          dto.Comment,
		createdAt:        dto.CreatedAt,
	}
}
