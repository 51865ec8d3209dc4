package request

import (
	"context"
	"errors"
)

// maxParentDepth bounds the ancestor walk; the follow-up tree is shallow
// in practice and a longer chain indicates corrupted data.
const maxParentDepth = 32

// DomainService holds request rules that span aggregates: the parent
// tree is validated against persisted ancestors at write time.
type DomainService struct {
	repo Repository
}

// NewDomainService creates the request domain service.
func NewDomainService(repo Repository) *DomainService {
	return &DomainService{repo: repo}
}

// ValidateParent checks that parentID exists and that linking childID
// under it cannot form a cycle. Called before inserting a request with a
// parent, and again if a parent link is ever rewritten.
func (s *DomainService) ValidateParent(ctx context.Context, childID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == childID {
		return NewParentCycleError(childID, parentID)
	}

	// Walk ancestors from the proposed parent; meeting childID on the way
	// up means the link would close a cycle.
	current := parentID
	for depth := 0; current != ""; depth++ {
		if depth >= maxParentDepth {
			return NewParentCycleError(childID, parentID)
		}
		ancestor, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, ErrRequestNotFound) && current == parentID {
				return ErrParentNotFound
			}
			return err
		}
		if ancestor.ID() == childID {
			return NewParentCycleError(childID, parentID)
		}
		current = ancestor.ParentRequestID()
	}
	return nil
}
