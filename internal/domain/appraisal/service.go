package appraisal

import (
	"context"
	"strings"
	"time"

	"peopleops/internal/domain/identity"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Appraisal, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Appraisal, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func (s *Service) Create(ctx context.Context, a Appraisal) (Appraisal, error) {
	if strings.TrimSpace(a.EmployeeID) == "" || strings.TrimSpace(a.ReviewerID) == "" {
		return Appraisal{}, ErrValidation
	}
	if a.AppraisalDate.IsZero() {
		return Appraisal{}, ErrValidation
	}
	for _, g := range a.Goals {
		if strings.TrimSpace(g.Title) == "" || g.Weightage < 0 || g.Weightage > 100 {
			return Appraisal{}, ErrValidation
		}
	}

	id, err := s.Store.Create(ctx, a)
	if err != nil {
		return Appraisal{}, err
	}
	return s.Store.FindByID(ctx, id)
}

// SubmitSelfAssessment is subject-only (enforced by the access engine at the
// boundary) and valid from draft or in_progress; it forces in_progress.
func (s *Service) SubmitSelfAssessment(ctx context.Context, id, text string) (Appraisal, error) {
	if strings.TrimSpace(text) == "" {
		return Appraisal{}, ErrValidation
	}
	current, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Appraisal{}, err
	}
	if !CanSubmitSelfAssessment(current.Status) {
		return Appraisal{}, ErrInvalidTransition
	}

	moved, err := s.Store.SubmitSelfAssessment(ctx, id, text)
	if err != nil {
		return Appraisal{}, err
	}
	if !moved {
		return Appraisal{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

type ReviewSubmission struct {
	Review string
	Rating float64
	// SendBack requests needs_review instead of completed.
	SendBack bool
}

// SubmitReview is restricted to the designated reviewer (admin override
// aside) and valid from in_progress/needs_review. Completion re-checks the
// required fields and fails with ErrPreconditionFailed when any is missing.
func (s *Service) SubmitReview(ctx context.Context, actor identity.ResolvedPrincipal, id string, sub ReviewSubmission) (Appraisal, error) {
	if strings.TrimSpace(sub.Review) == "" || !ValidRating(sub.Rating) {
		return Appraisal{}, ErrValidation
	}

	current, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Appraisal{}, err
	}
	if actor.Role != identity.RoleAdmin && actor.ID != current.ReviewerID {
		return Appraisal{}, ErrNotReviewer
	}
	if !CanSubmitReview(current.Status) {
		return Appraisal{}, ErrInvalidTransition
	}

	target := StatusCompleted
	if sub.SendBack {
		target = StatusNeedsReview
	}
	if target == StatusCompleted {
		candidate := current
		candidate.Review = sub.Review
		if err := ValidateCompletion(candidate); err != nil {
			return Appraisal{}, err
		}
	}

	moved, err := s.Store.SubmitReview(ctx, id, sub.Review, sub.Rating, target, time.Now().UTC())
	if err != nil {
		return Appraisal{}, err
	}
	if !moved {
		return Appraisal{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) UpdateGoals(ctx context.Context, id string, goals []Goal) (Appraisal, error) {
	for _, g := range goals {
		if strings.TrimSpace(g.Title) == "" || g.Weightage < 0 || g.Weightage > 100 {
			return Appraisal{}, ErrValidation
		}
		if g.Rating != nil && !ValidRating(*g.Rating) {
			return Appraisal{}, ErrValidation
		}
	}
	moved, err := s.Store.UpdateGoals(ctx, id, goals)
	if err != nil {
		return Appraisal{}, err
	}
	if !moved {
		if _, findErr := s.Store.FindByID(ctx, id); findErr != nil {
			return Appraisal{}, findErr
		}
		return Appraisal{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id string) (Appraisal, error) {
	moved, err := s.Store.Cancel(ctx, id)
	if err != nil {
		return Appraisal{}, err
	}
	if !moved {
		if _, findErr := s.Store.FindByID(ctx, id); findErr != nil {
			return Appraisal{}, findErr
		}
		return Appraisal{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.SoftDelete(ctx, id)
}
