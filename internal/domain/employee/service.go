package employee

import (
	"context"
	"log/slog"
	"strings"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) GetByPrincipal(ctx context.Context, principalID string) (Profile, error) {
	return s.Store.FindByPrincipal(ctx, principalID)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Profile, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func (s *Service) History(ctx context.Context, profileID string) ([]StatusChange, error) {
	return s.Store.History(ctx, profileID)
}

func (s *Service) Create(ctx context.Context, p Profile) (string, error) {
	if strings.TrimSpace(p.PrincipalID) == "" {
		return "", ErrValidation
	}
	if p.Status == "" {
		p.Status = StatusOnboarding
	}
	if !ValidStatus(p.Status) || Terminal(p.Status) {
		return "", ErrValidation
	}
	return s.Store.Create(ctx, p)
}

func (s *Service) UpdateMetadata(ctx context.Context, id string, p Profile) error {
	return s.Store.UpdateMetadata(ctx, id, p)
}

// SetStatus moves a profile through the status machine and appends the
// immutable history entry. The conditional update guards against concurrent
// transitions from the same state.
func (s *Service) SetStatus(ctx context.Context, actorID, profileID, to, reason string) (Profile, error) {
	current, err := s.Store.FindByID(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}
	if err := ValidateTransition(current.Status, to); err != nil {
		return Profile{}, err
	}

	moved, err := s.Store.TransitionStatus(ctx, profileID, current.Status, to)
	if err != nil {
		return Profile{}, err
	}
	if !moved {
		// Lost the race: the row left the expected state between read and write.
		return Profile{}, ErrInvalidTransition
	}

	change := StatusChange{
		ProfileID:  profileID,
		FromStatus: current.Status,
		ToStatus:   to,
		Reason:     reason,
		ActorID:    actorID,
	}
	if err := s.Store.AppendHistory(ctx, change); err != nil {
		slog.Warn("status history append failed", "profileId", profileID, "err", err)
	}

	return s.Store.FindByID(ctx, profileID)
}

func (s *Service) Terminate(ctx context.Context, actorID, profileID, reason string) (Profile, error) {
	return s.SetStatus(ctx, actorID, profileID, StatusTerminated, reason)
}

// ActivateIfDocumentsVerified is called after an onboarding document reaches
// verified. It is a no-op unless the profile is onboarding with no pending
// documents left.
func (s *Service) ActivateIfDocumentsVerified(ctx context.Context, actorID, profileID string) (bool, error) {
	activated, err := s.Store.ActivateIfDocumentsVerified(ctx, profileID)
	if err != nil || !activated {
		return false, err
	}

	change := StatusChange{
		ProfileID:  profileID,
		FromStatus: StatusOnboarding,
		ToStatus:   StatusActive,
		Reason:     ReasonDocumentsVerified,
		ActorID:    actorID,
	}
	if err := s.Store.AppendHistory(ctx, change); err != nil {
		slog.Warn("status history append failed", "profileId", profileID, "err", err)
	}
	return true, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.SoftDelete(ctx, id)
}
