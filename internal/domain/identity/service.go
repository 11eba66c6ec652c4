package identity

import (
	"context"
	"log/slog"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Resolve maps an authenticated principal id to its role, permission set and
// status. Suspended and terminated accounts short-circuit with
// ErrAccountInactive; the caller must abort the request. The last-seen stamp
// is best effort and never fails the resolution.
func (s *Service) Resolve(ctx context.Context, principalID string) (ResolvedPrincipal, error) {
	p, err := s.Store.FindByID(ctx, principalID)
	if err != nil {
		return ResolvedPrincipal{}, err
	}
	if Inactive(p.Status) {
		return ResolvedPrincipal{}, ErrAccountInactive
	}

	if err := s.Store.TouchLastSeen(ctx, principalID); err != nil {
		slog.Warn("last seen update failed", "principalId", principalID, "err", err)
	}

	return ResolvedPrincipal{
		ID:          p.ID,
		Role:        p.Role,
		Permissions: RolePermissions[p.Role],
		ManagerID:   p.ManagerID,
		Department:  p.Department,
		Status:      p.Status,
	}, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (AuthPrincipal, error) {
	return s.Store.FindByEmail(ctx, email)
}

func (s *Service) FindByID(ctx context.Context, id string) (Principal, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) FindReports(ctx context.Context, managerID string) ([]Principal, error) {
	return s.Store.FindReports(ctx, managerID)
}

func (s *Service) IsManagerOf(ctx context.Context, managerID, principalID string) (bool, error) {
	return s.Store.IsManagerOf(ctx, managerID, principalID)
}
