package reports

import (
	"context"

	"peopleops/internal/domain/identity"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) EmployeeSummary(ctx context.Context, p identity.ResolvedPrincipal) (EmployeeSummary, error) {
	return s.Store.EmployeeSummary(ctx, ScopeFor(p))
}

func (s *Service) WarningSummary(ctx context.Context, p identity.ResolvedPrincipal) (WarningSummary, error) {
	return s.Store.WarningSummary(ctx, ScopeFor(p))
}

func (s *Service) AppraisalSummary(ctx context.Context, p identity.ResolvedPrincipal) (AppraisalSummary, error) {
	return s.Store.AppraisalSummary(ctx, ScopeFor(p))
}

func (s *Service) ProjectSummary(ctx context.Context, p identity.ResolvedPrincipal) (ProjectSummary, error) {
	return s.Store.ProjectSummary(ctx, ScopeFor(p))
}

func (s *Service) DocumentSummary(ctx context.Context, p identity.ResolvedPrincipal) (DocumentSummary, error) {
	return s.Store.DocumentSummary(ctx, ScopeFor(p))
}

func (s *Service) Dashboard(ctx context.Context, p identity.ResolvedPrincipal) (Dashboard, error) {
	scope := ScopeFor(p)
	var out Dashboard
	var err error
	if out.Employees, err = s.Store.EmployeeSummary(ctx, scope); err != nil {
		return out, err
	}
	if out.Warnings, err = s.Store.WarningSummary(ctx, scope); err != nil {
		return out, err
	}
	if out.Appraisals, err = s.Store.AppraisalSummary(ctx, scope); err != nil {
		return out, err
	}
	if out.Projects, err = s.Store.ProjectSummary(ctx, scope); err != nil {
		return out, err
	}
	if out.Documents, err = s.Store.DocumentSummary(ctx, scope); err != nil {
		return out, err
	}
	return out, nil
}
