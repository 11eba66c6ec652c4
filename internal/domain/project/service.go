package project

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	p, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return p, err
	}
	Derive(&p, time.Now().UTC())
	return p, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Project, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

// Create sets up the project with its manager as the first team member at
// full allocation.
func (s *Service) Create(ctx context.Context, p Project) (Project, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.ManagerID) == "" {
		return Project{}, ErrValidation
	}
	if p.Status == "" {
		p.Status = StatusPlanned
	}
	if !ValidStatus(p.Status) {
		return Project{}, ErrValidation
	}

	active, err := s.Store.PrincipalActive(ctx, p.ManagerID)
	if err != nil {
		return Project{}, err
	}
	if !active {
		return Project{}, ErrManagerNotActive
	}

	id, err := s.Store.Create(ctx, p)
	if err != nil {
		return Project{}, err
	}
	if _, err := s.Store.UpsertMember(ctx, id, Member{
		PrincipalID: p.ManagerID,
		Role:        "manager",
		Allocation:  FullAllocation,
		StartDate:   time.Now().UTC(),
	}); err != nil {
		return Project{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, p Project) (Project, error) {
	if strings.TrimSpace(p.Name) == "" || !ValidStatus(p.Status) {
		return Project{}, ErrValidation
	}
	if err := s.Store.Update(ctx, id, p); err != nil {
		return Project{}, err
	}
	return s.Get(ctx, id)
}

// AddMember enforces the membership invariants: the target must be an active
// principal, allocation in (0,100], and at most one active entry per
// principal. A soft-removed entry is reactivated in place with the new role,
// allocation and start date.
func (s *Service) AddMember(ctx context.Context, projectID string, m Member) (Project, error) {
	if strings.TrimSpace(m.PrincipalID) == "" || !ValidAllocation(m.Allocation) {
		return Project{}, ErrValidation
	}
	if m.Role == "" {
		m.Role = "member"
	}
	if m.StartDate.IsZero() {
		m.StartDate = time.Now().UTC()
	}

	if _, err := s.Store.FindByID(ctx, projectID); err != nil {
		return Project{}, err
	}
	active, err := s.Store.PrincipalActive(ctx, m.PrincipalID)
	if err != nil {
		return Project{}, err
	}
	if !active {
		return Project{}, ErrMemberNotActive
	}

	added, err := s.Store.UpsertMember(ctx, projectID, m)
	if err != nil {
		return Project{}, err
	}
	if !added {
		return Project{}, ErrDuplicateMember
	}
	return s.Get(ctx, projectID)
}

// RemoveMember soft-removes a team entry. The current manager cannot be
// removed; a manager reassignment must happen first.
func (s *Service) RemoveMember(ctx context.Context, projectID, principalID string) (Project, error) {
	p, err := s.Store.FindByID(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	if p.ManagerID == principalID {
		return Project{}, ErrManagerOnTeam
	}

	removed, err := s.Store.DeactivateMember(ctx, projectID, principalID)
	if err != nil {
		return Project{}, err
	}
	if !removed {
		return Project{}, ErrMemberNotFound
	}
	return s.Get(ctx, projectID)
}

// ReassignManager validates the new manager, demotes the old manager's team
// entry, adds the new manager at full allocation and records the actor.
func (s *Service) ReassignManager(ctx context.Context, projectID, newManagerID, actorID string) (Project, error) {
	if strings.TrimSpace(newManagerID) == "" {
		return Project{}, ErrValidation
	}
	p, err := s.Store.FindByID(ctx, projectID)
	if err != nil {
		return Project{}, err
	}

	active, err := s.Store.PrincipalActive(ctx, newManagerID)
	if err != nil {
		return Project{}, err
	}
	if !active {
		return Project{}, ErrManagerNotActive
	}

	if err := s.Store.ReassignManager(ctx, projectID, p.ManagerID, newManagerID, actorID); err != nil {
		return Project{}, err
	}
	return s.Get(ctx, projectID)
}

func (s *Service) AddTask(ctx context.Context, t Task) (Project, error) {
	if strings.TrimSpace(t.Title) == "" {
		return Project{}, ErrValidation
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if !ValidTaskStatus(t.Status) {
		return Project{}, ErrValidation
	}
	if _, err := s.Store.FindByID(ctx, t.ProjectID); err != nil {
		return Project{}, err
	}
	if _, err := s.Store.CreateTask(ctx, t); err != nil {
		return Project{}, err
	}
	return s.Get(ctx, t.ProjectID)
}

func (s *Service) UpdateTaskStatus(ctx context.Context, projectID, taskID, status string) (Project, error) {
	if !ValidTaskStatus(status) {
		return Project{}, ErrValidation
	}
	updated, err := s.Store.UpdateTaskStatus(ctx, projectID, taskID, status)
	if err != nil {
		return Project{}, err
	}
	if !updated {
		return Project{}, ErrTaskNotFound
	}
	return s.Get(ctx, projectID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.SoftDelete(ctx, id)
}
