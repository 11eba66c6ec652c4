package project

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const projectColumns = `
  id, name, COALESCE(description, ''), manager_id, status, start_date, end_date,
  created_by, COALESCE(updated_by::text, ''), created_at, updated_at
`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ManagerID, &p.Status,
		&p.StartDate, &p.EndDate, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Store) FindByID(ctx context.Context, id string) (Project, error) {
	p, err := scanProject(s.DB.QueryRow(ctx, `
    SELECT `+projectColumns+`
    FROM projects
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
	if err != nil {
		return p, err
	}
	if p.Team, err = s.Team(ctx, id); err != nil {
		return p, err
	}
	if p.Tasks, err = s.Tasks(ctx, id); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Store) Team(ctx context.Context, projectID string) ([]Member, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT principal_id, role, allocation, is_active, start_date, end_date
    FROM project_members
    WHERE project_id = $1
    ORDER BY start_date
  `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.PrincipalID, &m.Role, &m.Allocation, &m.IsActive, &m.StartDate, &m.EndDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Tasks(ctx context.Context, projectID string) ([]Task, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, project_id, title, COALESCE(assignee_id::text, ''), status, due_date, created_at
    FROM project_tasks
    WHERE project_id = $1
    ORDER BY created_at
  `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.AssigneeID, &t.Status, &t.DueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Project, int, error) {
	where := "p.deleted_at IS NULL"
	args := []any{}
	n := func() string { return strconv.Itoa(len(args)) }
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		where += " AND p.manager_id = $" + n()
	}
	if filter.MemberID != "" {
		args = append(args, filter.MemberID)
		where += ` AND EXISTS (
      SELECT 1 FROM project_members m
      WHERE m.project_id = p.id AND m.principal_id = $` + n() + ` AND m.is_active)`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND p.status = $" + n()
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM projects p WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitArg := n()
	args = append(args, offset)
	offsetArg := n()
	rows, err := s.DB.Query(ctx, `
    SELECT `+projectColumns+`
    FROM projects p
    WHERE `+where+`
    ORDER BY p.created_at DESC
    LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, p Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (name, description, manager_id, status, start_date, end_date, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, p.Name, p.Description, p.ManagerID, p.Status, p.StartDate, p.EndDate, p.CreatedBy).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, id string, p Project) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5,
        updated_by = $6, updated_at = now()
    WHERE id = $7 AND deleted_at IS NULL
  `, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.UpdatedBy, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) PrincipalActive(ctx context.Context, principalID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM principals
    WHERE id = $1 AND status = 'active' AND deleted_at IS NULL
  `, principalID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpsertMember adds a member or reactivates a previously removed entry in
// place. The WHERE clause on the conflict update leaves an already-active
// entry untouched, so zero rows affected means a duplicate active member.
func (s *Store) UpsertMember(ctx context.Context, projectID string, m Member) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO project_members (project_id, principal_id, role, allocation, is_active, start_date)
    VALUES ($1,$2,$3,$4,true,$5)
    ON CONFLICT (project_id, principal_id) DO UPDATE
    SET role = EXCLUDED.role, allocation = EXCLUDED.allocation,
        start_date = EXCLUDED.start_date, is_active = true, end_date = NULL
    WHERE project_members.is_active = false
  `, projectID, m.PrincipalID, m.Role, m.Allocation, m.StartDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeactivateMember soft-removes a team entry; the row is kept so a later
// re-add reactivates it.
func (s *Store) DeactivateMember(ctx context.Context, projectID, principalID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE project_members
    SET is_active = false, end_date = now()
    WHERE project_id = $1 AND principal_id = $2 AND is_active
  `, projectID, principalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReassignManager swaps the project manager in one transaction: demote the
// old manager's team entry, upsert the new manager at full allocation and
// update the project record.
func (s *Store) ReassignManager(ctx context.Context, projectID, oldManagerID, newManagerID, actorID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if oldManagerID != newManagerID {
		if _, err := tx.Exec(ctx, `
      UPDATE project_members
      SET is_active = false, end_date = now()
      WHERE project_id = $1 AND principal_id = $2 AND is_active
    `, projectID, oldManagerID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO project_members (project_id, principal_id, role, allocation, is_active, start_date)
    VALUES ($1,$2,'manager',$3,true,$4)
    ON CONFLICT (project_id, principal_id) DO UPDATE
    SET role = 'manager', allocation = EXCLUDED.allocation, is_active = true, end_date = NULL
  `, projectID, newManagerID, FullAllocation, time.Now().UTC()); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
    UPDATE projects
    SET manager_id = $1, updated_by = $2, updated_at = now()
    WHERE id = $3 AND deleted_at IS NULL
  `, newManagerID, actorID, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) CreateTask(ctx context.Context, t Task) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO project_tasks (project_id, title, assignee_id, status, due_date)
    VALUES ($1,$2,NULLIF($3,'')::uuid,$4,$5)
    RETURNING id
  `, t.ProjectID, t.Title, t.AssigneeID, t.Status, t.DueDate).Scan(&id)
	return id, err
}

func (s *Store) UpdateTaskStatus(ctx context.Context, projectID, taskID, status string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE project_tasks SET status = $1 WHERE id = $2 AND project_id = $3
  `, status, taskID, projectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
