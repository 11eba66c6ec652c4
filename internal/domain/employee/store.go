package employee

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const profileColumns = `
  id, principal_id, job_title, department, COALESCE(manager_id::text, ''),
  hire_date, salary, is_probation, status, created_at, updated_at
`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.PrincipalID, &p.JobTitle, &p.Department, &p.ManagerID,
		&p.HireDate, &p.Salary, &p.IsProbation, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Store) FindByID(ctx context.Context, id string) (Profile, error) {
	return scanProfile(s.DB.QueryRow(ctx, `
    SELECT `+profileColumns+`
    FROM employee_profiles
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
}

func (s *Store) FindByPrincipal(ctx context.Context, principalID string) (Profile, error) {
	return scanProfile(s.DB.QueryRow(ctx, `
    SELECT `+profileColumns+`
    FROM employee_profiles
    WHERE principal_id = $1 AND deleted_at IS NULL
  `, principalID))
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Profile, int, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + itoa(len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where += " AND department = $" + itoa(len(args))
	}
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		where += " AND manager_id = $" + itoa(len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_profiles WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, `
    SELECT `+profileColumns+`
    FROM employee_profiles
    WHERE `+where+`
    ORDER BY created_at DESC
    LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, p Profile) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_profiles (principal_id, job_title, department, manager_id, hire_date, salary, is_probation, status)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5,$6,$7,$8)
    RETURNING id
  `, p.PrincipalID, p.JobTitle, p.Department, p.ManagerID, p.HireDate, p.Salary, p.IsProbation, p.Status).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return "", ErrDuplicateProfile
	}
	return id, err
}

func (s *Store) UpdateMetadata(ctx context.Context, id string, p Profile) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_profiles
    SET job_title = $1, department = $2, manager_id = NULLIF($3,'')::uuid,
        hire_date = $4, salary = $5, is_probation = $6, updated_at = now()
    WHERE id = $7 AND deleted_at IS NULL
  `, p.JobTitle, p.Department, p.ManagerID, p.HireDate, p.Salary, p.IsProbation, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus performs the guarded move as a single conditional update
// so concurrent requests cannot both win the same transition.
func (s *Store) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_profiles
    SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3 AND deleted_at IS NULL
  `, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ActivateIfDocumentsVerified flips an onboarding profile to active when no
// pending documents remain, in one statement.
func (s *Store) ActivateIfDocumentsVerified(ctx context.Context, profileID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_profiles
    SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3 AND deleted_at IS NULL
      AND NOT EXISTS (
        SELECT 1 FROM documents d
        WHERE d.employee_profile_id = $2 AND d.verification = 'pending' AND d.deleted_at IS NULL
      )
  `, StatusActive, profileID, StatusOnboarding)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendHistory(ctx context.Context, change StatusChange) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_status_history (profile_id, from_status, to_status, reason, actor_id)
    VALUES ($1,$2,$3,$4,NULLIF($5,'')::uuid)
  `, change.ProfileID, change.FromStatus, change.ToStatus, change.Reason, change.ActorID)
	return err
}

func (s *Store) History(ctx context.Context, profileID string) ([]StatusChange, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, profile_id, from_status, to_status, reason, COALESCE(actor_id::text, ''), created_at
    FROM employee_status_history
    WHERE profile_id = $1
    ORDER BY created_at
  `, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.FromStatus, &c.ToStatus, &c.Reason, &c.ActorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_profiles SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
