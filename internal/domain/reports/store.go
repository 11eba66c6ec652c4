package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// scopeClause narrows a query by the subject principal column. The column
// must identify whose record a row is about (profile owner, warned employee,
// appraised employee).
func scopeClause(scope Scope, subjectCol string, args *[]any) string {
	if scope.All {
		return ""
	}
	if scope.ManagerID != "" {
		*args = append(*args, scope.ManagerID)
		return " AND " + subjectCol + ` IN (
      SELECT id FROM principals WHERE manager_id = $1 AND deleted_at IS NULL
    )`
	}
	*args = append(*args, scope.PrincipalID)
	return " AND " + subjectCol + " = $1"
}

func (s *Store) EmployeeSummary(ctx context.Context, scope Scope) (EmployeeSummary, error) {
	out := EmployeeSummary{ByStatus: map[string]int{}, ByDepartment: map[string]int{}}

	args := []any{}
	clause := scopeClause(scope, "principal_id", &args)
	rows, err := s.DB.Query(ctx, `
    SELECT status, department, is_probation, COUNT(1)
    FROM employee_profiles
    WHERE deleted_at IS NULL`+clause+`
    GROUP BY status, department, is_probation
  `, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var status, department string
		var probation bool
		var count int
		if err := rows.Scan(&status, &department, &probation, &count); err != nil {
			return out, err
		}
		out.Total += count
		out.ByStatus[status] += count
		if department != "" {
			out.ByDepartment[department] += count
		}
		if probation {
			out.OnProbation += count
		}
	}
	return out, rows.Err()
}

func (s *Store) WarningSummary(ctx context.Context, scope Scope) (WarningSummary, error) {
	out := WarningSummary{BySeverity: map[string]int{}}

	args := []any{}
	clause := scopeClause(scope, "employee_id", &args)
	rows, err := s.DB.Query(ctx, `
    SELECT severity,
           COUNT(1),
           COUNT(1) FILTER (WHERE status = 'active' AND valid_until > now()),
           COUNT(1) FILTER (WHERE status = 'active' AND valid_until <= now()),
           COUNT(1) FILTER (WHERE escalated)
    FROM warnings
    WHERE deleted_at IS NULL`+clause+`
    GROUP BY severity
  `, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var total, active, expired, escalated int
		if err := rows.Scan(&severity, &total, &active, &expired, &escalated); err != nil {
			return out, err
		}
		out.Total += total
		out.BySeverity[severity] += total
		out.Active += active
		out.Expired += expired
		out.Escalated += escalated
	}
	return out, rows.Err()
}

func (s *Store) AppraisalSummary(ctx context.Context, scope Scope) (AppraisalSummary, error) {
	var out AppraisalSummary

	args := []any{}
	clause := scopeClause(scope, "employee_id", &args)
	var avg *float64
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'completed'),
           AVG(manual_rating) FILTER (WHERE status = 'completed')
    FROM appraisals
    WHERE deleted_at IS NULL AND status <> 'cancelled'`+clause+`
  `, args...).Scan(&out.Total, &out.Completed, &avg)
	if err != nil {
		return out, err
	}
	out.AverageRating = avg
	if out.Total > 0 {
		out.CompletionRate = float64(out.Completed) / float64(out.Total)
	}
	return out, nil
}

func (s *Store) ProjectSummary(ctx context.Context, scope Scope) (ProjectSummary, error) {
	out := ProjectSummary{ByStatus: map[string]int{}}

	args := []any{}
	clause := ""
	if !scope.All {
		id := scope.ManagerID
		if id == "" {
			id = scope.PrincipalID
		}
		args = append(args, id)
		clause = ` AND (p.manager_id = $1 OR EXISTS (
      SELECT 1 FROM project_members m
      WHERE m.project_id = p.id AND m.principal_id = $1 AND m.is_active))`
	}

	rows, err := s.DB.Query(ctx, `
    SELECT p.status, COUNT(1)
    FROM projects p
    WHERE p.deleted_at IS NULL`+clause+`
    GROUP BY p.status
  `, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return out, err
		}
		out.Total += count
		out.ByStatus[status] += count
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	var avg *float64
	if err := s.DB.QueryRow(ctx, `
    SELECT AVG(m.allocation)
    FROM project_members m
    JOIN projects p ON p.id = m.project_id
    WHERE m.is_active AND p.deleted_at IS NULL`+clause+`
  `, args...).Scan(&avg); err != nil {
		return out, err
	}
	out.AverageAllocation = avg
	return out, nil
}

func (s *Store) DocumentSummary(ctx context.Context, scope Scope) (DocumentSummary, error) {
	var out DocumentSummary

	args := []any{}
	clause := ""
	if !scope.All {
		id := scope.ManagerID
		if id == "" {
			id = scope.PrincipalID
		}
		args = append(args, id)
		clause = ` AND (uploaded_by = $1 OR EXISTS (
      SELECT 1 FROM document_shares sh
      WHERE sh.document_id = documents.id AND sh.principal_id = $1))`
	}

	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COALESCE(SUM(size), 0),
           COUNT(1) FILTER (WHERE verification = 'pending')
    FROM documents
    WHERE deleted_at IS NULL`+clause+`
  `, args...).Scan(&out.Total, &out.TotalBytes, &out.Pending)
	return out, err
}
