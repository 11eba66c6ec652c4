package warning

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const warningColumns = `
  id, employee_id, issued_by, severity, status, subject, description,
  date_issued, valid_until, escalated, escalation_date, resolved_at,
  COALESCE(resolution_note, ''), COALESCE(withdrawal_reason, ''),
  COALESCE(letter_document_id::text, ''), created_at
`

func scanWarning(row pgx.Row) (Warning, error) {
	var w Warning
	err := row.Scan(&w.ID, &w.EmployeeID, &w.IssuedBy, &w.Severity, &w.Status,
		&w.Subject, &w.Description, &w.DateIssued, &w.ValidUntil, &w.Escalated,
		&w.EscalationDate, &w.ResolvedAt, &w.ResolutionNote, &w.WithdrawalReason,
		&w.LetterDocumentID, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

func (s *Store) FindByID(ctx context.Context, id string) (Warning, error) {
	return scanWarning(s.DB.QueryRow(ctx, `
    SELECT `+warningColumns+`
    FROM warnings
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Warning, int, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	n := func() string { return strconv.Itoa(len(args)) }
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += " AND employee_id = $" + n()
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		where += " AND severity = $" + n()
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + n()
	}
	if filter.ActiveOnly {
		where += " AND status = 'active' AND valid_until > now()"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM warnings WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitArg := n()
	args = append(args, offset)
	offsetArg := n()
	rows, err := s.DB.Query(ctx, `
    SELECT `+warningColumns+`
    FROM warnings
    WHERE `+where+`
    ORDER BY date_issued DESC
    LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Warning
	for rows.Next() {
		w, err := scanWarning(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, w)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, w Warning) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO warnings (employee_id, issued_by, severity, status, subject, description, date_issued, valid_until)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, w.EmployeeID, w.IssuedBy, w.Severity, StatusActive, w.Subject, w.Description, w.DateIssued, w.ValidUntil).Scan(&id)
	return id, err
}

// Resolve closes an active warning; the status guard in the WHERE clause
// makes the transition atomic.
func (s *Store) Resolve(ctx context.Context, id, note string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE warnings
    SET status = $1, resolved_at = now(), resolution_note = $2
    WHERE id = $3 AND status = $4 AND deleted_at IS NULL
  `, StatusResolved, note, id, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Withdraw(ctx context.Context, id, reason string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE warnings
    SET status = $1, resolved_at = now(), withdrawal_reason = $2
    WHERE id = $3 AND status = $4 AND deleted_at IS NULL
  `, StatusWithdrawn, reason, id, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Escalate sets the one-shot escalated flag; the escalated = false guard
// rejects a second escalation without touching escalation_date.
func (s *Store) Escalate(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE warnings
    SET escalated = true, escalation_date = now()
    WHERE id = $1 AND status = $2 AND escalated = false AND deleted_at IS NULL
  `, id, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SetLetterDocument(ctx context.Context, id, documentID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE warnings SET letter_document_id = $1 WHERE id = $2 AND deleted_at IS NULL
  `, documentID, id)
	return err
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE warnings SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
