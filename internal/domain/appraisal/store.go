package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

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

const appraisalColumns = `
  id, employee_id, reviewer_id, appraisal_date, status,
  COALESCE(self_assessment, ''), self_assessment_date,
  COALESCE(review, ''), review_date, goals_json, manual_rating,
  created_at, updated_at
`

func scanAppraisal(row pgx.Row) (Appraisal, error) {
	var a Appraisal
	var goalsJSON []byte
	err := row.Scan(&a.ID, &a.EmployeeID, &a.ReviewerID, &a.AppraisalDate, &a.Status,
		&a.SelfAssessment, &a.SelfAssessmentDate, &a.Review, &a.ReviewDate,
		&goalsJSON, &a.ManualRating, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	if len(goalsJSON) > 0 {
		if err := json.Unmarshal(goalsJSON, &a.Goals); err != nil {
			return a, err
		}
	}
	a.OverallRating = OverallRating(a.Goals, a.ManualRating)
	return a, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (Appraisal, error) {
	return scanAppraisal(s.DB.QueryRow(ctx, `
    SELECT `+appraisalColumns+`
    FROM appraisals
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Appraisal, int, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	n := func() string { return strconv.Itoa(len(args)) }
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += " AND employee_id = $" + n()
	}
	if filter.ReviewerID != "" {
		args = append(args, filter.ReviewerID)
		where += " AND reviewer_id = $" + n()
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + n()
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM appraisals WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitArg := n()
	args = append(args, offset)
	offsetArg := n()
	rows, err := s.DB.Query(ctx, `
    SELECT `+appraisalColumns+`
    FROM appraisals
    WHERE `+where+`
    ORDER BY appraisal_date DESC
    LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Create relies on the partial unique index over non-cancelled
// (employee_id, appraisal_date) rows to reject duplicates.
func (s *Store) Create(ctx context.Context, a Appraisal) (string, error) {
	goalsJSON, err := json.Marshal(a.Goals)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO appraisals (employee_id, reviewer_id, appraisal_date, status, goals_json)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, a.EmployeeID, a.ReviewerID, a.AppraisalDate, StatusDraft, goalsJSON).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return "", ErrDuplicate
	}
	return id, err
}

// SubmitSelfAssessment forces in_progress from draft/in_progress in one
// guarded statement.
func (s *Store) SubmitSelfAssessment(ctx context.Context, id, text string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET self_assessment = $1, self_assessment_date = now(), status = $2, updated_at = now()
    WHERE id = $3 AND status IN ($4, $2) AND deleted_at IS NULL
  `, text, StatusInProgress, id, StatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SubmitReview records the review, the reviewer's rating and the move to
// target (completed or needs_review) in one guarded statement, so a lost race
// cannot leave a rating on an unmoved appraisal.
func (s *Store) SubmitReview(ctx context.Context, id, text string, rating float64, target string, reviewDate time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET review = $1, review_date = $2, manual_rating = $3, status = $4, updated_at = now()
    WHERE id = $5 AND status IN ($6, $7) AND deleted_at IS NULL
  `, text, reviewDate, rating, target, id, StatusInProgress, StatusNeedsReview)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) UpdateGoals(ctx context.Context, id string, goals []Goal) (bool, error) {
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return false, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET goals_json = $1, updated_at = now()
    WHERE id = $2 AND status NOT IN ($3, $4) AND deleted_at IS NULL
  `, goalsJSON, id, StatusCompleted, StatusCancelled)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET status = $1, updated_at = now()
    WHERE id = $2 AND status NOT IN ($1, $3) AND deleted_at IS NULL
  `, StatusCancelled, id, StatusCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
