package document

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

const documentColumns = `
  id, file_id, file_name, content_type, size, uploaded_by,
  COALESCE(employee_profile_id::text, ''), category, verification, is_public,
  version, created_at, updated_at
`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.FileID, &d.FileName, &d.ContentType, &d.Size,
		&d.UploadedBy, &d.EmployeeProfileID, &d.Category, &d.Verification,
		&d.IsPublic, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

func (s *Store) FindByID(ctx context.Context, id string) (Document, error) {
	doc, err := scanDocument(s.DB.QueryRow(ctx, `
    SELECT `+documentColumns+`
    FROM documents
    WHERE id = $1 AND deleted_at IS NULL
  `, id))
	if err != nil {
		return doc, err
	}
	shares, err := s.Shares(ctx, id)
	if err != nil {
		return doc, err
	}
	doc.Shares = shares
	return doc, nil
}

func (s *Store) Shares(ctx context.Context, documentID string) ([]Share, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT principal_id, permission, created_at
    FROM document_shares
    WHERE document_id = $1
    ORDER BY created_at
  `, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Share
	for rows.Next() {
		var sh Share
		if err := rows.Scan(&sh.PrincipalID, &sh.Permission, &sh.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Document, int, error) {
	where := "d.deleted_at IS NULL"
	args := []any{}
	n := func() string { return strconv.Itoa(len(args)) }
	if filter.UploadedBy != "" {
		args = append(args, filter.UploadedBy)
		where += " AND d.uploaded_by = $" + n()
	}
	if filter.EmployeeProfileID != "" {
		args = append(args, filter.EmployeeProfileID)
		where += " AND d.employee_profile_id = $" + n()
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += " AND d.category = $" + n()
	}
	if filter.Verification != "" {
		args = append(args, filter.Verification)
		where += " AND d.verification = $" + n()
	}
	if filter.SharedWith != "" {
		args = append(args, filter.SharedWith)
		where += ` AND (d.is_public OR d.uploaded_by = $` + n() + ` OR EXISTS (
      SELECT 1 FROM document_shares sh
      WHERE sh.document_id = d.id AND sh.principal_id = $` + n() + `))`
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM documents d WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitArg := n()
	args = append(args, offset)
	offsetArg := n()
	rows, err := s.DB.Query(ctx, `
    SELECT `+documentColumns+`
    FROM documents d
    WHERE `+where+`
    ORDER BY d.created_at DESC
    LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, d Document) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO documents (file_id, file_name, content_type, size, uploaded_by, employee_profile_id, category, verification, is_public, version)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8,$9,1)
    RETURNING id
  `, d.FileID, d.FileName, d.ContentType, d.Size, d.UploadedBy, d.EmployeeProfileID, d.Category, d.Verification, d.IsPublic).Scan(&id)
	return id, err
}

// UpdateMetadata bumps version on every successful mutation; the increment
// and the field writes are one statement.
func (s *Store) UpdateMetadata(ctx context.Context, id string, meta Metadata) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE documents
    SET file_name = $1, category = $2, is_public = $3, version = version + 1, updated_at = now()
    WHERE id = $4 AND deleted_at IS NULL
  `, meta.FileName, meta.Category, meta.IsPublic, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReplaceContent points the record at a new blob and bumps version.
func (s *Store) ReplaceContent(ctx context.Context, id, fileID, fileName, contentType string, size int64) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE documents
    SET file_id = $1, file_name = $2, content_type = $3, size = $4, version = version + 1, updated_at = now()
    WHERE id = $5 AND deleted_at IS NULL
  `, fileID, fileName, contentType, size, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AddShare inserts a grant unless the target already holds one. The ON
// CONFLICT DO NOTHING keeps a duplicate grant from overwriting the existing
// level; version is bumped only when a row was actually inserted.
func (s *Store) AddShare(ctx context.Context, documentID, principalID, permission string) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO document_shares (document_id, principal_id, permission)
    VALUES ($1,$2,$3)
    ON CONFLICT (document_id, principal_id) DO NOTHING
  `, documentID, principalID, permission)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE documents SET version = version + 1, updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, documentID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// UpdateSharePermission is the explicit path for changing an existing grant.
func (s *Store) UpdateSharePermission(ctx context.Context, documentID, principalID, permission string) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE document_shares SET permission = $1
    WHERE document_id = $2 AND principal_id = $3
  `, permission, documentID, principalID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE documents SET version = version + 1, updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, documentID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Store) RemoveShare(ctx context.Context, documentID, principalID string) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    DELETE FROM document_shares WHERE document_id = $1 AND principal_id = $2
  `, documentID, principalID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE documents SET version = version + 1, updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, documentID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// SetVerification guards the pending→verified/rejected move atomically.
func (s *Store) SetVerification(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE documents
    SET verification = $1, version = version + 1, updated_at = now()
    WHERE id = $2 AND verification = $3 AND deleted_at IS NULL
  `, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE documents SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
