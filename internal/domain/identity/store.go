package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthPrincipal struct {
	ID           string
	Role         string
	Status       string
	PasswordHash string
	MFAEnabled   bool
	MFASecretEnc []byte
}

func (s *Store) FindByEmail(ctx context.Context, email string) (AuthPrincipal, error) {
	var out AuthPrincipal
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, status, password_hash, mfa_enabled, mfa_secret_enc
    FROM principals
    WHERE email = $1 AND deleted_at IS NULL
  `, email).Scan(&out.ID, &out.Role, &out.Status, &out.PasswordHash, &out.MFAEnabled, &out.MFASecretEnc)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrNotFound
	}
	return out, err
}

func (s *Store) FindByID(ctx context.Context, id string) (Principal, error) {
	var p Principal
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, first_name, last_name, role, COALESCE(manager_id::text, ''), department, status, mfa_enabled, last_seen_at, created_at
    FROM principals
    WHERE id = $1 AND deleted_at IS NULL
  `, id).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role, &p.ManagerID, &p.Department, &p.Status, &p.MFAEnabled, &p.LastSeenAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// FindReports lists active principals whose manager_id points at managerID.
func (s *Store) FindReports(ctx context.Context, managerID string) ([]Principal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, first_name, last_name, role, COALESCE(manager_id::text, ''), department, status, mfa_enabled, last_seen_at, created_at
    FROM principals
    WHERE manager_id = $1 AND deleted_at IS NULL
    ORDER BY last_name, first_name
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Principal
	for rows.Next() {
		var p Principal
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role, &p.ManagerID, &p.Department, &p.Status, &p.MFAEnabled, &p.LastSeenAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// IsManagerOf re-checks the manager→report relationship at decision time.
func (s *Store) IsManagerOf(ctx context.Context, managerID, principalID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM principals
    WHERE id = $1 AND manager_id = $2 AND deleted_at IS NULL
  `, principalID, managerID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) TouchLastSeen(ctx context.Context, principalID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE principals SET last_seen_at = now() WHERE id = $1", principalID)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, principalID, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE principals SET password_hash = $1 WHERE id = $2", hash, principalID)
	return err
}

func (s *Store) UpdateMFASecret(ctx context.Context, principalID string, secretEnc []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE principals SET mfa_secret_enc = $1, mfa_enabled = false WHERE id = $2
  `, secretEnc, principalID)
	return err
}

func (s *Store) MFASecret(ctx context.Context, principalID string) ([]byte, error) {
	var secretEnc []byte
	if err := s.DB.QueryRow(ctx, "SELECT mfa_secret_enc FROM principals WHERE id = $1", principalID).Scan(&secretEnc); err != nil {
		return nil, err
	}
	return secretEnc, nil
}

func (s *Store) SetMFAEnabled(ctx context.Context, principalID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE principals SET mfa_enabled = $1 WHERE id = $2", enabled, principalID)
	return err
}
