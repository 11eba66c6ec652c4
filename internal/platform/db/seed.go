package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"peopleops/internal/auth"
	"peopleops/internal/platform/config"
)

// Seed bootstraps the first admin principal so a fresh deployment can log in.
// It is idempotent: an existing principal with the seed email wins.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		slog.Info("seed skipped, no admin credentials configured")
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, `
    SELECT COUNT(1) FROM principals WHERE email = $1
  `, cfg.SeedAdminEmail).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO principals (email, first_name, last_name, role, status, password_hash)
    VALUES ($1, 'System', 'Admin', 'admin', 'active', $2)
    ON CONFLICT (email) DO NOTHING
  `, cfg.SeedAdminEmail, hash)
	if err != nil {
		return err
	}
	slog.Info("seeded bootstrap admin", "email", cfg.SeedAdminEmail)
	return nil
}
