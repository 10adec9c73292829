package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfhub/internal/domain/auth"
	"perfhub/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureSettingsRow(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" {
		if err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin); err != nil {
			return err
		}
	}
	if cfg.SeedHREmail != "" {
		if err := ensureUser(ctx, pool, cfg.SeedHREmail, cfg.SeedHRPassword, auth.RoleHR); err != nil {
			return err
		}
	}
	return nil
}

func ensureSettingsRow(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "INSERT INTO system_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING")
	return err
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, role string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role, status)
    VALUES ($1, $2, $3, 'active')
  `, email, hash, role)
	return err
}
