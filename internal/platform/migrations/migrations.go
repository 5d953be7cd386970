// Package migrations holds the database schema and applies it in order.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS programs (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		criteres JSONB,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		hero JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS persons (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		nom TEXT NOT NULL DEFAULT '',
		prenom TEXT NOT NULL DEFAULT '',
		telephone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS eligibility_tests (
		id UUID PRIMARY KEY,
		person_id UUID NOT NULL REFERENCES persons(id),
		form JSONB NOT NULL,
		matched_programs JSONB,
		contact_requested BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_eligibility_tests_person ON eligibility_tests(person_id)`,
	`CREATE TABLE IF NOT EXISTS news_articles (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS partners (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		website TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_sessions (
		id UUID PRIMARY KEY,
		admin_id UUID NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		last_seen_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_created ON activity_log(created_at DESC)`,
}

// Apply runs every schema statement in order. Statements are idempotent so
// Apply is safe to call on startup.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
