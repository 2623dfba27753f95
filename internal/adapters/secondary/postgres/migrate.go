package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// schema is applied by `franklin migrate`. Statements are idempotent so the
// command can run on every deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           UUID PRIMARY KEY,
		github_id    BIGINT NOT NULL UNIQUE,
		login        TEXT NOT NULL,
		name         TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		avatar_url   TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_access_token ON users (access_token)`,

	`CREATE TABLE IF NOT EXISTS sites (
		id              UUID PRIMARY KEY,
		github_id       BIGINT NOT NULL UNIQUE,
		owner_github_id BIGINT NOT NULL,
		owner_login     TEXT NOT NULL,
		name            TEXT NOT NULL,
		default_branch  TEXT NOT NULL DEFAULT 'main',
		active          BOOLEAN NOT NULL DEFAULT TRUE,
		webhook_id      BIGINT NOT NULL DEFAULT 0,
		deploy_key_id   BIGINT NOT NULL DEFAULT 0,
		registered_by   UUID NOT NULL REFERENCES users (id),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS environments (
		id               UUID PRIMARY KEY,
		site_id          UUID NOT NULL REFERENCES sites (id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		strategy         TEXT NOT NULL,
		branch           TEXT NOT NULL DEFAULT '',
		url              TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		current_build_id UUID,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (site_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS builds (
		id             UUID PRIMARY KEY,
		site_id        UUID NOT NULL REFERENCES sites (id) ON DELETE CASCADE,
		environment_id UUID NOT NULL REFERENCES environments (id) ON DELETE CASCADE,
		branch         TEXT NOT NULL DEFAULT '',
		tag            TEXT NOT NULL DEFAULT '',
		git_hash       TEXT NOT NULL,
		path           TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		detail         TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at     TIMESTAMPTZ,
		finished_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_builds_site ON builds (site_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS user_sites (
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		site_id UUID NOT NULL REFERENCES sites (id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, site_id)
	)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	log.Infof("schema up to date (%d statements)", len(schema))
	return nil
}
