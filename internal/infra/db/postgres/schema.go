package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the three tables on startup if they do not exist yet.
// Codes are the lookup key for keys; users are addressed by telegram_id;
// access_logs is append-only and ordered by its ULID primary key.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY,
    telegram_id    BIGINT NOT NULL UNIQUE,
    username       TEXT NOT NULL DEFAULT '',
    first_seen_at  TIMESTAMPTZ NOT NULL,
    last_active_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS nfc_keys (
    code          TEXT PRIMARY KEY,
    product_id    TEXT,
    owner_user_id BIGINT,
    status        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    claimed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_nfc_keys_owner
    ON nfc_keys (owner_user_id, claimed_at DESC)
    WHERE owner_user_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS access_logs (
    id          TEXT PRIMARY KEY,
    telegram_id BIGINT,
    code        TEXT,
    action      TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
