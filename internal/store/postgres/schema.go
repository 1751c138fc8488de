package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// PostgreSQL runs the multi-statement string in one implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS participants (
    seq      BIGINT GENERATED ALWAYS AS IDENTITY,
    id       UUID PRIMARY KEY,
    name     TEXT NOT NULL,
    team     TEXT NOT NULL DEFAULT '',
    tags     TEXT[] NOT NULL DEFAULT '{}',
    operator BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS teams (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS operations (
    id         BIGINT PRIMARY KEY,
    actor_id   UUID NOT NULL,
    cancelled  BOOLEAN NOT NULL DEFAULT FALSE,
    cancel_seq BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS histories (
    seq            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    operation_id   BIGINT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
    participant_id UUID NOT NULL,
    delta          BIGINT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    cancelled      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_participants_seq ON participants (seq);
CREATE INDEX IF NOT EXISTS idx_participants_name ON participants (name);
CREATE INDEX IF NOT EXISTS idx_operations_actor ON operations (actor_id, cancelled);
CREATE INDEX IF NOT EXISTS idx_histories_operation ON histories (operation_id);
CREATE INDEX IF NOT EXISTS idx_histories_participant ON histories (participant_id) WHERE cancelled = FALSE;
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
