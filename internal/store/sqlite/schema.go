package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS participants (
		seq      INTEGER PRIMARY KEY AUTOINCREMENT,
		id       TEXT NOT NULL UNIQUE,
		name     TEXT NOT NULL,
		team     TEXT NOT NULL DEFAULT '',
		tags     TEXT NOT NULL DEFAULT '[]',
		operator INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS teams (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS operations (
		id         INTEGER PRIMARY KEY,
		actor_id   TEXT NOT NULL,
		cancelled  INTEGER NOT NULL DEFAULT 0,
		cancel_seq INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS histories (
		seq            INTEGER PRIMARY KEY AUTOINCREMENT,
		operation_id   INTEGER NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL,
		delta          INTEGER NOT NULL,
		created_at     TEXT NOT NULL,
		cancelled      INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_participants_name ON participants (name);
	CREATE INDEX IF NOT EXISTS idx_operations_actor ON operations (actor_id, cancelled);
	CREATE INDEX IF NOT EXISTS idx_histories_operation ON histories (operation_id);
	CREATE INDEX IF NOT EXISTS idx_histories_participant ON histories (participant_id, cancelled);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
