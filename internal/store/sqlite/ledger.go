package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"points/internal/store"
)

const entryColumns = `h.operation_id, h.participant_id, h.delta, h.created_at, h.cancelled`

func (c *Client) ApplyOperation(ctx context.Context, op store.Operation, entries []store.HistoryEntry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	actor := op.ActorID.String()

	// The purge runs first so the transaction holds the write lock before it reads anything.
	if _, err := tx.ExecContext(ctx, `
	DELETE FROM histories
	WHERE operation_id IN (SELECT id FROM operations WHERE actor_id = ? AND cancelled = 1)
	`, actor); err != nil {
		return fmt.Errorf("purging cancelled entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE actor_id = ? AND cancelled = 1`, actor); err != nil {
		return fmt.Errorf("purging cancelled operations: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO operations (id, actor_id) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		op.ID, actor,
	)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if inserted == 0 {
		return fmt.Errorf("recording operation %d: %w", op.ID, store.ErrDuplicateOperation)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO histories (operation_id, participant_id, delta, created_at, cancelled)
	VALUES (?, ?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, op.ID, e.ParticipantID.String(), e.Delta, formatTime(e.Timestamp)); err != nil {
			return fmt.Errorf("inserting history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing operation: %w", err)
	}
	return nil
}

func (c *Client) CancelLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error) {
	query := `
	UPDATE operations
	SET cancelled = 1,
	    cancel_seq = (SELECT COALESCE(MAX(cancel_seq), 0) + 1 FROM operations WHERE actor_id = ?)
	WHERE id = (
		SELECT id FROM operations
		WHERE actor_id = ? AND cancelled = 0
		ORDER BY id DESC
		LIMIT 1
	)
	RETURNING id
	`
	return c.flipLatest(ctx, actor, query, true)
}

func (c *Client) RestoreLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error) {
	query := `
	UPDATE operations
	SET cancelled = 0,
	    cancel_seq = 0
	WHERE id = (
		SELECT id FROM operations
		WHERE actor_id = ? AND cancelled = 1
		ORDER BY cancel_seq DESC, id DESC
		LIMIT 1
	)
	RETURNING id
	`
	return c.flipLatest(ctx, actor, query, false)
}

func (c *Client) flipLatest(ctx context.Context, actor uuid.UUID, query string, cancelled bool) (store.OperationSummary, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return store.OperationSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{actor.String()}
	if cancelled {
		args = append(args, actor.String())
	}

	var opID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&opID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.OperationSummary{}, store.ErrNotFound
		}
		return store.OperationSummary{}, fmt.Errorf("updating operation: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE histories SET cancelled = ? WHERE operation_id = ?`, cancelled, opID)
	if err != nil {
		return store.OperationSummary{}, fmt.Errorf("updating history entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.OperationSummary{}, fmt.Errorf("getting rows affected: %w", err)
	}

	summary := store.OperationSummary{OperationID: opID, ActorID: actor, Affected: int(affected)}
	if affected > 0 {
		err := tx.QueryRowContext(ctx,
			`SELECT delta FROM histories WHERE operation_id = ? ORDER BY seq LIMIT 1`, opID,
		).Scan(&summary.Delta)
		if err != nil {
			return store.OperationSummary{}, fmt.Errorf("reading operation delta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.OperationSummary{}, fmt.Errorf("committing operation update: %w", err)
	}
	return summary, nil
}

func (c *Client) History(ctx context.Context, participant uuid.UUID) ([]store.HistoryEntry, error) {
	query := `
	SELECT ` + entryColumns + `
	FROM histories h
	WHERE h.participant_id = ? AND h.cancelled = 0
	ORDER BY h.seq
	`
	return c.queryEntries(ctx, "history", query, participant.String())
}

func (c *Client) ActiveEntries(ctx context.Context) ([]store.HistoryEntry, error) {
	query := `
	SELECT ` + entryColumns + `
	FROM histories h
	WHERE h.cancelled = 0
	ORDER BY h.seq
	`
	return c.queryEntries(ctx, "active entries", query)
}

func (c *Client) queryEntries(ctx context.Context, label, query string, args ...any) ([]store.HistoryEntry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", label, err)
	}
	defer rows.Close()

	entries := make([]store.HistoryEntry, 0)
	for rows.Next() {
		var e store.HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.OperationID, &e.ParticipantID, &e.Delta, &createdAt, &e.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", label, err)
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", createdAt, err)
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", label, err)
	}

	return entries, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
