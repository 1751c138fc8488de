package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"points/internal/store"
)

const entryColumns = `h.operation_id, h.participant_id, h.delta, h.created_at, h.cancelled`

// lockActor serialises writes for one actor across every process sharing the database.
func lockActor(ctx context.Context, tx pgx.Tx, actor uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, actor.String()); err != nil {
		return fmt.Errorf("locking actor %s: %w", actor, err)
	}
	return nil
}

func (c *Client) ApplyOperation(ctx context.Context, op store.Operation, entries []store.HistoryEntry) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockActor(ctx, tx, op.ActorID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM histories
WHERE operation_id IN (SELECT id FROM operations WHERE actor_id = $1 AND cancelled)
`, op.ActorID); err != nil {
		return fmt.Errorf("purging cancelled entries: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM operations WHERE actor_id = $1 AND cancelled`, op.ActorID); err != nil {
		return fmt.Errorf("purging cancelled operations: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO operations (id, actor_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		op.ID, op.ActorID,
	)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording operation %d: %w", op.ID, store.ErrDuplicateOperation)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"histories"},
		[]string{"operation_id", "participant_id", "delta", "created_at"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{op.ID, e.ParticipantID, e.Delta, e.Timestamp}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("inserting history entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing operation: %w", err)
	}
	return nil
}

func (c *Client) CancelLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error) {
	query := `
UPDATE operations
SET cancelled = TRUE,
    cancel_seq = (SELECT COALESCE(MAX(cancel_seq), 0) + 1 FROM operations WHERE actor_id = $1)
WHERE id = (
    SELECT id FROM operations
    WHERE actor_id = $1 AND NOT cancelled
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
SET cancelled = FALSE,
    cancel_seq = 0
WHERE id = (
    SELECT id FROM operations
    WHERE actor_id = $1 AND cancelled
    ORDER BY cancel_seq DESC, id DESC
    LIMIT 1
)
RETURNING id
`
	return c.flipLatest(ctx, actor, query, false)
}

func (c *Client) flipLatest(ctx context.Context, actor uuid.UUID, query string, cancelled bool) (store.OperationSummary, error) {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.OperationSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockActor(ctx, tx, actor); err != nil {
		return store.OperationSummary{}, err
	}

	var opID int64
	if err := tx.QueryRow(ctx, query, actor).Scan(&opID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.OperationSummary{}, store.ErrNotFound
		}
		return store.OperationSummary{}, fmt.Errorf("updating operation: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE histories SET cancelled = $1 WHERE operation_id = $2`, cancelled, opID)
	if err != nil {
		return store.OperationSummary{}, fmt.Errorf("updating history entries: %w", err)
	}

	summary := store.OperationSummary{OperationID: opID, ActorID: actor, Affected: int(tag.RowsAffected())}
	if summary.Affected > 0 {
		err := tx.QueryRow(ctx,
			`SELECT delta FROM histories WHERE operation_id = $1 ORDER BY seq LIMIT 1`, opID,
		).Scan(&summary.Delta)
		if err != nil {
			return store.OperationSummary{}, fmt.Errorf("reading operation delta: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return store.OperationSummary{}, fmt.Errorf("committing operation update: %w", err)
	}
	return summary, nil
}

func (c *Client) History(ctx context.Context, participant uuid.UUID) ([]store.HistoryEntry, error) {
	query := `
SELECT ` + entryColumns + `
FROM histories h
WHERE h.participant_id = $1 AND NOT h.cancelled
ORDER BY h.seq
`
	return c.queryEntries(ctx, "history", query, participant)
}

func (c *Client) ActiveEntries(ctx context.Context) ([]store.HistoryEntry, error) {
	query := `
SELECT ` + entryColumns + `
FROM histories h
WHERE NOT h.cancelled
ORDER BY h.seq
`
	return c.queryEntries(ctx, "active entries", query)
}

func (c *Client) queryEntries(ctx context.Context, label, query string, args ...any) ([]store.HistoryEntry, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", label, err)
	}
	defer rows.Close()

	entries := make([]store.HistoryEntry, 0)
	for rows.Next() {
		var e store.HistoryEntry
		if err := rows.Scan(&e.OperationID, &e.ParticipantID, &e.Delta, &e.Timestamp, &e.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", label, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", label, err)
	}

	return entries, nil
}
