package postgres

import (
	"context"

	"points/internal/store"
)

func (c *Client) ListOrphanedEntries(ctx context.Context) ([]store.HistoryEntry, error) {
	query := `
SELECT ` + entryColumns + `
FROM histories h
WHERE NOT EXISTS (SELECT 1 FROM operations o WHERE o.id = h.operation_id)
ORDER BY h.seq
`
	return c.queryEntries(ctx, "orphaned entries", query)
}

func (c *Client) ListCancellationMismatches(ctx context.Context) ([]store.HistoryEntry, error) {
	query := `
SELECT ` + entryColumns + `
FROM histories h
JOIN operations o ON o.id = h.operation_id
WHERE h.cancelled <> o.cancelled
ORDER BY h.seq
`
	return c.queryEntries(ctx, "cancellation mismatches", query)
}
