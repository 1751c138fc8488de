// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"points/internal/store"
)

// Factory returns an empty store with its schema in place.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("participants", func(t *testing.T) { testParticipants(t, newStore(t)) })
	t.Run("teams", func(t *testing.T) { testTeams(t, newStore(t)) })
	t.Run("apply and read", func(t *testing.T) { testApplyAndRead(t, newStore(t)) })
	t.Run("duplicate operation", func(t *testing.T) { testDuplicateOperation(t, newStore(t)) })
	t.Run("cancel and restore", func(t *testing.T) { testCancelRestore(t, newStore(t)) })
	t.Run("apply purges cancelled", func(t *testing.T) { testApplyPurges(t, newStore(t)) })
	t.Run("actors are independent", func(t *testing.T) { testActorsIndependent(t, newStore(t)) })
	t.Run("consistency queries", func(t *testing.T) { testConsistency(t, newStore(t)) })
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entriesFor(opID int64, delta int64, ids ...uuid.UUID) []store.HistoryEntry {
	out := make([]store.HistoryEntry, 0, len(ids))
	for i, id := range ids {
		out = append(out, store.HistoryEntry{
			OperationID:   opID,
			ParticipantID: id,
			Delta:         delta,
			Timestamp:     baseTime.Add(time.Duration(opID)*time.Second + time.Duration(i)*time.Millisecond),
		})
	}
	return out
}

func apply(t *testing.T, s store.Store, actor uuid.UUID, opID, delta int64, ids ...uuid.UUID) {
	t.Helper()
	err := s.ApplyOperation(context.Background(), store.Operation{ID: opID, ActorID: actor}, entriesFor(opID, delta, ids...))
	require.NoError(t, err)
}

func sumDeltas(entries []store.HistoryEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Delta
	}
	return total
}

func testParticipants(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := store.Participant{ID: uuid.New(), Name: "Alice", Team: "red", Tags: []string{"vip"}}
	bob := store.Participant{ID: uuid.New(), Name: "Bob"}

	require.NoError(t, s.UpsertParticipant(ctx, alice))
	require.NoError(t, s.UpsertParticipant(ctx, bob))

	alice.Name = "Alicia"
	alice.Operator = true
	alice.Tags = []string{"vip", "builder"}
	require.NoError(t, s.UpsertParticipant(ctx, alice))

	got, err := s.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, alice.ID, got[0].ID, "update keeps registration order")
	assert.Equal(t, "Alicia", got[0].Name)
	assert.True(t, got[0].Operator)
	assert.Equal(t, []string{"vip", "builder"}, got[0].Tags)
	assert.Equal(t, "red", got[0].Team)
	assert.Equal(t, bob.ID, got[1].ID)
	assert.Equal(t, []string{}, got[1].Tags)
}

func testTeams(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.UpsertTeam(ctx, "red"))
	require.NoError(t, s.UpsertTeam(ctx, "blue"))
	require.NoError(t, s.UpsertTeam(ctx, "red"))

	teams, err := s.ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue", "red"}, teams)
}

func testApplyAndRead(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	apply(t, s, actor, 1001, 50, alice, bob)
	apply(t, s, actor, 1002, -20, alice)

	history, err := s.History(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1001), history[0].OperationID)
	assert.Equal(t, int64(50), history[0].Delta)
	assert.Equal(t, int64(-20), history[1].Delta)
	assert.True(t, history[0].Timestamp.Equal(baseTime.Add(1001*time.Second)), "timestamp round-trips")

	active, err := s.ActiveEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)
	assert.Equal(t, int64(80), sumDeltas(active))

	none, err := s.History(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDuplicateOperation(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := uuid.New()
	alice := uuid.New()

	apply(t, s, actor, 1, 10, alice)
	apply(t, s, actor, 2, 5, alice)
	_, err := s.CancelLatest(ctx, actor)
	require.NoError(t, err)

	err = s.ApplyOperation(ctx, store.Operation{ID: 1, ActorID: actor}, entriesFor(1, 99, alice))
	require.ErrorIs(t, err, store.ErrDuplicateOperation)

	// The failed apply must not have purged the cancelled operation.
	restored, err := s.RestoreLatest(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), restored.OperationID)

	history, err := s.History(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(15), sumDeltas(history))

	other := uuid.New()
	err = s.ApplyOperation(ctx, store.Operation{ID: 2, ActorID: other}, entriesFor(2, 1, alice))
	require.ErrorIs(t, err, store.ErrDuplicateOperation)
}

func testCancelRestore(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	_, err := s.CancelLatest(ctx, actor)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RestoreLatest(ctx, actor)
	require.ErrorIs(t, err, store.ErrNotFound)

	apply(t, s, actor, 1001, 50, alice)
	apply(t, s, actor, 1002, -20, alice, bob)

	undone, err := s.CancelLatest(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, store.OperationSummary{OperationID: 1002, ActorID: actor, Affected: 2, Delta: -20}, undone)

	undone, err = s.CancelLatest(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), undone.OperationID)
	assert.Equal(t, 1, undone.Affected)

	_, err = s.CancelLatest(ctx, actor)
	require.ErrorIs(t, err, store.ErrNotFound)

	active, err := s.ActiveEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	restored, err := s.RestoreLatest(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), restored.OperationID, "most recently cancelled comes back first")
	assert.Equal(t, int64(50), restored.Delta)

	restored, err = s.RestoreLatest(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), restored.OperationID)

	_, err = s.RestoreLatest(ctx, actor)
	require.ErrorIs(t, err, store.ErrNotFound)

	history, err := s.History(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(30), sumDeltas(history))
}

func testApplyPurges(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := uuid.New()
	alice := uuid.New()

	apply(t, s, actor, 1, 10, alice)
	_, err := s.CancelLatest(ctx, actor)
	require.NoError(t, err)

	apply(t, s, actor, 2, 3, alice)

	_, err = s.RestoreLatest(ctx, actor)
	require.ErrorIs(t, err, store.ErrNotFound, "cancelled operation is purged by the next apply")

	orphans, err := s.ListOrphanedEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	history, err := s.History(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(3), history[0].Delta)
}

func testActorsIndependent(t *testing.T, s store.Store) {
	ctx := context.Background()
	admin, mod := uuid.New(), uuid.New()
	alice := uuid.New()

	apply(t, s, admin, 1, 10, alice)
	apply(t, s, mod, 2, 7, alice)

	undone, err := s.CancelLatest(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), undone.OperationID, "undo only sees the actor's own operations")

	// A new apply by mod must not purge admin's cancelled operation.
	apply(t, s, mod, 3, 1, alice)

	restored, err := s.RestoreLatest(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), restored.OperationID)

	history, err := s.History(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(18), sumDeltas(history))
}

func testConsistency(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := uuid.New()
	apply(t, s, actor, 1, 10, uuid.New(), uuid.New())
	_, err := s.CancelLatest(ctx, actor)
	require.NoError(t, err)

	orphans, err := s.ListOrphanedEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	mismatches, err := s.ListCancellationMismatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}
