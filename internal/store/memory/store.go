// Package memory provides an in-memory implementation of the ledger store used
// for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"points/internal/store"
)

var _ store.Store = (*Store)(nil)

type operationRow struct {
	store.Operation
	cancelSeq int64
}

// Store keeps the ledger in process memory. Every method holds the lock for
// its whole duration, which gives each call the same all-or-nothing
// semantics as a database transaction.
type Store struct {
	mu           sync.RWMutex
	participants []store.Participant
	teams        map[string]struct{}
	operations   map[int64]*operationRow
	entries      []store.HistoryEntry
}

func New() *Store {
	return &Store{
		teams:      make(map[string]struct{}),
		operations: make(map[int64]*operationRow),
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) EnsureSchema(ctx context.Context) error { return nil }

func (s *Store) UpsertParticipant(ctx context.Context, p store.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for i := range s.participants {
		if s.participants[i].ID == p.ID {
			s.participants[i] = p
			return nil
		}
	}
	s.participants = append(s.participants, p)
	return nil
}

func (s *Store) ListParticipants(ctx context.Context) ([]store.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		p.Tags = slices.Clone(p.Tags)
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) UpsertTeam(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[name] = struct{}{}
	return nil
}

func (s *Store) ListTeams(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]string, 0, len(s.teams))
	for name := range s.teams {
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return teams, nil
}

func (s *Store) ApplyOperation(ctx context.Context, op store.Operation, entries []store.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.operations[op.ID]
	if ok && !(existing.ActorID == op.ActorID && existing.Cancelled) {
		return fmt.Errorf("recording operation %d: %w", op.ID, store.ErrDuplicateOperation)
	}

	purged := make(map[int64]struct{})
	for id, row := range s.operations {
		if row.ActorID == op.ActorID && row.Cancelled {
			purged[id] = struct{}{}
			delete(s.operations, id)
		}
	}
	if len(purged) > 0 {
		kept := s.entries[:0]
		for _, e := range s.entries {
			if _, gone := purged[e.OperationID]; !gone {
				kept = append(kept, e)
			}
		}
		s.entries = kept
	}

	s.operations[op.ID] = &operationRow{Operation: store.Operation{ID: op.ID, ActorID: op.ActorID}}
	for _, e := range entries {
		e.OperationID = op.ID
		e.Cancelled = false
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Store) CancelLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *operationRow
	var maxSeq int64
	for _, row := range s.operations {
		if row.ActorID != actor {
			continue
		}
		if row.cancelSeq > maxSeq {
			maxSeq = row.cancelSeq
		}
		if row.Cancelled {
			continue
		}
		if latest == nil || row.ID > latest.ID {
			latest = row
		}
	}
	if latest == nil {
		return store.OperationSummary{}, store.ErrNotFound
	}

	latest.Cancelled = true
	latest.cancelSeq = maxSeq + 1
	return s.flipEntries(latest, true), nil
}

func (s *Store) RestoreLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *operationRow
	for _, row := range s.operations {
		if row.ActorID != actor || !row.Cancelled {
			continue
		}
		if latest == nil || row.cancelSeq > latest.cancelSeq ||
			(row.cancelSeq == latest.cancelSeq && row.ID > latest.ID) {
			latest = row
		}
	}
	if latest == nil {
		return store.OperationSummary{}, store.ErrNotFound
	}

	latest.Cancelled = false
	latest.cancelSeq = 0
	return s.flipEntries(latest, false), nil
}

func (s *Store) flipEntries(row *operationRow, cancelled bool) store.OperationSummary {
	summary := store.OperationSummary{OperationID: row.ID, ActorID: row.ActorID}
	for i := range s.entries {
		if s.entries[i].OperationID != row.ID {
			continue
		}
		if summary.Affected == 0 {
			summary.Delta = s.entries[i].Delta
		}
		s.entries[i].Cancelled = cancelled
		summary.Affected++
	}
	return summary
}

func (s *Store) History(ctx context.Context, participant uuid.UUID) ([]store.HistoryEntry, error) {
	return s.filterEntries(func(e store.HistoryEntry) bool {
		return !e.Cancelled && e.ParticipantID == participant
	}), nil
}

func (s *Store) ActiveEntries(ctx context.Context) ([]store.HistoryEntry, error) {
	return s.filterEntries(func(e store.HistoryEntry) bool { return !e.Cancelled }), nil
}

func (s *Store) ListOrphanedEntries(ctx context.Context) ([]store.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.HistoryEntry, 0)
	for _, e := range s.entries {
		if _, ok := s.operations[e.OperationID]; !ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListCancellationMismatches(ctx context.Context) ([]store.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.HistoryEntry, 0)
	for _, e := range s.entries {
		if row, ok := s.operations[e.OperationID]; ok && row.Cancelled != e.Cancelled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) filterEntries(keep func(store.HistoryEntry) bool) []store.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.HistoryEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
