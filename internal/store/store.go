package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no operation is eligible for cancel or restore.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateOperation is returned when an operation id is already recorded.
	ErrDuplicateOperation = errors.New("duplicate operation id")
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertParticipant(ctx context.Context, p Participant) error
	ListParticipants(ctx context.Context) ([]Participant, error)
	UpsertTeam(ctx context.Context, name string) error
	ListTeams(ctx context.Context) ([]string, error)

	// ApplyOperation purges the actor's cancelled operations, then records op
	// and entries. All of it commits or none of it does.
	ApplyOperation(ctx context.Context, op Operation, entries []HistoryEntry) error
	CancelLatest(ctx context.Context, actor uuid.UUID) (OperationSummary, error)
	RestoreLatest(ctx context.Context, actor uuid.UUID) (OperationSummary, error)

	History(ctx context.Context, participant uuid.UUID) ([]HistoryEntry, error)
	ActiveEntries(ctx context.Context) ([]HistoryEntry, error)

	ListOrphanedEntries(ctx context.Context) ([]HistoryEntry, error)
	ListCancellationMismatches(ctx context.Context) ([]HistoryEntry, error)
}
