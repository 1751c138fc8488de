package store

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID       uuid.UUID
	Name     string
	Team     string
	Tags     []string
	Operator bool
}

// HasTag reports whether the participant currently holds tag.
func (p Participant) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Operation struct {
	ID        int64
	ActorID   uuid.UUID
	Cancelled bool
}

type HistoryEntry struct {
	OperationID   int64
	ParticipantID uuid.UUID
	Delta         int64
	Timestamp     time.Time
	Cancelled     bool
}

// OperationSummary describes the entries touched by a cancel or restore.
// Delta is the value shared by every entry of the operation.
type OperationSummary struct {
	OperationID int64
	ActorID     uuid.UUID
	Affected    int
	Delta       int64
}
