package selector

import (
	"github.com/google/uuid"

	"points/internal/store"
)

// Population answers which participants exist and how they are named.
type Population interface {
	// Lookup finds a participant by exact display name.
	Lookup(name string) (store.Participant, bool)
	// Participants enumerates every known participant in registration order.
	Participants() []store.Participant
}

// Membership answers team and tag questions about participants.
type Membership interface {
	Teams() []string
	HasTeam(name string) bool
	TeamOf(id uuid.UUID) (string, bool)
	// Tags is the union of tags currently held by any participant.
	Tags() []string
	TagsOf(id uuid.UUID) []string
}

// Context is the read-only view a single resolution runs against. It must
// not change while Resolve is running.
type Context struct {
	Population Population
	Membership Membership
}
