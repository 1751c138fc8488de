// Package roster is the read-only participant index selectors resolve against.
package roster

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"points/internal/selector"
	"points/internal/store"
)

// Source is the part of a store a roster is loaded from.
type Source interface {
	ListParticipants(ctx context.Context) ([]store.Participant, error)
	ListTeams(ctx context.Context) ([]string, error)
}

// Roster is immutable once built and safe for concurrent reads.
type Roster struct {
	participants []store.Participant
	byName       map[string]store.Participant
	byID         map[uuid.UUID]store.Participant
	teams        []string
	teamSet      map[string]struct{}
	tags         []string
}

// New indexes participants in the order given. When two participants share
// a display name the later one wins name lookups. Teams is the declared
// team list; teams that only appear on participants are added to it.
func New(participants []store.Participant, teams []string) *Roster {
	r := &Roster{
		participants: make([]store.Participant, 0, len(participants)),
		byName:       make(map[string]store.Participant, len(participants)),
		byID:         make(map[uuid.UUID]store.Participant, len(participants)),
		teamSet:      make(map[string]struct{}, len(teams)),
	}

	for _, team := range teams {
		if team != "" {
			r.teamSet[team] = struct{}{}
		}
	}

	tagSet := make(map[string]struct{})
	for _, p := range participants {
		p.Tags = slices.Clone(p.Tags)
		r.participants = append(r.participants, p)
		r.byName[p.Name] = p
		r.byID[p.ID] = p
		if p.Team != "" {
			r.teamSet[p.Team] = struct{}{}
		}
		for _, tag := range p.Tags {
			tagSet[tag] = struct{}{}
		}
	}

	r.teams = sortedKeys(r.teamSet)
	r.tags = sortedKeys(tagSet)
	return r
}

func Load(ctx context.Context, src Source) (*Roster, error) {
	participants, err := src.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	teams, err := src.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return New(participants, teams), nil
}

// Context exposes the roster as both halves of a selector context.
func (r *Roster) Context() selector.Context {
	return selector.Context{Population: r, Membership: r}
}

func (r *Roster) Lookup(name string) (store.Participant, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Get finds a participant by id.
func (r *Roster) Get(id uuid.UUID) (store.Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Roster) Participants() []store.Participant {
	return slices.Clone(r.participants)
}

func (r *Roster) Len() int { return len(r.participants) }

func (r *Roster) Teams() []string { return slices.Clone(r.teams) }

func (r *Roster) HasTeam(name string) bool {
	_, ok := r.teamSet[name]
	return ok
}

func (r *Roster) TeamOf(id uuid.UUID) (string, bool) {
	p, ok := r.byID[id]
	if !ok || p.Team == "" {
		return "", false
	}
	return p.Team, true
}

func (r *Roster) Tags() []string { return slices.Clone(r.tags) }

func (r *Roster) TagsOf(id uuid.UUID) []string {
	return slices.Clone(r.byID[id].Tags)
}

// Members lists the participants on a team in registration order.
func (r *Roster) Members(team string) []store.Participant {
	out := make([]store.Participant, 0)
	for _, p := range r.participants {
		if p.Team == team {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
