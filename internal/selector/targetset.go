package selector

import (
	"slices"

	"github.com/google/uuid"

	"points/internal/store"
)

// TargetSet is a participant set that remembers insertion order.
type TargetSet struct {
	order   []uuid.UUID
	members map[uuid.UUID]store.Participant
}

func NewTargetSet() *TargetSet {
	return &TargetSet{members: make(map[uuid.UUID]store.Participant)}
}

func (s *TargetSet) Add(p store.Participant) {
	if _, ok := s.members[p.ID]; ok {
		return
	}
	s.members[p.ID] = p
	s.order = append(s.order, p.ID)
}

func (s *TargetSet) Remove(id uuid.UUID) {
	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	s.order = slices.DeleteFunc(s.order, func(member uuid.UUID) bool { return member == id })
}

// Retain drops every member for which keep returns false.
func (s *TargetSet) Retain(keep func(store.Participant) bool) {
	s.order = slices.DeleteFunc(s.order, func(id uuid.UUID) bool {
		if keep(s.members[id]) {
			return false
		}
		delete(s.members, id)
		return true
	})
}

func (s *TargetSet) Contains(id uuid.UUID) bool {
	_, ok := s.members[id]
	return ok
}

func (s *TargetSet) Len() int { return len(s.order) }

// Members returns the participants in insertion order.
func (s *TargetSet) Members() []store.Participant {
	out := make([]store.Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id])
	}
	return out
}

func (s *TargetSet) Names() []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id].Name)
	}
	return out
}
