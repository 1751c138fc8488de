package selector

import "points/internal/store"

// Resolve applies the clauses left to right to an empty set. Any error
// discards the whole result.
func Resolve(tokens []string, ctx Context) (*TargetSet, error) {
	clauses, err := ParseSelector(tokens)
	if err != nil {
		return nil, err
	}

	set := NewTargetSet()
	for _, clause := range clauses {
		var err error
		switch clause.Category {
		case Players:
			err = applyPlayers(set, clause, ctx)
		case Teams, TeamsFilter:
			err = applyTeams(set, clause, ctx)
		case Tags, TagsFilter:
			applyTags(set, clause, ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// applyPlayers mutates the set item by item, so a later item overrides an
// earlier one for the same participant.
func applyPlayers(set *TargetSet, clause Clause, ctx Context) error {
	for _, item := range clause.Items {
		if item.Name == All {
			for _, p := range ctx.Population.Participants() {
				if item.Inverted {
					set.Remove(p.ID)
				} else {
					set.Add(p)
				}
			}
			continue
		}

		p, ok := ctx.Population.Lookup(item.Name)
		if !ok {
			return &ResolveError{Err: ErrReferenceNotFound, Clause: clause.Raw, Category: clause.Category, Reference: item.Name}
		}
		if item.Inverted {
			set.Remove(p.ID)
		} else {
			set.Add(p)
		}
	}
	return nil
}

func applyTeams(set *TargetSet, clause Clause, ctx Context) error {
	teams := make(map[string]struct{})
	for _, item := range clause.Items {
		if item.Name == All {
			if item.Inverted {
				clear(teams)
				continue
			}
			for _, team := range ctx.Membership.Teams() {
				teams[team] = struct{}{}
			}
			continue
		}

		if !ctx.Membership.HasTeam(item.Name) {
			return &ResolveError{Err: ErrReferenceNotFound, Clause: clause.Raw, Category: clause.Category, Reference: item.Name}
		}
		if item.Inverted {
			delete(teams, item.Name)
		} else {
			teams[item.Name] = struct{}{}
		}
	}

	inTeams := func(p store.Participant) bool {
		team, ok := ctx.Membership.TeamOf(p.ID)
		if !ok {
			return false
		}
		_, ok = teams[team]
		return ok
	}

	if clause.Category == TeamsFilter {
		set.Retain(inTeams)
		return nil
	}
	for _, p := range ctx.Population.Participants() {
		if inTeams(p) {
			set.Add(p)
		}
	}
	return nil
}

// applyTags accumulates an include set and an exclude set over the whole
// value list. A participant matches when it holds an included tag and no
// excluded one. Tags are not checked for existence.
func applyTags(set *TargetSet, clause Clause, ctx Context) {
	include := make(map[string]struct{})
	exclude := make(map[string]struct{})
	for _, item := range clause.Items {
		switch {
		case item.Name == All && item.Inverted:
			clear(include)
			clear(exclude)
		case item.Name == All:
			clear(exclude)
			for _, tag := range ctx.Membership.Tags() {
				include[tag] = struct{}{}
			}
		case item.Inverted:
			delete(include, item.Name)
			exclude[item.Name] = struct{}{}
		default:
			delete(exclude, item.Name)
			include[item.Name] = struct{}{}
		}
	}

	matches := func(p store.Participant) bool {
		held := false
		for _, tag := range ctx.Membership.TagsOf(p.ID) {
			if _, ok := exclude[tag]; ok {
				return false
			}
			if _, ok := include[tag]; ok {
				held = true
			}
		}
		return held
	}

	if clause.Category == TagsFilter {
		set.Retain(matches)
		return
	}
	for _, p := range ctx.Population.Participants() {
		if matches(p) {
			set.Add(p)
		}
	}
}
