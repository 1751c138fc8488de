package selector

import (
	"slices"
	"strings"
)

// Complete suggests replacements for the last token of a partly typed
// selector. Without a known "category:" prefix it offers category names;
// otherwise it offers whole tokens that extend the last item.
func Complete(tokens []string, ctx Context) []string {
	if len(tokens) == 0 {
		return categoryNames("")
	}

	last := tokens[len(tokens)-1]
	key, value, ok := strings.Cut(last, ":")
	category := Category(key)
	if !ok || !category.valid() {
		return categoryNames(strings.ToLower(last))
	}

	names := append([]string{All}, domainNames(category, ctx)...)

	head := ""
	current := value
	if i := strings.LastIndex(value, ","); i >= 0 {
		head, current = value[:i+1], value[i+1:]
	}
	stem, inverted := strings.CutPrefix(current, invertMarker)

	prefix := category.String() + ":" + head
	out := make([]string, 0, len(names)+1)
	add := func(candidate string) {
		if !slices.Contains(out, candidate) {
			out = append(out, candidate)
		}
	}

	if current == "" {
		for _, name := range names {
			add(prefix + name)
		}
		add(prefix + invertMarker)
		return out
	}

	mark := ""
	if inverted {
		mark = invertMarker
	}
	for _, name := range names {
		if strings.HasPrefix(name, stem) {
			add(prefix + mark + name)
		}
	}
	if slices.Contains(names, stem) {
		for _, name := range names {
			add(category.String() + ":" + value + "," + name)
		}
	}
	return out
}

func (c Category) String() string { return string(c) }

func categoryNames(typed string) []string {
	out := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if strings.HasPrefix(c.String(), typed) {
			out = append(out, c.String())
		}
	}
	return out
}

func domainNames(category Category, ctx Context) []string {
	switch category {
	case Players:
		participants := ctx.Population.Participants()
		names := make([]string, 0, len(participants))
		for _, p := range participants {
			if !slices.Contains(names, p.Name) {
				names = append(names, p.Name)
			}
		}
		return names
	case Teams, TeamsFilter:
		return ctx.Membership.Teams()
	default:
		return ctx.Membership.Tags()
	}
}
