// Package selector resolves clause tokens such as "teams:red" or
// "tags:vip,!banned" into the set of participants they describe.
package selector

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidClauseSyntax = errors.New("invalid clause syntax")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrReferenceNotFound   = errors.New("reference not found")
)

type Category string

const (
	Players     Category = "players"
	Teams       Category = "teams"
	TeamsFilter Category = "teams-filter"
	Tags        Category = "tags"
	TagsFilter  Category = "tags-filter"
)

// Categories lists the recognised categories in completion order.
var Categories = []Category{Players, Teams, TeamsFilter, Tags, TagsFilter}

func (c Category) valid() bool {
	switch c {
	case Players, Teams, TeamsFilter, Tags, TagsFilter:
		return true
	}
	return false
}

// All is the item that expands to the whole domain of a category.
const All = "all"

const invertMarker = "!"

type Item struct {
	Name     string
	Inverted bool
}

type Clause struct {
	Raw      string
	Category Category
	Items    []Item
}

// ResolveError reports which clause failed and why. It unwraps to one of
// the package's sentinel errors.
type ResolveError struct {
	Err       error
	Clause    string
	Category  Category
	Reference string
}

func (e *ResolveError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("clause %q: %v: %s", e.Clause, e.Err, e.Reference)
	}
	return fmt.Sprintf("clause %q: %v", e.Clause, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ParseClause splits a token once on ':' and its value on ','. Syntax is
// checked before the category, so "bogus" is a syntax error while
// "bogus:x" is an unknown category.
func ParseClause(raw string) (Clause, error) {
	key, value, ok := strings.Cut(raw, ":")
	if !ok || value == "" {
		return Clause{}, &ResolveError{Err: ErrInvalidClauseSyntax, Clause: raw}
	}

	parts := strings.Split(value, ",")
	items := make([]Item, 0, len(parts))
	for _, part := range parts {
		name, inverted := strings.CutPrefix(part, invertMarker)
		if name == "" {
			return Clause{}, &ResolveError{Err: ErrInvalidClauseSyntax, Clause: raw}
		}
		items = append(items, Item{Name: name, Inverted: inverted})
	}

	category := Category(key)
	if !category.valid() {
		return Clause{}, &ResolveError{Err: ErrUnknownCategory, Clause: raw, Category: category}
	}

	return Clause{Raw: raw, Category: category, Items: items}, nil
}

// ParseSelector parses every token, stopping at the first bad one.
func ParseSelector(tokens []string) ([]Clause, error) {
	clauses := make([]Clause, 0, len(tokens))
	for _, token := range tokens {
		clause, err := ParseClause(token)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}
