// Package parser reads roster documents: YAML files that declare teams and
// the participants the ledger may target.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Document struct {
	Teams        []string
	Participants []Entry
	SourceFile   string
}

type Entry struct {
	ID       uuid.UUID
	Name     string
	Team     string
	Tags     []string
	Operator bool
}

var (
	ErrEmptyDocument = errors.New("roster document is empty")
	ErrInvalidYAML   = errors.New("invalid YAML in roster document")
	ErrMissingID     = errors.New("participant missing required 'id' field")
	ErrInvalidID     = errors.New("participant 'id' is not a UUID")
	ErrMissingName   = errors.New("participant missing required 'name' field")
	ErrDuplicateID   = errors.New("participant id listed twice")
)

type rawDocument struct {
	Teams        any        `yaml:"teams"`
	Participants []rawEntry `yaml:"participants"`
}

type rawEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Team     string `yaml:"team"`
	Tags     any    `yaml:"tags"`
	Operator bool   `yaml:"operator"`
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	if strings.TrimSpace(strings.TrimPrefix(string(content), "\ufeff")) == "" {
		return nil, ErrEmptyDocument
	}

	var raw rawDocument
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	teams, err := parseList(raw.Teams, "teams")
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Teams:        teams,
		Participants: make([]Entry, 0, len(raw.Participants)),
	}
	seen := make(map[uuid.UUID]struct{}, len(raw.Participants))
	for i, r := range raw.Participants {
		entry, err := parseEntry(r)
		if err != nil {
			return nil, fmt.Errorf("participant %d: %w", i, err)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("participant %d: %w: %s", i, ErrDuplicateID, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		doc.Participants = append(doc.Participants, entry)
	}

	return doc, nil
}

func parseEntry(r rawEntry) (Entry, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Entry{}, ErrMissingID
	}
	id, err := uuid.Parse(strings.TrimSpace(r.ID))
	if err != nil {
		return Entry{}, ErrInvalidID
	}
	if strings.TrimSpace(r.Name) == "" {
		return Entry{}, ErrMissingName
	}
	tags, err := parseList(r.Tags, "tags")
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:       id,
		Name:     r.Name,
		Team:     strings.TrimSpace(r.Team),
		Tags:     tags,
		Operator: r.Operator,
	}, nil
}

// parseList accepts a single string or a list of strings.
func parseList(value any, field string) ([]string, error) {
	if value == nil {
		return []string{}, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be strings", field)
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be string or list of strings", field)
	}
}
