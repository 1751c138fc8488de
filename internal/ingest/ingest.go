// Package ingest loads roster documents into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"points/internal/parser"
	"points/internal/store"
)

// Store is the part of the store roster import writes to.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertParticipant(ctx context.Context, p store.Participant) error
	ListParticipants(ctx context.Context) ([]store.Participant, error)
	UpsertTeam(ctx context.Context, name string) error
}

type Result struct {
	ParticipantsUpserted int
	TeamsUpserted        int
	FilesSkipped         int
	Errors               []error
}

type Options struct {
	// Teams are declared in addition to the ones found in documents.
	Teams   []string
	Exclude []string
}

// Run imports every roster document under paths. Files and directories are
// both accepted; directories are walked for .yaml and .yml files. Per-file
// problems are collected in the result rather than aborting the run.
func Run(ctx context.Context, db Store, paths []string, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	files, err := walkRosterFiles(paths, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking roster files: %w", err)
	}

	result := &Result{}
	teams := make(map[string]struct{})
	for _, team := range options.Teams {
		teams[team] = struct{}{}
	}

	for _, path := range files {
		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrEmptyDocument) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		for _, team := range doc.Teams {
			teams[team] = struct{}{}
		}
		for _, entry := range doc.Participants {
			if entry.Team != "" {
				teams[entry.Team] = struct{}{}
			}
			p := store.Participant{
				ID:       entry.ID,
				Name:     entry.Name,
				Team:     entry.Team,
				Tags:     entry.Tags,
				Operator: entry.Operator,
			}
			if err := db.UpsertParticipant(ctx, p); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("upserting %s from %s: %w", entry.Name, path, err))
				continue
			}
			result.ParticipantsUpserted++
		}
	}

	for team := range teams {
		if err := db.UpsertTeam(ctx, team); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting team %s: %w", team, err))
			continue
		}
		result.TeamsUpserted++
	}

	return result, nil
}

// Join registers a participant the first time it is seen and refreshes its
// display name afterwards. Team, tags and operator status are kept.
func Join(ctx context.Context, db Store, id uuid.UUID, name string) (store.Participant, error) {
	if strings.TrimSpace(name) == "" {
		return store.Participant{}, parser.ErrMissingName
	}

	participants, err := db.ListParticipants(ctx)
	if err != nil {
		return store.Participant{}, fmt.Errorf("listing participants: %w", err)
	}

	p := store.Participant{ID: id, Name: name, Tags: []string{}}
	for _, existing := range participants {
		if existing.ID == id {
			p = existing
			p.Name = name
			break
		}
	}

	if err := db.UpsertParticipant(ctx, p); err != nil {
		return store.Participant{}, fmt.Errorf("upserting participant: %w", err)
	}
	return p, nil
}

func walkRosterFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if path != root && !isRosterFile(d.Name()) {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isRosterFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
