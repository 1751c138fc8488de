// Package validate checks the stored ledger and roster for inconsistencies.
package validate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"points/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeOrphanedEntry           = "orphaned_entry"
	codeCancellationMismatch    = "cancellation_mismatch"
	codeUnregisteredParticipant = "unregistered_participant"
	codeDuplicateName           = "duplicate_name"
)

type Issue struct {
	Severity    Severity
	Code        string
	Message     string
	Participant string
	OperationID int64
}

type Report struct {
	Issues []Issue
}

// HasErrors reports whether any issue is an error rather than a warning.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

type Validator interface {
	ListParticipants(ctx context.Context) ([]store.Participant, error)
	ActiveEntries(ctx context.Context) ([]store.HistoryEntry, error)
	ListOrphanedEntries(ctx context.Context) ([]store.HistoryEntry, error)
	ListCancellationMismatches(ctx context.Context) ([]store.HistoryEntry, error)
}

func Run(ctx context.Context, db Validator) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}

	issues := make([]Issue, 0)

	orphans, err := db.ListOrphanedEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orphaned entries: %w", err)
	}
	for _, e := range orphans {
		issues = append(issues, issueFromEntry(e, SeverityError, codeOrphanedEntry, "history entry has no operation record"))
	}

	mismatches, err := db.ListCancellationMismatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cancellation mismatches: %w", err)
	}
	for _, e := range mismatches {
		issues = append(issues, issueFromEntry(e, SeverityError, codeCancellationMismatch, "entry and operation disagree on cancellation"))
	}

	participants, err := db.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	issues = append(issues, duplicateNames(participants)...)

	entries, err := db.ActiveEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active entries: %w", err)
	}
	issues = append(issues, unregistered(participants, entries)...)

	return &Report{Issues: issues}, nil
}

func duplicateNames(participants []store.Participant) []Issue {
	counts := make(map[string]int, len(participants))
	for _, p := range participants {
		counts[p.Name]++
	}

	var issues []Issue
	reported := make(map[string]struct{})
	for _, p := range participants {
		if counts[p.Name] < 2 {
			continue
		}
		if _, done := reported[p.Name]; done {
			continue
		}
		reported[p.Name] = struct{}{}
		issues = append(issues, Issue{
			Severity:    SeverityWarn,
			Code:        codeDuplicateName,
			Message:     fmt.Sprintf("%d participants share this name; selectors match the latest", counts[p.Name]),
			Participant: p.Name,
		})
	}
	return issues
}

func unregistered(participants []store.Participant, entries []store.HistoryEntry) []Issue {
	known := make(map[uuid.UUID]struct{}, len(participants))
	for _, p := range participants {
		known[p.ID] = struct{}{}
	}

	var issues []Issue
	reported := make(map[uuid.UUID]struct{})
	for _, e := range entries {
		if _, ok := known[e.ParticipantID]; ok {
			continue
		}
		if _, done := reported[e.ParticipantID]; done {
			continue
		}
		reported[e.ParticipantID] = struct{}{}
		issues = append(issues, issueFromEntry(e, SeverityWarn, codeUnregisteredParticipant, "points held by a participant missing from the roster"))
	}
	return issues
}

func issueFromEntry(e store.HistoryEntry, severity Severity, code, message string) Issue {
	return Issue{
		Severity:    severity,
		Code:        code,
		Message:     message,
		Participant: e.ParticipantID.String(),
		OperationID: e.OperationID,
	}
}
