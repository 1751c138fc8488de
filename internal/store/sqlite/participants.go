package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"points/internal/store"
)

func (c *Client) UpsertParticipant(ctx context.Context, p store.Participant) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `
	INSERT INTO participants (id, name, team, tags, operator)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		team = excluded.team,
		tags = excluded.tags,
		operator = excluded.operator
	`

	_, err = c.db.ExecContext(ctx, query, p.ID.String(), p.Name, p.Team, string(tagsJSON), p.Operator)
	if err != nil {
		return fmt.Errorf("upserting participant: %w", err)
	}
	return nil
}

func (c *Client) ListParticipants(ctx context.Context) ([]store.Participant, error) {
	query := `SELECT id, name, team, tags, operator FROM participants ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	participants := make([]store.Participant, 0)
	for rows.Next() {
		var p store.Participant
		var tagsBytes []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &tagsBytes, &p.Operator); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		if len(tagsBytes) > 0 {
			if err := json.Unmarshal(tagsBytes, &p.Tags); err != nil {
				return nil, fmt.Errorf("unmarshaling tags: %w", err)
			}
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participants: %w", err)
	}

	return participants, nil
}

func (c *Client) UpsertTeam(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, `INSERT INTO teams (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return fmt.Errorf("upserting team: %w", err)
	}
	return nil
}

func (c *Client) ListTeams(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams: %w", err)
	}

	return teams, nil
}
