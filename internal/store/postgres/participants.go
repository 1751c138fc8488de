package postgres

import (
	"context"
	"fmt"

	"points/internal/store"
)

func (c *Client) UpsertParticipant(ctx context.Context, p store.Participant) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
INSERT INTO participants (id, name, team, tags, operator)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    team = EXCLUDED.team,
    tags = EXCLUDED.tags,
    operator = EXCLUDED.operator
`
	if _, err := c.pool.Exec(ctx, query, p.ID, p.Name, p.Team, tags, p.Operator); err != nil {
		return fmt.Errorf("upserting participant: %w", err)
	}
	return nil
}

func (c *Client) ListParticipants(ctx context.Context) ([]store.Participant, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, name, team, tags, operator FROM participants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	participants := make([]store.Participant, 0)
	for rows.Next() {
		var p store.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.Tags, &p.Operator); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
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
	if _, err := c.pool.Exec(ctx, `INSERT INTO teams (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return fmt.Errorf("upserting team: %w", err)
	}
	return nil
}

func (c *Client) ListTeams(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT name FROM teams ORDER BY name`)
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
