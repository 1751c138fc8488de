package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"points/internal/command"
	"points/internal/ledger"
	"points/internal/roster"
	"points/internal/selector"
)

// Commander runs chat-style commands on behalf of a named participant.
type Commander interface {
	SenderNamed(ctx context.Context, name string) (command.Sender, error)
	Execute(ctx context.Context, sender command.Sender, args []string) command.Reply
	Complete(ctx context.Context, args []string) []string
	Roster(ctx context.Context) (*roster.Roster, error)
}

type PointsQuerier interface {
	TotalOf(ctx context.Context, participant uuid.UUID) (decimal.Decimal, error)
	HistoryOf(ctx context.Context, participant uuid.UUID) ([]ledger.HistoryPoint, error)
	Rank(ctx context.Context, opts ledger.RankOptions) ([]ledger.Standing, error)
}

type RunCommandInput struct {
	As   string `json:"as" jsonschema:"name of the participant issuing the command"`
	Args string `json:"args" jsonschema:"command arguments separated by spaces, e.g. add 5 teams:red"`
}

type ResolveSelectorInput struct {
	Selector string `json:"selector" jsonschema:"selector clauses separated by spaces, e.g. teams:red tags:!banned"`
}

type GetPointsInput struct {
	Name string `json:"name" jsonschema:"participant name"`
}

type GetRankInput struct {
	Top              int  `json:"top,omitempty" jsonschema:"limit to the first N standings"`
	ExcludeOperators bool `json:"exclude_operators,omitempty" jsonschema:"leave operators out of the ranking"`
}

type CompleteInput struct {
	Args string `json:"args" jsonschema:"partial command line; a trailing space starts a new argument"`
}

type RunCommandOutput struct {
	Lines     []string `json:"lines"`
	Broadcast []string `json:"broadcast"`
	Failed    bool     `json:"failed"`
}

type ResolveSelectorOutput struct {
	Targets []string `json:"targets"`
}

type HistoryPointOutput struct {
	OperationID int64     `json:"operation_id"`
	Timestamp   time.Time `json:"timestamp"`
	Delta       int64     `json:"delta"`
}

type GetPointsOutput struct {
	Name    string               `json:"name"`
	Total   string               `json:"total"`
	History []HistoryPointOutput `json:"history"`
}

type StandingOutput struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Team  string `json:"team,omitempty"`
	Total string `json:"total"`
}

type GetRankOutput struct {
	Standings []StandingOutput `json:"standings"`
}

type CompleteOutput struct {
	Candidates []string `json:"candidates"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "run_command",
		Description: "Run a points command as a registered participant",
	}, s.handleRunCommand)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_selector",
		Description: "List the participants a selector targets",
	}, s.handleResolveSelector)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_points",
		Description: "Return a participant's total and point history",
	}, s.handleGetPoints)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_rank",
		Description: "Return the current standings",
	}, s.handleGetRank)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "complete",
		Description: "Suggest completions for a partial command line",
	}, s.handleComplete)
}

func (s *Server) handleRunCommand(ctx context.Context, req *sdk.CallToolRequest, input RunCommandInput) (*sdk.CallToolResult, RunCommandOutput, error) {
	if input.As == "" {
		return nil, RunCommandOutput{}, fmt.Errorf("as is required")
	}
	sender, err := s.commands.SenderNamed(ctx, input.As)
	if err != nil {
		return nil, RunCommandOutput{}, err
	}

	reply := s.commands.Execute(ctx, sender, strings.Fields(input.Args))
	s.logger.Debug("command executed",
		zap.String("as", input.As),
		zap.String("args", input.Args),
		zap.Bool("failed", reply.Err != nil),
	)
	return nil, RunCommandOutput{
		Lines:     nonNil(reply.Lines),
		Broadcast: nonNil(reply.Broadcast),
		Failed:    reply.Err != nil,
	}, nil
}

func (s *Server) handleResolveSelector(ctx context.Context, req *sdk.CallToolRequest, input ResolveSelectorInput) (*sdk.CallToolResult, ResolveSelectorOutput, error) {
	tokens := strings.Fields(input.Selector)
	if len(tokens) == 0 {
		return nil, ResolveSelectorOutput{}, fmt.Errorf("selector is required")
	}
	r, err := s.commands.Roster(ctx)
	if err != nil {
		return nil, ResolveSelectorOutput{}, err
	}
	targets, err := selector.Resolve(tokens, r.Context())
	if err != nil {
		return nil, ResolveSelectorOutput{}, err
	}
	return nil, ResolveSelectorOutput{Targets: targets.Names()}, nil
}

func (s *Server) handleGetPoints(ctx context.Context, req *sdk.CallToolRequest, input GetPointsInput) (*sdk.CallToolResult, GetPointsOutput, error) {
	if input.Name == "" {
		return nil, GetPointsOutput{}, fmt.Errorf("name is required")
	}
	r, err := s.commands.Roster(ctx)
	if err != nil {
		return nil, GetPointsOutput{}, err
	}
	p, ok := r.Lookup(input.Name)
	if !ok {
		return nil, GetPointsOutput{}, fmt.Errorf("participant not found")
	}

	total, err := s.points.TotalOf(ctx, p.ID)
	if err != nil {
		return nil, GetPointsOutput{}, err
	}
	history, err := s.points.HistoryOf(ctx, p.ID)
	if err != nil {
		return nil, GetPointsOutput{}, err
	}

	out := GetPointsOutput{
		Name:    p.Name,
		Total:   total.String(),
		History: make([]HistoryPointOutput, 0, len(history)),
	}
	for _, h := range history {
		out.History = append(out.History, HistoryPointOutput{
			OperationID: h.OperationID,
			Timestamp:   h.Timestamp,
			Delta:       h.Delta,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetRank(ctx context.Context, req *sdk.CallToolRequest, input GetRankInput) (*sdk.CallToolResult, GetRankOutput, error) {
	if input.Top < 0 {
		return nil, GetRankOutput{}, fmt.Errorf("top must not be negative")
	}
	standings, err := s.points.Rank(ctx, ledger.RankOptions{ExcludeOperators: input.ExcludeOperators})
	if err != nil {
		return nil, GetRankOutput{}, err
	}
	if input.Top > 0 && len(standings) > input.Top {
		standings = standings[:input.Top]
	}

	out := make([]StandingOutput, 0, len(standings))
	for _, st := range standings {
		out = append(out, StandingOutput{
			Rank:  st.Rank,
			Name:  st.Participant.Name,
			Team:  st.Participant.Team,
			Total: st.Total.String(),
		})
	}
	return nil, GetRankOutput{Standings: out}, nil
}

func (s *Server) handleComplete(ctx context.Context, req *sdk.CallToolRequest, input CompleteInput) (*sdk.CallToolResult, CompleteOutput, error) {
	args := strings.Fields(input.Args)
	if input.Args == "" || strings.HasSuffix(input.Args, " ") {
		args = append(args, "")
	}
	return nil, CompleteOutput{Candidates: nonNil(s.commands.Complete(ctx, args))}, nil
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
