// Package mcp exposes the points commands and ledger queries as MCP tools.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type Server struct {
	commands Commander
	points   PointsQuerier
	logger   *zap.Logger
	mcp      *sdk.Server
}

func NewServer(commands Commander, points PointsQuerier, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		commands: commands,
		points:   points,
		logger:   logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "points",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
