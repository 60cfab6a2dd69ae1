// Package mcp exposes the sandbox payment operations as MCP tools so
// agent frameworks can drive settlements over the Model Context
// Protocol.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

const serverName = "payos-sandbox"

// Server wraps the MCP server around the in-process payment services.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer creates a new MCP Server with all payment tools registered.
func NewServer(version string, quotes *service.QuoteService, settlements *service.SettlementService) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	mcp.AddTool(mcpServer, GetQuoteTool(), GetQuoteHandler(quotes))
	mcp.AddTool(mcpServer, AcquireTokenTool(), AcquireTokenHandler(settlements))
	mcp.AddTool(mcpServer, SettleTool(), SettleHandler(settlements))
	mcp.AddTool(mcpServer, GetSettlementTool(), GetSettlementHandler(settlements))
	mcp.AddTool(mcpServer, CapabilitiesTool(), CapabilitiesHandler())

	return &Server{mcpServer: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
