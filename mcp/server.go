// Package mcp exposes the paying agent as Model Context Protocol tools,
// so any MCP-capable model can search the paid dataset without knowing
// about the payment cycle underneath.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/x402-stacks/x402-stacks-go/agent"
)

const (
	serverName    = "x402-stacks-premium"
	serverVersion = "1.0.0"
)

// Server wraps an MCP server around an agent runner. baseURL names the
// resource server every tool call targets.
type Server struct {
	runner  *agent.Runner
	baseURL string
	server  *mcpsdk.Server
}

func NewServer(runner *agent.Runner, baseURL string) *Server {
	s := &Server{
		runner:  runner,
		baseURL: baseURL,
		server: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}
	s.registerTools()
	return s
}

// SDK returns the underlying MCP server for custom transports.
func (s *Server) SDK() *mcpsdk.Server { return s.server }

// Run serves the tools over stdio until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

type searchArgs struct {
	Query  string `json:"query"`
	Prompt string `json:"prompt"`
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcpsdk.Tool{
		Name:        "ping",
		Description: "A free health check tool",
		InputSchema: map[string]interface{}{"type": "object"},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return textResult("pong", false), nil
	})

	s.server.AddTool(&mcpsdk.Tool{
		Name:        "premium_search",
		Description: "Search the paid premium dataset. Settles an STX micropayment automatically and returns results with the payment transaction id.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":  map[string]interface{}{"type": "string", "description": "Search query"},
				"prompt": map[string]interface{}{"type": "string", "description": "Free-form prompt, reduced to a query when no query is given"},
			},
		},
	}, s.handlePremiumSearch)
}

func (s *Server) handlePremiumSearch(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args searchArgs
	if req.Params.Arguments != nil {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return textResult(fmt.Sprintf("invalid arguments: %v", err), true), nil
		}
	}

	result, err := s.runner.Run(ctx, agent.RunInput{
		BaseURL: s.baseURL,
		Query:   args.Query,
		Prompt:  args.Prompt,
	})
	if err != nil {
		return textResult(err.Error(), true), nil
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return textResult(err.Error(), true), nil
	}
	return textResult(string(encoded), !result.OK), nil
}

func textResult(text string, isError bool) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: isError,
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}
}
