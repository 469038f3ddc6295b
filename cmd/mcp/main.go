// The mcp binary serves the paying agent's tools over stdio for MCP
// clients.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	"github.com/x402-stacks/x402-stacks-go/agent"
	"github.com/x402-stacks/x402-stacks-go/config"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
	"github.com/x402-stacks/x402-stacks-go/llm"
	"github.com/x402-stacks/x402-stacks-go/mcp"
	"github.com/x402-stacks/x402-stacks-go/stacks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()

	signer, err := stacks.NewRemoteSigner(&stacks.RemoteSignerConfig{URL: cfg.SignerURL})
	if err != nil {
		return fmt.Errorf("SIGNER_URL is required: %w", err)
	}

	payments := x402stacks.NewPaymentClient().
		RegisterScheme(cfg.Network, stacks.NewExactClient(signer))

	facilitator := xhttp.NewFacilitatorHTTPClient(&xhttp.FacilitatorConfig{
		URL:     cfg.FacilitatorURL,
		Timeout: cfg.AgentTimeout,
	})

	orchestrator := agent.NewOrchestrator(payments, facilitator,
		agent.WithTimeout(cfg.AgentTimeout))

	summarizer := llm.FromProvider(cfg.LLMProvider, llm.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})

	runner := agent.NewRunner(orchestrator, summarizer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcp.NewServer(runner, cfg.AgentBaseURL).Run(ctx)
}
