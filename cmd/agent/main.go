// The agent binary runs one paid search cycle from the command line:
// request, pay the 402 challenge through the facilitator, retry with
// proof, then print results and a summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	"github.com/x402-stacks/x402-stacks-go/agent"
	"github.com/x402-stacks/x402-stacks-go/config"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
	"github.com/x402-stacks/x402-stacks-go/llm"
	"github.com/x402-stacks/x402-stacks-go/stacks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var query string
	var jsonOutput bool
	flag.StringVar(&query, "q", "", "search query (skips prompt reduction)")
	flag.BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	flag.Parse()

	prompt := ""
	if query == "" {
		prompt = strings.Join(flag.Args(), " ")
	}

	cfg := config.FromEnv()
	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	result, err := runner.Run(context.Background(), agent.RunInput{
		BaseURL: cfg.AgentBaseURL,
		Query:   query,
		Prompt:  prompt,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	printResult(result)
	if !result.OK {
		return fmt.Errorf("cycle failed: %s", result.Reason)
	}
	return nil
}

func buildRunner(cfg config.Config) (*agent.Runner, error) {
	signer, err := stacks.NewRemoteSigner(&stacks.RemoteSignerConfig{URL: cfg.SignerURL})
	if err != nil {
		return nil, fmt.Errorf("SIGNER_URL is required: %w", err)
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
	return agent.NewRunner(orchestrator, summarizer), nil
}

func printResult(result *agent.RunResult) {
	if len(result.Logs) > 0 {
		fmt.Println("Logs:")
		for _, entry := range result.Logs {
			fmt.Printf("[%s] %s\n", entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), entry.Message)
		}
		fmt.Println()
	}

	if result.Data != nil && len(result.Data.Results) > 0 {
		fmt.Println("Results:")
		for i, item := range result.Data.Results {
			fmt.Printf("%d. %s\n", i+1, item.Title)
			fmt.Printf("   %s\n", item.URL)
			fmt.Printf("   %s\n", item.Snippet)
		}
		fmt.Println()
	}

	if result.Summary != nil {
		fmt.Println("Summary:")
		for _, bullet := range result.Summary.Bullets {
			fmt.Println("- " + bullet)
		}
		fmt.Println()
		fmt.Println("Insights:")
		for _, insight := range result.Summary.Insights {
			fmt.Println("- " + insight)
		}
	}
}
