package agent

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/x402-stacks/x402-stacks-go/llm"
)

// RunInput configures one autonomous run against a resource server.
// Query wins over Prompt; a Prompt is reduced to a search query first.
type RunInput struct {
	BaseURL string
	Query   string
	Prompt  string
}

// SearchData is the paid endpoint's response body.
type SearchData struct {
	Query   string       `json:"query"`
	Results []llm.Result `json:"results"`
}

// RunResult is the full outcome of a run: protocol trace, paid data and
// the generated summary.
type RunResult struct {
	OK      bool         `json:"ok"`
	Status  int          `json:"status"`
	State   State        `json:"state"`
	Reason  string       `json:"reason,omitempty"`
	Query   string       `json:"query"`
	Payment *PaymentInfo `json:"payment,omitempty"`
	Data    *SearchData  `json:"data,omitempty"`
	Summary *llm.Summary `json:"summary,omitempty"`
	Logs    []LogEntry   `json:"logs"`
}

type PaymentInfo struct {
	TxID string `json:"txid"`
}

// Runner wires an orchestrator to a summarizer. A nil summarizer skips
// the model call and summarizes heuristically.
type Runner struct {
	orchestrator *Orchestrator
	summarizer   llm.Summarizer
}

func NewRunner(orchestrator *Orchestrator, summarizer llm.Summarizer) *Runner {
	return &Runner{orchestrator: orchestrator, summarizer: summarizer}
}

// Run executes the paid search cycle end to end and summarizes whatever
// came back. Protocol failures are reported in the result, not as an
// error.
func (r *Runner) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		query = BuildQuery(input.Prompt)
	}

	target, err := url.Parse(input.BaseURL)
	if err != nil {
		return nil, err
	}
	target = target.JoinPath("/premium/search")
	if query != "" {
		values := url.Values{"q": []string{query}}
		target.RawQuery = values.Encode()
	}

	fetched, err := r.orchestrator.Fetch(ctx, target.String())
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		OK:     fetched.OK(),
		Status: fetched.Status,
		State:  fetched.State,
		Reason: fetched.Reason,
		Query:  query,
		Logs:   fetched.Logs,
	}
	if fetched.TxID != "" {
		result.Payment = &PaymentInfo{TxID: fetched.TxID}
	}

	if len(fetched.Body) > 0 {
		var data SearchData
		if json.Unmarshal(fetched.Body, &data) == nil && (data.Query != "" || data.Results != nil) {
			result.Data = &data
		}
	}

	if result.OK && result.Data != nil && len(result.Data.Results) > 0 {
		summary := r.summarize(ctx, query, result.Data.Results, result)
		result.Summary = &summary
	}
	return result, nil
}

func (r *Runner) summarize(ctx context.Context, query string, results []llm.Result, result *RunResult) llm.Summary {
	appendLog := func(message string) {
		entry := LogEntry{Message: message, Timestamp: time.Now().UTC()}
		result.Logs = append(result.Logs, entry)
	}

	if r.summarizer != nil {
		appendLog("AI Summary: requesting LLM analysis...")
		summary, err := r.summarizer.Summarize(ctx, query, results)
		if err == nil {
			appendLog("AI Summary generated via LLM")
			return summary
		}
		appendLog("AI Summary error: " + err.Error())
	}

	appendLog("AI Summary fallback to heuristic")
	summary, _ := llm.HeuristicSummarizer{}.Summarize(ctx, query, results)
	return summary
}

// BuildQuery reduces a free-form prompt to at most six search tokens.
func BuildQuery(prompt string) string {
	tokens := llm.Tokens(prompt, 1)
	if len(tokens) > 6 {
		tokens = tokens[:6]
	}
	return strings.Join(tokens, " ")
}
