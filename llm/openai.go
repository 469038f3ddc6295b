package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIConfig configures an OpenAI-compatible chat completions client.
// Any endpoint speaking that wire format works through BaseURL.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAIClient{apiKey: cfg.APIKey, baseURL: baseURL, model: model, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Summarize(ctx context.Context, query string, results []Result) (Summary, error) {
	if c.apiKey == "" {
		return Summary{}, fmt.Errorf("openai: missing api key")
	}
	if len(results) > 10 {
		results = results[:10]
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0.2,
		MaxTokens:   350,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: `You are an analyst summarizing premium search results. Return JSON only with keys "bullets" and "insights".`,
			},
			{
				Role:    "user",
				Content: summaryPrompt(query, results),
			},
		},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("openai: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Summary{}, fmt.Errorf("openai error: %d %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Summary{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Summary{}, fmt.Errorf("openai: empty choices in response")
	}

	summary, ok := parseSummaryContent(decoded.Choices[0].Message.Content)
	if !ok {
		return Summary{}, fmt.Errorf("openai: response was not a usable summary")
	}
	return summary, nil
}

func summaryPrompt(query string, results []Result) string {
	if query == "" {
		query = "(empty query)"
	}
	lines := []string{"Query: " + query, "Results:"}
	for i, item := range results {
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s", i+1, item.Title, item.URL, item.Snippet))
	}
	lines = append(lines, "Return 4-6 concise bullets and 3-5 insights. Use complete sentences. JSON only.")
	return strings.Join(lines, "\n")
}

var jsonFence = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// parseSummaryContent tolerates models that wrap the JSON in markdown
// fences or prose around a single object.
func parseSummaryContent(content string) (Summary, bool) {
	content = strings.TrimSpace(content)
	if m := jsonFence.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	var summary Summary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start == -1 || end <= start {
			return Summary{}, false
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &summary); err != nil {
			return Summary{}, false
		}
	}
	return normalizeSummary(summary)
}
