// Package llm turns premium search results into short analyst-style
// summaries, either through an OpenAI-compatible chat endpoint or a
// deterministic local heuristic.
package llm

import (
	"context"
	"regexp"
	"strings"
)

// Result is the slice of a search hit a summarizer looks at.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Summary is the normalized output shape every summarizer produces.
type Summary struct {
	Bullets  []string `json:"bullets"`
	Insights []string `json:"insights"`
}

// Summarizer condenses search results for a query. Implementations
// return an error when the backend fails; callers fall back to
// HeuristicSummarizer in that case.
type Summarizer interface {
	Summarize(ctx context.Context, query string, results []Result) (Summary, error)
}

// stopwords are filler tokens stripped from prompts and titles. The mix
// covers the Indonesian and English phrasing the dataset is queried in.
var stopwords = map[string]bool{
	"cari": true, "carikan": true, "tolong": true, "temukan": true,
	"artikel": true, "tentang": true, "yang": true, "dan": true,
	"di": true, "ke": true, "untuk": true, "mengenai": true,
	"list": true, "ringkas": true, "ringkasan": true,
	"please": true, "find": true, "search": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// Tokens lowercases text, strips punctuation and stopwords, and keeps
// tokens longer than minLen runes.
func Tokens(text string, minLen int) []string {
	sanitized := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")

	var tokens []string
	for _, token := range strings.Fields(sanitized) {
		if len(token) <= minLen || stopwords[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// normalizeSummary trims entries, drops blanks and caps both lists at
// six entries. It reports false when either list ends up empty, which
// callers treat as "no usable summary".
func normalizeSummary(s Summary) (Summary, bool) {
	clean := func(in []string) []string {
		var out []string
		for _, entry := range in {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			out = append(out, entry)
		}
		if len(out) > 6 {
			out = out[:6]
		}
		return out
	}

	normalized := Summary{Bullets: clean(s.Bullets), Insights: clean(s.Insights)}
	if len(normalized.Bullets) == 0 || len(normalized.Insights) == 0 {
		return Summary{}, false
	}
	return normalized, true
}
