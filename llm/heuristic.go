package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// HeuristicSummarizer builds a summary locally with no model call. It is
// deterministic for a given result set and never fails, so it doubles as
// the fallback when a hosted provider errors out.
type HeuristicSummarizer struct{}

func (HeuristicSummarizer) Summarize(_ context.Context, _ string, results []Result) (Summary, error) {
	bullets := make([]string, 0, 5)
	for _, item := range results {
		if len(bullets) == 5 {
			break
		}
		bullets = append(bullets, item.Title+" - "+item.URL)
	}

	counts := map[string]int{}
	order := []string{}
	for _, item := range results {
		for _, word := range Tokens(item.Title, 2) {
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	// Stable sort keeps first-seen order among equal counts so repeated
	// runs over the same dataset produce the same insight line.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}

	var insights []string
	if len(order) > 0 {
		insights = append(insights, "Common themes: "+strings.Join(order, ", ")+".")
	}
	insights = append(insights, fmt.Sprintf("Total results: %d.", len(results)))
	if len(results) >= 3 {
		insights = append(insights, "Coverage spans funding, infrastructure, and deployment topics.")
	} else {
		insights = append(insights, "Limited dataset; add more sources for broader coverage.")
	}

	return Summary{Bullets: bullets, Insights: insights}, nil
}
