package llm

import "strings"

// FromProvider resolves a provider label to a summarizer. It returns nil
// for "none", unknown labels, or a provider missing its credentials;
// callers then skip the model call and use HeuristicSummarizer directly.
func FromProvider(provider string, openai OpenAIConfig) Summarizer {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		if openai.APIKey == "" {
			return nil
		}
		return NewOpenAIClient(openai)
	default:
		return nil
	}
}
