package routing

import (
	"taskforge-hq/taskforge/pkg/providers"
)

// DefaultOutputTokens is assumed for the response size when a hint does not
// carry an estimate.
const DefaultOutputTokens = 500

// EstimateTokens approximates the token count of a text.
// The heuristic is four characters per token, rounded up, which is close
// enough for English prose and context-window checks.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// EstimateInputTokens sums the token estimate over a conversation.
func EstimateInputTokens(messages []providers.Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

// outputEstimate resolves the expected response length from a hint.
func outputEstimate(hint *TaskHint) int {
	if hint != nil && hint.EstimatedTokens > 0 {
		return hint.EstimatedTokens
	}
	return DefaultOutputTokens
}
