package agents

import "strings"

// extractJSONObject returns the first top-level JSON object in content.
// Models often wrap JSON in prose or markdown fences despite being asked
// not to.
func extractJSONObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// extractCodeBlock returns the body of the first fenced code block, or
// the trimmed content when no fence is present.
func extractCodeBlock(content string) string {
	trimmed := strings.TrimSpace(content)

	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}

	rest := trimmed[start+3:]
	// Drop the info string ("go", "python") on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}

	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
