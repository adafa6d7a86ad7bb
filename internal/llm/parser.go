package llm

import (
	"encoding/json"
	"strings"
)

// cleanMarkdownWrapper strips a ```json ... ``` fence some models wrap replies in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence
		content = content[idx+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseCompletion tries a JSON parse first and falls back to the trimmed text.
func parseCompletion(content string) Completion {
	text := strings.TrimSpace(content)

	var structured any
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(text)), &structured); err == nil && structured != nil {
		return Completion{Text: text, Structured: structured}
	}

	return Completion{Text: text}
}
