package assistant

import "strings"

// FormatResponse cleans generated text for display and speech synthesis.
// Models tend to answer with markdown; emphasis markers and heading/bullet
// prefixes would be read aloud by TTS, so they are stripped and whitespace is
// collapsed to single spaces.
func FormatResponse(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = strings.TrimPrefix(strings.TrimSpace(line), "- ")
		line = strings.TrimPrefix(line, "* ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	joined := strings.Join(parts, " ")
	joined = strings.ReplaceAll(joined, "**", "")
	joined = strings.ReplaceAll(joined, "__", "")
	joined = strings.ReplaceAll(joined, "`", "")
	return strings.Join(strings.Fields(joined), " ")
}
