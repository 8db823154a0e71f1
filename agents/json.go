package agents

import (
	"strings"
)

// extractJSON pulls the first JSON object out of a model response.
// Models frequently wrap their answer in markdown code fences or prose
// despite being asked for bare JSON; this tolerates both.
func extractJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}

	return s[start : end+1], true
}
