package prompt

import (
	"fmt"
	"strings"
)

const (
	// SnippetLimit is the per-snippet character budget for continuity context.
	SnippetLimit = 1200

	// MaxHistoryDepth caps how many prior outputs can be folded into one compilation.
	MaxHistoryDepth = 30

	// DefaultHistoryDepth is the studio form's initial continuity depth.
	DefaultHistoryDepth = 3
)

// HistoryDepthOptions are the depths offered by the studio form.
var HistoryDepthOptions = []int{1, 2, 3, 5}

// Truncate trims text and cuts it to limit characters, marking the cut with "...".
func Truncate(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return string(runes[:limit]) + "..."
}

// ClampDepth bounds depth to [1, MaxHistoryDepth].
func ClampDepth(depth int) int {
	return min(max(depth, 1), MaxHistoryDepth)
}

// Snippets turns prior outputs (most recent first) into numbered continuity lines.
// Only the first depth entries are used, after clamping depth.
func Snippets(contents []string, depth int) []string {
	n := min(ClampDepth(depth), len(contents))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("[%d] %s", i+1, Truncate(contents[i], SnippetLimit)))
	}
	return out
}
