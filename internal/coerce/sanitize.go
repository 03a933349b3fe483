package coerce

import (
	"regexp"
	"strings"
)

var (
	lineBreaks = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		`\r\n`, "\n",
		`\n`, "\n",
		`\r`, "\n",
	)
	tabRuns = regexp.MustCompile(`\t+`)
)

func normalizeLines(s string) []string {
	s = tabRuns.ReplaceAllString(lineBreaks.Replace(s), " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \f\v")
	}
	return lines
}

// SanitizeMessage normalizes line breaks (real and escaped), collapses
// tabs, and drops blank lines.
func SanitizeMessage(s string) string {
	lines := normalizeLines(s)
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// SanitizeValue applies line normalization to every string inside v.
// Blank lines are kept.
func SanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(strings.Join(normalizeLines(t), "\n"))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = SanitizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = SanitizeValue(e)
		}
		return out
	}
	return v
}
