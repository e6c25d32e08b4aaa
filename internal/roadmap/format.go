package roadmap

import "strings"

// Format splits roadmap text into display lines. Section headers and
// numbered items are bolded, bullets become "•" and other lines are
// indented. Blank lines are kept as empty strings.
func Format(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		switch {
		case s == "":
			lines = append(lines, "")
		case isHeader(s):
			lines = append(lines, "", "**"+strings.TrimSpace(strings.TrimLeft(s, "#"))+"**", "")
		case isNumbered(s):
			lines = append(lines, "**"+s+"**")
		case strings.HasPrefix(s, "-") || strings.HasPrefix(s, "*"):
			lines = append(lines, "  • "+strings.TrimSpace(s[1:]))
		default:
			lines = append(lines, "  "+s)
		}
	}
	return lines
}

func isHeader(s string) bool {
	l := strings.ToLower(strings.TrimSpace(strings.TrimLeft(s, "#")))
	return strings.HasPrefix(l, "weak areas") || strings.HasPrefix(l, "strong areas")
}

// isNumbered matches "1. x" through "99. x".
func isNumbered(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	head := s
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.Contains(head, ".")
}

// Excerpt returns the first n non-blank lines with formatting marks
// removed, for use as generation context.
func Excerpt(lines []string, n int) []string {
	var out []string
	for _, l := range lines {
		s := strings.TrimSpace(strings.ReplaceAll(l, "**", ""))
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}
