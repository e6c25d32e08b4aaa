package taskgen

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// roadmapExcerptLines bounds how much of the roadmap a template task quotes.
	roadmapExcerptLines = 6
	// maxPreviousChars bounds the quoted previous task.
	maxPreviousChars = 600

	previousMarker = "\nPrevious Task:\n"
)

// TemplateGenerator builds deterministic task text without any network call.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, in Input) (string, error) {
	var b strings.Builder

	name := in.LearnerName
	if name == "" {
		name = "you"
	}
	level := in.Level
	if level == "" {
		level = "Beginner"
	}

	if in.Number <= 1 || in.Previous == "" {
		fmt.Fprintf(&b, "Task %d: initial task for %s at %s level.\n", in.Number, name, level)
	} else {
		fmt.Fprintf(&b, "Task %d: follow-up task for %s at %s level, building on previous work.\n", in.Number, name, level)
	}

	if excerpt := excerpt(in.Roadmap, roadmapExcerptLines); len(excerpt) > 0 {
		b.WriteString("Roadmap focus (excerpt):\n")
		for _, line := range excerpt {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if in.Number > 1 && in.Previous != "" {
		b.WriteString("\nPrevious Task:\n")
		b.WriteString(previousBody(in.Previous))
		b.WriteString("\n\n")
	}

	b.WriteString(`Learning Objectives:
- Practice core concepts from your roadmap
- Produce a small, tangible deliverable
Instructions:
- Pick one weak area from your roadmap and build a simple example
- Document what you learned in a short README
Why this matters:
- Consolidates fundamentals and prepares you for the next task
Estimated time: 2-4 hours`)

	return b.String(), nil
}

// previousBody returns the previous task's own text without the task it
// quoted in turn, so template descriptions never nest more than one level.
func previousBody(prev string) string {
	if i := strings.Index(prev, previousMarker); i >= 0 {
		prev = prev[:i]
	}
	prev = strings.TrimSpace(prev)
	if len(prev) <= maxPreviousChars {
		return prev
	}
	cut := maxPreviousChars
	for cut > 0 && !utf8.RuneStart(prev[cut]) {
		cut--
	}
	return strings.TrimRightFunc(prev[:cut], unicode.IsSpace) + "..."
}

func excerpt(lines []string, n int) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
		if len(out) == n {
			break
		}
	}
	return out
}
