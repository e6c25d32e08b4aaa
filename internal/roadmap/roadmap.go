// Package roadmap turns a quiz result into an improvement plan.
package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/quiz"
)

// Schema defines the JSON schema for roadmap generation.
var Schema = &llm.Schema{
	Name:        llm.SchemaRoadmap,
	Description: "A focused learning roadmap grouped into weak and strong areas",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weak_areas":   sectionSchema("Weak topics first, each with how to study and improve it"),
			"strong_areas": sectionSchema("Strong topics, each with a way to practice or go deeper"),
		},
		"required":             []any{"weak_areas", "strong_areas"},
		"additionalProperties": false,
	},
}

func sectionSchema(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic": map[string]any{"type": "string"},
				"steps": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Concise, actionable steps or resources",
				},
			},
			"required":             []any{"topic", "steps"},
			"additionalProperties": false,
		},
	}
}

const systemPrompt = `You are an expert tutor that builds personalized learning plans.`

// fallbackText is used when no provider is configured or it fails.
const fallbackText = `Weak Areas
1. Review incorrect topics
- Watch 1-2 short tutorials per topic
- Complete a small exercise for each
Strong Areas
1. Reinforce strengths
- Try a slightly harder problem
- Teach the concept to someone or write notes`

// Config holds roadmap generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the defaults for roadmap generation.
func DefaultConfig() Config {
	return Config{MaxTokens: 900, Temperature: 0.7}
}

// Builder generates roadmaps.
type Builder struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger

	// OnFallback, when set, is called whenever the deterministic roadmap
	// replaces a failed or missing provider.
	OnFallback func(err error)
}

// NewBuilder returns a Builder. provider may be nil.
func NewBuilder(provider llm.Provider, cfg Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{provider: provider, cfg: cfg, logger: logger}
}

type section struct {
	Topic string   `json:"topic"`
	Steps []string `json:"steps"`
}

type roadmapOutput struct {
	WeakAreas   []section `json:"weak_areas"`
	StrongAreas []section `json:"strong_areas"`
}

// Build returns the formatted roadmap lines for a learner. It only fails
// when ctx is done.
func (b *Builder) Build(ctx context.Context, name string, result quiz.Result) ([]string, error) {
	text, err := b.generate(ctx, name, result)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		b.logger.WarnContext(ctx, "roadmap generation failed, using fallback", "error", err)
		if b.OnFallback != nil {
			b.OnFallback(err)
		}
		text = fallbackText
	}
	return Format(text), nil
}

func (b *Builder) generate(ctx context.Context, name string, result quiz.Result) (string, error) {
	if b.provider == nil {
		return "", llm.ErrDisabled
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeRoadmap)

	req := llm.Prompt(systemPrompt, buildUserMessage(name, result), Schema, b.cfg.MaxTokens)
	req.Temperature = b.cfg.Temperature

	resp, err := b.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("roadmap generation: %w", err)
	}

	var out roadmapOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse roadmap response: %w", err)
	}
	return render(out), nil
}

func buildUserMessage(name string, r quiz.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A user named %s scored %d/%d in an AI quiz and is categorized as %s level.\n\n", name, r.Score, quiz.Len(), r.Level)
	b.WriteString("Incorrect Topics:\n")
	writeTopics(&b, r.Weak)
	b.WriteString("\nCorrect Topics:\n")
	writeTopics(&b, r.Strong)
	b.WriteString(`
Generate a focused learning roadmap:
- Group weak areas first and suggest how to study and improve each.
- Recommend specific resources (topics to search on YouTube, courses, or exercises).
- Then briefly reinforce strong areas with practice or deeper concepts.
- Keep steps concise, actionable and practical.`)

	return b.String()
}

func writeTopics(b *strings.Builder, topics []string) {
	if len(topics) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, t := range topics {
		fmt.Fprintf(b, "- %s\n", t)
	}
}

func render(out roadmapOutput) string {
	var b strings.Builder
	writeSection(&b, "Weak Areas", out.WeakAreas)
	writeSection(&b, "Strong Areas", out.StrongAreas)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, header string, items []section) {
	b.WriteString(header)
	b.WriteString("\n")
	for i, it := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, strings.TrimSpace(it.Topic))
		for _, s := range it.Steps {
			fmt.Fprintf(b, "- %s\n", strings.TrimSpace(s))
		}
	}
}
