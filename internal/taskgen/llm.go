package taskgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/learnpath/internal/llm"
)

// TaskSchema defines the JSON schema for learning task generation.
var TaskSchema = &llm.Schema{
	Name:        llm.SchemaTask,
	Description: "A practical, hands-on learning task achievable in 3-4 days",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short task title (3-10 words)",
			},
			"objectives": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 specific learning objectives",
			},
			"instructions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Ordered, concrete steps",
			},
			"resources": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Suggested resources or tools, may be empty",
			},
			"why": map[string]any{
				"type":        "string",
				"description": "1-2 sentences on why this task matters for the learner",
			},
		},
		"required":             []any{"title", "objectives", "instructions", "resources", "why"},
		"additionalProperties": false,
	},
}

const taskSystemPrompt = `You are an expert learning coach that creates personalized, practical learning tasks.`

// Config holds task generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the defaults for task generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   700,
		Temperature: 0.7,
	}
}

// LLMGenerator generates tasks with an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	cfg      Config
}

// NewLLMGenerator returns a generator backed by provider. A nil provider
// yields a generator that always returns ErrUnavailable.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, cfg: cfg}
}

type taskOutput struct {
	Title        string   `json:"title"`
	Objectives   []string `json:"objectives"`
	Instructions []string `json:"instructions"`
	Resources    []string `json:"resources"`
	Why          string   `json:"why"`
}

func (g *LLMGenerator) Generate(ctx context.Context, in Input) (string, error) {
	if g.provider == nil {
		return "", ErrUnavailable
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeTask)

	req := llm.Prompt(taskSystemPrompt, buildTaskUserMessage(in), TaskSchema, g.cfg.MaxTokens)
	req.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var out taskOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("%w: parse task response: %w", ErrUnavailable, err)
	}
	return renderTask(in.Number, out), nil
}

func buildTaskUserMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a learning task for a user named %s who is at %s level.\n\n", in.LearnerName, in.Level)
	b.WriteString("User's Learning Roadmap:\n")
	for _, line := range in.Roadmap {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTask Number: %d\n", in.Number)

	if in.Previous != "" {
		fmt.Fprintf(&b, "\nPrevious Task:\n%s\n\n", in.Previous)
		b.WriteString("Generate a follow-up task that builds upon the previous task and continues the learning journey.\n")
	} else {
		b.WriteString("\nGenerate an initial task that helps the user start their learning journey based on their roadmap.\n")
	}

	b.WriteString(`
Requirements:
- Task should be practical and hands-on
- Include specific learning objectives
- Provide clear instructions
- Suggest resources or tools if needed
- Make it achievable within 3-4 days
- Include a brief explanation of why this task is important for their learning`)

	return b.String()
}

func renderTask(number int, out taskOutput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task %d: %s\n", number, strings.TrimSpace(out.Title))
	writeList(&b, "Learning Objectives:", out.Objectives)
	writeList(&b, "Instructions:", out.Instructions)
	writeList(&b, "Resources:", out.Resources)
	if why := strings.TrimSpace(out.Why); why != "" {
		b.WriteString("Why this matters:\n")
		b.WriteString(why)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(it))
	}
}
