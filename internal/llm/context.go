package llm

import "context"

type purposeKey struct{}

// Purpose labels. Every request event records one, and providers receive
// it as part of the request tag.
const (
	PurposeTask    = "task"
	PurposeRoadmap = "roadmap"

	purposeUnknown = "unknown"
)

// Names of the two structured outputs learnpath asks for.
const (
	SchemaTask    = "learning-task"
	SchemaRoadmap = "learning-roadmap"
)

// WithPurpose marks ctx as generating a task or a roadmap.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return purposeUnknown
}

// requestTag is the opaque label sent to providers with each call, e.g.
// "learnpath:task:learning-task". It never carries learner data.
func requestTag(ctx context.Context, req Request) string {
	tag := "learnpath:" + PurposeFrom(ctx)
	if name := req.schemaName(); name != "" {
		tag += ":" + name
	}
	return tag
}
