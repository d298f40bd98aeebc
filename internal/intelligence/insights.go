package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/replaydeck/replaydeck/internal/store"
)

const insightSystemPrompt = "You are a product analyst reviewing recorded user sessions of a web application. " +
	"You identify behavioral patterns, friction points, and opportunities, grounded strictly in the observed activity."

var insightSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"insights": map[string]interface{}{
			"type":        "array",
			"description": "List of insights derived from the session activity.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":    map[string]interface{}{"type": "string", "minLength": 1},
					"summary":  map[string]interface{}{"type": "string", "minLength": 1},
					"category": map[string]interface{}{"type": "string"},
				},
				"required":             []string{"title", "summary", "category"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"insights"},
	"additionalProperties": false,
}

type insightResponse struct {
	Insights []store.Insight `json:"insights"`
}

// GenerateInsights derives project-level insights from the rendered activity
// of the sampled sessions. The activity map is keyed by session ID, each
// entry an ordered list of human-readable action strings.
func GenerateInsights(ctx context.Context, completer Completer, activity map[string][]string) ([]store.Insight, error) {
	if len(activity) == 0 {
		return nil, nil
	}

	sessionIDs := make([]string, 0, len(activity))
	for id := range activity {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Strings(sessionIDs)

	var sb strings.Builder
	for _, id := range sessionIDs {
		fmt.Fprintf(&sb, "Session %s:\n", id)
		for i, line := range activity[id] {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
		}
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Review the recorded user activity below and produce insights about how users behave in this application.

%s
Focus on recurring behavior across sessions, places where users appear to struggle or abandon a flow, and notable feature usage. Each insight needs a short title, a summary grounded in the activity, and a category (one of: engagement, friction, navigation, conversion, other).`,
		sb.String())

	raw, err := completer.Complete(ctx, CompletionRequest{
		System:      insightSystemPrompt,
		Prompt:      prompt,
		SchemaName:  "project_insights",
		Schema:      insightSchema,
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("insight generation: %w", err)
	}

	var parsed insightResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse insight response: %w", err)
	}
	return parsed.Insights, nil
}
