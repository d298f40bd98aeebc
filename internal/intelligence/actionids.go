package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/replaydeck/replaydeck/internal/analysis"
	"github.com/replaydeck/replaydeck/internal/logger"
	"go.uber.org/zap"
)

const actionIDSystemPrompt = "You are an expert at analyzing user interactions and generating meaningful action descriptions. " +
	"You prioritize reusing existing action IDs when they match the user's intent."

var actionIDSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"action_ids": map[string]interface{}{
			"type":        "array",
			"description": "List of action_id strings.",
			"items": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
		},
	},
	"required":             []string{"action_ids"},
	"additionalProperties": false,
}

type actionIDResponse struct {
	ActionIDs []string `json:"action_ids"`
}

// GenerateActionIDs asks the model for one semantic ID per action, in order.
// Actions go out in batches of batchSize; every batch sees the IDs known so
// far (the project's existing IDs plus anything generated earlier in the
// call) so matching intents converge on the same ID. A malformed batch
// response degrades to positional fallback IDs; a transport error aborts.
func GenerateActionIDs(ctx context.Context, completer Completer, actions []analysis.Action, existing []string, batchSize int) ([]string, error) {
	if len(actions) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	log := logger.FromContext(ctx)

	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	actionIDs := make([]string, 0, len(actions))
	for start := 0; start < len(actions); start += batchSize {
		end := start + batchSize
		if end > len(actions) {
			end = len(actions)
		}
		batch := actions[start:end]

		prompt, err := buildActionIDPrompt(batch, known)
		if err != nil {
			return nil, err
		}

		raw, err := completer.Complete(ctx, CompletionRequest{
			System:      actionIDSystemPrompt,
			Prompt:      prompt,
			SchemaName:  "action_id_array",
			Schema:      actionIDSchema,
			Temperature: 0.3,
			MaxTokens:   1000,
		})
		if err != nil {
			return nil, fmt.Errorf("action id batch %d-%d: %w", start+1, end, err)
		}

		var parsed actionIDResponse
		if uerr := json.Unmarshal([]byte(raw), &parsed); uerr != nil || len(parsed.ActionIDs) != len(batch) {
			log.Warn("LLM returned malformed action IDs, using fallbacks",
				zap.Int("batch_start", start+1),
				zap.Int("batch_end", end),
				zap.Int("expected", len(batch)),
				zap.Int("got", len(parsed.ActionIDs)),
			)
			for i := range batch {
				actionIDs = append(actionIDs, fmt.Sprintf("clicked_element_%d", i))
			}
			continue
		}

		for _, id := range parsed.ActionIDs {
			known[id] = true
		}
		actionIDs = append(actionIDs, parsed.ActionIDs...)
	}

	log.Info("Generated action IDs",
		zap.Int("count", len(actionIDs)),
		zap.Int("actions", len(actions)),
	)
	return actionIDs, nil
}

func buildActionIDPrompt(batch []analysis.Action, known map[string]bool) (string, error) {
	eventsJSON, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("failed to encode actions for prompt: %w", err)
	}

	var existingSection string
	if len(known) > 0 {
		ids := make([]string, 0, len(known))
		for id := range known {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		existingSection = fmt.Sprintf(`

EXISTING ACTION IDs (PREFER THESE WHEN THEY MATCH THE INTENT):
%s

IMPORTANT: If any of the existing action IDs above match the user's intent for an event, use that existing ID instead of creating a new one. Only create new action IDs when there's no suitable existing match.`,
			strings.Join(ids, ", "))
	}

	return fmt.Sprintf(`Analyze these user interaction events and generate intelligent, semantic action IDs.

Events: %s%s

For each event, generate an action_id: A short, descriptive identifier that captures the user's intent.

Rules:
- Use semantic, logical descriptions instead of technical details
- Focus on what the user is trying to accomplish
- Be specific but concise
- Use lowercase with underscores for action_id
- Examples: "clicked_view_photos", "clicked_submit_form", "clicked_navigation_menu"
- PREFER EXISTING ACTION IDs when they match the user's intent
- Only create new action IDs when there's no suitable existing match
- For page load, try to determine the page type by the url or title
- For input events, use the attributes to determine the input type

Return a JSON array of action_id strings only, in the same order as the events.`,
		eventsJSON, existingSection), nil
}
