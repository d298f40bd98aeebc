package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/replaydeck/replaydeck/internal/analysis"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/store"
	"go.uber.org/zap"
)

// Service runs the analysis pipeline over recorded events and persists the
// derived artifacts.
type Service struct {
	completer Completer
	docs      store.DocStore
	batchSize int
	now       func() time.Time
}

// NewService creates an analysis service. batchSize caps how many parsed
// actions go to the LLM per request.
func NewService(completer Completer, docs store.DocStore, batchSize int) *Service {
	return &Service{
		completer: completer,
		docs:      docs,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// AnalyzeSession parses a batch of newly ingested events, assigns semantic
// action IDs, and persists the resulting action records and ID counts. A
// model failure aborts analysis; it never fails the ingest that triggered it
// (the caller only logs the error).
func (s *Service) AnalyzeSession(ctx context.Context, projectID, sessionID string, events []json.RawMessage) error {
	log := logger.FromContext(ctx).With(
		zap.String("project_id", projectID),
		zap.String("session_id", sessionID),
	)

	actions := analysis.Clean(analysis.Parse(events))
	if len(actions) == 0 {
		log.Info("No analyzable actions in event batch")
		return nil
	}

	var existing []string
	if counts, err := s.docs.ListActionIDs(ctx, projectID); err != nil {
		log.Warn("Failed to load existing action IDs, proceeding without", zap.Error(err))
	} else {
		for _, c := range counts {
			existing = append(existing, c.ID)
		}
	}

	actionIDs, err := GenerateActionIDs(ctx, s.completer, actions, existing, s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to generate action IDs: %w", err)
	}
	if len(actionIDs) != len(actions) {
		return fmt.Errorf("action ID count mismatch: %d IDs for %d actions", len(actionIDs), len(actions))
	}

	counts := make(map[string]int)
	records := make([]store.ActionEvent, 0, len(actions))
	for i, action := range actions {
		counts[actionIDs[i]]++
		records = append(records, store.ActionEvent{
			ActionID:     actionIDs[i],
			ActionString: analysis.ActionString(action),
			SessionID:    sessionID,
			ElementType:  action.ElementType,
			Attributes:   action.Attributes,
			Timestamp:    action.Timestamp,
		})
	}

	// Event records go first: counts must never reflect records that were
	// not persisted, since the windowed recounts read the records back.
	if err := s.docs.SaveActionEvents(ctx, projectID, records); err != nil {
		return fmt.Errorf("failed to store action events: %w", err)
	}
	if err := s.docs.IncrementActionIDs(ctx, projectID, counts); err != nil {
		return fmt.Errorf("failed to store action ID counts: %w", err)
	}

	log.Info("Analyzed session events",
		zap.Int("actions", len(records)),
		zap.Int("distinct_action_ids", len(counts)),
	)
	return nil
}

// GenerateProjectInsights renders the activity of the given sessions,
// generates insights, and persists the report. sessions maps session IDs to
// their raw events.
func (s *Service) GenerateProjectInsights(ctx context.Context, projectID string, sessions map[string][]json.RawMessage) (*store.InsightReport, error) {
	activity := make(map[string][]string, len(sessions))
	for sessionID, events := range sessions {
		actions := analysis.Clean(analysis.Parse(events))
		lines := make([]string, 0, len(actions))
		for _, action := range actions {
			lines = append(lines, analysis.ActionString(action))
		}
		if len(lines) > 0 {
			activity[sessionID] = lines
		}
	}
	if len(activity) == 0 {
		return nil, nil
	}

	insights, err := GenerateInsights(ctx, s.completer, activity)
	if err != nil {
		return nil, err
	}
	if len(insights) == 0 {
		return nil, nil
	}

	sessionIDs := make([]string, 0, len(activity))
	for id := range activity {
		sessionIDs = append(sessionIDs, id)
	}
	report := &store.InsightReport{
		Insights:   insights,
		SessionIDs: sessionIDs,
		CreatedAt:  s.now().Unix(),
	}
	if err := s.docs.SaveInsightReport(ctx, projectID, report); err != nil {
		return nil, fmt.Errorf("failed to persist insight report: %w", err)
	}
	return report, nil
}
