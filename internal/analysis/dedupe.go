package analysis

// Clean collapses noisy action runs before LLM analysis: consecutive input
// actions reduce to the last of the run (intermediate keystrokes carry no
// intent), and likewise for consecutive scrolls.
func Clean(actions []Action) []Action {
	return dedupeRuns(dedupeRuns(actions, KindInput), KindScrolled)
}

// dedupeRuns keeps only the final action of every consecutive run of the
// given kind.
func dedupeRuns(actions []Action, kind string) []Action {
	if len(actions) == 0 {
		return nil
	}
	cleaned := make([]Action, 0, len(actions))
	for i := 0; i < len(actions); {
		if actions[i].Kind != kind {
			cleaned = append(cleaned, actions[i])
			i++
			continue
		}
		end := i
		for end < len(actions) && actions[end].Kind == kind {
			end++
		}
		cleaned = append(cleaned, actions[end-1])
		i = end
	}
	return cleaned
}
