package scoring

import (
	"fmt"

	"github.com/alexmejias/repo-radar/internal/models"
)

const maxNextActions = 5

// GenerateNextActions maps detected risks and signal gaps to a bounded,
// prioritized list of remediation suggestions. Rules run in a fixed order
// (the order sets display priority); each rule appends at most one action
// and the result is capped at five entries. Nil telemetry yields an empty
// list; it never fails.
func GenerateNextActions(signals []models.Signal, t *models.RepoTelemetry, flags []models.RiskFlag) []models.NextAction {
	if t == nil {
		return []models.NextAction{}
	}
	t = t.WithDefaults()

	actions := []models.NextAction{}

	if hasFlagInCategory(flags, models.CategoryActivity) {
		actions = append(actions, models.NextAction{
			ID:       "increase-commit-frequency",
			Action:   "Increase commit frequency with small, regular changes",
			Priority: models.PriorityHigh,
			Impact:   "Active repos score higher on every reviewer checklist",
		})
	}

	if s := signalByKey(signals, SignalHasTests); s != nil && s.Normalized == 0 {
		actions = append(actions, models.NextAction{
			ID:       "add-tests",
			Action:   "Add an automated test suite and run it in CI",
			Priority: models.PriorityHigh,
			Impact:   "Test evidence is the first thing technical reviewers look for",
		})
	}

	if t.Stars < 50 {
		actions = append(actions, models.NextAction{
			ID:       "promote-project",
			Action:   "Promote the project in ecosystem forums and developer communities",
			Priority: models.PriorityMedium,
			Impact:   "Visibility above 50 stars signals real-world interest",
		})
	}

	if len(t.Quality.Notes) < 3 {
		actions = append(actions, models.NextAction{
			ID:       "improve-readme",
			Action:   "Expand the README with setup, architecture and usage documentation",
			Priority: models.PriorityMedium,
			Impact:   "Documentation depth drives the quality fundamentals score",
		})
	}

	if len(t.GrantFit.Matches) > 0 {
		top := t.GrantFit.Matches[0]
		actions = append(actions, models.NextAction{
			ID:       "apply-top-match",
			Action:   fmt.Sprintf("Apply to %s - your strongest grant match", top.Program),
			Priority: models.PriorityHigh,
			Impact:   "Matched programs convert far better than cold applications",
		})
	}

	if len(actions) > maxNextActions {
		actions = actions[:maxNextActions]
	}
	return actions
}

func hasFlagInCategory(flags []models.RiskFlag, category models.SignalCategory) bool {
	for _, f := range flags {
		if f.Category == category {
			return true
		}
	}
	return false
}
