package scoring

import (
	"fmt"
	"strings"

	"github.com/alexmejias/repo-radar/internal/models"
)

// ExportMarkdown renders a card as a flat Markdown block suitable for
// clipboard export: project name, summary, the four sub-scores, top grant
// matches and prioritized next actions.
func ExportMarkdown(card models.OpportunityCard) string {
	var b strings.Builder

	name := card.ProjectName
	if name == "" {
		name = "Unknown repository"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if card.ProjectURL != "" {
		fmt.Fprintf(&b, "%s\n\n", card.ProjectURL)
	}
	fmt.Fprintf(&b, "%s\n\n", card.Summary)

	b.WriteString("## Scores\n\n")
	for _, bd := range []models.ScoreBreakdown{
		card.Scores.GrantFit,
		card.Scores.CapitalReadiness,
		card.Scores.EcosystemAlignment,
		card.Scores.EngagementEase,
	} {
		fmt.Fprintf(&b, "- **%s**: %d/100\n", bd.Label, bd.Score)
	}
	fmt.Fprintf(&b, "- **Overall**: %d/100\n\n", card.Scores.Overall)

	if len(card.GrantRecommendations) > 0 {
		b.WriteString("## Grant matches\n\n")
		for _, rec := range card.GrantRecommendations {
			fmt.Fprintf(&b, "- %s (%s) - %d%% confidence\n", rec.ProgramName, rec.Ecosystem, rec.Confidence)
		}
		b.WriteString("\n")
	}

	if len(card.NextActions) > 0 {
		b.WriteString("## Next actions\n\n")
		for i, action := range card.NextActions {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, action.Priority, action.Action)
		}
		b.WriteString("\n")
	}

	if len(card.RiskFlags) > 0 {
		b.WriteString("## Risks\n\n")
		for _, flag := range card.RiskFlags {
			fmt.Fprintf(&b, "- [%s] %s\n", flag.Type, flag.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
