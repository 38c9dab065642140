package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Summary thresholds, keyed on commits30d and the capital-readiness score.
// The commits-30d definition is used for the activity adjective; see
// DESIGN.md for the variant decision.
const (
	highlyActiveCommits     = 20
	moderatelyActiveCommits = 5
	capitalReadyScore       = 70
	developingScore         = 50
)

// GenerateOpportunityCard runs the full pipeline - signal extraction,
// scoring, risk detection, next-action generation and summary synthesis -
// and assembles one consolidated report. This is the top-level totality
// guarantee: no input shape, including nil telemetry, can make it fail. Nil
// telemetry produces a fully zeroed but structurally valid card.
func GenerateOpportunityCard(t *models.RepoTelemetry, cfg Config, now time.Time) models.OpportunityCard {
	if t == nil {
		return models.OpportunityCard{
			ID:                   uuid.New(),
			Summary:              "No analysis data available for this repository.",
			StrongestSignals:     []models.StrongSignal{},
			RiskFlags:            []models.RiskFlag{},
			Scores:               CalculateScores(nil, nil, cfg, now),
			GrantRecommendations: []models.GrantRecommendation{},
			NextActions:          []models.NextAction{},
			GeneratedAt:          now,
		}
	}
	t = t.WithDefaults()

	signals := ExtractSignals(t, cfg, now)
	scores := CalculateScores(signals, t, cfg, now)
	flags := DetectRiskFlags(signals, t, now)
	actions := GenerateNextActions(signals, t, flags)

	return models.OpportunityCard{
		ID:                   uuid.New(),
		ProjectName:          t.Repo,
		ProjectURL:           t.URL,
		Summary:              buildSummary(t, scores),
		StrongestSignals:     strongestSignals(signals, 4),
		RiskFlags:            flags,
		Scores:               scores,
		GrantRecommendations: buildRecommendations(t.GrantFit.Matches),
		NextActions:          actions,
		GeneratedAt:          now,
	}
}

// buildSummary fills the fixed sentence template from the activity and
// readiness adjectives.
func buildSummary(t *models.RepoTelemetry, scores models.ProjectScores) string {
	activity := "low activity"
	switch {
	case t.Activity.Commits30d >= highlyActiveCommits:
		activity = "highly active"
	case t.Activity.Commits30d >= moderatelyActiveCommits:
		activity = "moderately active"
	}

	readiness := "early-stage"
	switch {
	case scores.CapitalReadiness.Score >= capitalReadyScore:
		readiness = "capital-ready"
	case scores.CapitalReadiness.Score >= developingScore:
		readiness = "developing"
	}

	name := t.Repo
	if name == "" {
		name = "This repository"
	}

	return fmt.Sprintf("%s is a %s, %s project with an overall opportunity score of %d/100.",
		name, activity, readiness, scores.Overall)
}

// strongestSignals picks the top n signals by normalized value. The sort is
// stable so equal values keep extraction order.
func strongestSignals(signals []models.Signal, n int) []models.StrongSignal {
	sorted := make([]models.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Normalized > sorted[j].Normalized
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]models.StrongSignal, 0, len(sorted))
	for _, s := range sorted {
		strength := models.StrengthWeak
		switch {
		case s.Normalized > 0.7:
			strength = models.StrengthStrong
		case s.Normalized > 0.4:
			strength = models.StrengthModerate
		}
		out = append(out, models.StrongSignal{
			Label:    s.Label,
			Value:    s.Normalized,
			Strength: strength,
		})
	}
	return out
}

// buildRecommendations converts upstream grant matches 1:1 into
// recommendations, clamping confidence into [0,100].
func buildRecommendations(matches []models.GrantMatch) []models.GrantRecommendation {
	out := make([]models.GrantRecommendation, 0, len(matches))
	for _, m := range matches {
		confidence := int(math.Round(m.Confidence))
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 100 {
			confidence = 100
		}
		why := m.Reasons
		if why == nil {
			why = []string{}
		}
		out = append(out, models.GrantRecommendation{
			GrantID:     m.GrantID,
			ProgramName: m.Program,
			Ecosystem:   m.Ecosystem,
			Confidence:  confidence,
			WhyFits:     why,
			ApplyURL:    m.ApplyURL,
		})
	}
	return out
}
