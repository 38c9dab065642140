package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

// CalculateScores aggregates signals into the four sub-scores and blends them
// into the overall score. Each sub-score is the exact sum of its factor
// contributions, so every number on a breakdown is auditable against the raw
// telemetry. Nil telemetry yields all-zero breakdowns with empty factor
// lists; the function never fails.
func CalculateScores(signals []models.Signal, t *models.RepoTelemetry, cfg Config, now time.Time) models.ProjectScores {
	if t == nil {
		return models.ProjectScores{
			GrantFit:           emptyBreakdown(models.ScoreGrantFit, "Grant Fit"),
			CapitalReadiness:   emptyBreakdown(models.ScoreCapitalReadiness, "Capital Readiness"),
			EcosystemAlignment: emptyBreakdown(models.ScoreEcosystemAlignment, "Ecosystem Alignment"),
			EngagementEase:     emptyBreakdown(models.ScoreEngagementEase, "Engagement Ease"),
			Overall:            0,
			CalculatedAt:       now,
		}
	}
	t = t.WithDefaults()

	grantFit := grantFitBreakdown(signals)
	capital := capitalReadinessBreakdown(t)
	ecosystem := ecosystemAlignmentBreakdown(t)
	engagement := engagementEaseBreakdown(t, now)

	overall := int(math.Round(
		cfg.Overall.GrantFit*float64(grantFit.Score) +
			cfg.Overall.CapitalReadiness*float64(capital.Score) +
			cfg.Overall.EcosystemAlignment*float64(ecosystem.Score) +
			cfg.Overall.EngagementEase*float64(engagement.Score)))

	return models.ProjectScores{
		GrantFit:           grantFit,
		CapitalReadiness:   capital,
		EcosystemAlignment: ecosystem,
		EngagementEase:     engagement,
		Overall:            clampScore(overall),
		CalculatedAt:       now,
	}
}

func emptyBreakdown(t models.ScoreType, label string) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Type:        t,
		Score:       0,
		Label:       label,
		Description: "No telemetry available",
		Factors:     []models.ScoreFactor{},
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// factor rounds a contribution and pairs it with its explanation.
func factor(name string, contribution float64, explanation string) models.ScoreFactor {
	return models.ScoreFactor{
		Name:         name,
		Contribution: int(math.Round(contribution)),
		Explanation:  explanation,
	}
}

func finishBreakdown(t models.ScoreType, label, description string, factors ...models.ScoreFactor) models.ScoreBreakdown {
	score := 0
	for _, f := range factors {
		score += f.Contribution
	}
	return models.ScoreBreakdown{
		Type:        t,
		Score:       clampScore(score),
		Label:       label,
		Description: description,
		Factors:     factors,
	}
}

// Grant Fit: 40% code quality, 30% activity-category mean, 30%
// community-category mean.
func grantFitBreakdown(signals []models.Signal) models.ScoreBreakdown {
	quality := 0.0
	if s := signalByKey(signals, SignalCodeQuality); s != nil {
		quality = s.Normalized
	}
	activity := categoryMean(signals, models.CategoryActivity)
	community := categoryMean(signals, models.CategoryCommunity)

	return finishBreakdown(models.ScoreGrantFit, "Grant Fit",
		"How attractive this repository looks to grant reviewers",
		factor("Code quality", 40*quality,
			fmt.Sprintf("quality signal at %.0f%% of maximum", quality*100)),
		factor("Development activity", 30*activity,
			fmt.Sprintf("activity signals average %.0f%%", activity*100)),
		factor("Community traction", 30*community,
			fmt.Sprintf("community signals average %.0f%%", community*100)),
	)
}

// Capital Readiness: quality-note count (7 pts each, cap 35), 30% of raw
// quality score, commit momentum (0.5 pts per commit, cap 20), 15% of the
// issue-resolution ratio.
func capitalReadinessBreakdown(t *models.RepoTelemetry) models.ScoreBreakdown {
	notes := len(t.Quality.Notes)
	fundamentals := math.Min(35, 7*float64(notes))

	quality := 30 * t.Quality.Score / 100
	momentum := math.Min(20, 0.5*float64(t.Activity.Commits30d))

	ratio := issueResolutionRatio(t)
	hygiene := 15 * ratio

	return finishBreakdown(models.ScoreCapitalReadiness, "Capital Readiness",
		"How prepared the project is to absorb and report on funding",
		factor("Quality fundamentals", fundamentals,
			fmt.Sprintf("%d quality notes on record", notes)),
		factor("Code quality", quality,
			fmt.Sprintf("quality score %.0f/100", t.Quality.Score)),
		factor("Commit momentum", momentum,
			fmt.Sprintf("%d commits in the last 30 days", t.Activity.Commits30d)),
		factor("Issue hygiene", hygiene,
			fmt.Sprintf("%.0f%% of issues resolved", ratio*100)),
	)
}

// Ecosystem Alignment: language stack (Solidity 25, Rust 15, TS/JS 10, cap
// 50) plus 10 points per upstream grant-fit signal label (cap 50).
func ecosystemAlignmentBreakdown(t *models.RepoTelemetry) models.ScoreBreakdown {
	stack := 0.0
	var parts []string
	if languagePresent(t.Languages, "solidity") {
		stack += 25
		parts = append(parts, "Solidity")
	}
	if languagePresent(t.Languages, "rust") {
		stack += 15
		parts = append(parts, "Rust")
	}
	if languagePresent(t.Languages, "typescript") || languagePresent(t.Languages, "javascript") {
		stack += 10
		parts = append(parts, "TypeScript/JavaScript")
	}
	stack = math.Min(50, stack)
	stackExplain := "no ecosystem-relevant languages detected"
	if len(parts) > 0 {
		stackExplain = "detected: " + strings.Join(parts, ", ")
	}

	labels := len(t.GrantFit.Signals)
	fit := math.Min(50, 10*float64(labels))

	return finishBreakdown(models.ScoreEcosystemAlignment, "Ecosystem Alignment",
		"How well the stack lines up with funded ecosystems",
		factor("Language stack", stack, stackExplain),
		factor("Grant-fit signals", fit,
			fmt.Sprintf("%d grant-fit signals reported upstream", labels)),
	)
}

// Engagement Ease: recent activity (40 minus half a point per stale day,
// floor 0), 30% of the issue-resolution ratio, quality-note count (6 pts
// each, cap 30).
func engagementEaseBreakdown(t *models.RepoTelemetry, now time.Time) models.ScoreBreakdown {
	days := t.DaysSinceLastCommit(now)
	recent := math.Max(0, 40-0.5*days)
	recentExplain := "no commit recorded"
	if t.Activity.LastCommit != nil && !t.Activity.LastCommit.IsZero() {
		recentExplain = fmt.Sprintf("last commit %d days ago", int(days))
	}

	ratio := issueResolutionRatio(t)
	hygiene := 30 * ratio

	notes := len(t.Quality.Notes)
	fundamentals := math.Min(30, 6*float64(notes))

	return finishBreakdown(models.ScoreEngagementEase, "Engagement Ease",
		"How easy it is for a funder to engage the maintainers today",
		factor("Recent activity", recent, recentExplain),
		factor("Issue hygiene", hygiene,
			fmt.Sprintf("%.0f%% of issues resolved", ratio*100)),
		factor("Quality fundamentals", fundamentals,
			fmt.Sprintf("%d quality notes on record", notes)),
	)
}

// issueResolutionRatio floors the denominator at 1 so empty trackers score 0
// instead of dividing by zero.
func issueResolutionRatio(t *models.RepoTelemetry) float64 {
	total := t.Issues.Open + t.Issues.Closed
	if total < 1 {
		total = 1
	}
	return float64(t.Issues.Closed) / float64(total)
}

func languagePresent(languages map[string]float64, name string) bool {
	for lang, share := range languages {
		if share > 0 && strings.EqualFold(lang, name) {
			return true
		}
	}
	return false
}
