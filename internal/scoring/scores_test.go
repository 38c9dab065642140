package scoring

import (
	"testing"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

func allBreakdowns(s models.ProjectScores) []models.ScoreBreakdown {
	return []models.ScoreBreakdown{s.GrantFit, s.CapitalReadiness, s.EcosystemAlignment, s.EngagementEase}
}

func TestCalculateScoresNilTelemetry(t *testing.T) {
	scores := CalculateScores(nil, nil, DefaultConfig(), testNow)

	if scores.Overall != 0 {
		t.Fatalf("expected overall 0, got %d", scores.Overall)
	}
	for _, bd := range allBreakdowns(scores) {
		if bd.Score != 0 {
			t.Errorf("%s: expected 0, got %d", bd.Type, bd.Score)
		}
		if bd.Factors == nil {
			t.Errorf("%s: factors should be empty, not nil", bd.Type)
		}
		if len(bd.Factors) != 0 {
			t.Errorf("%s: expected empty factor list, got %d", bd.Type, len(bd.Factors))
		}
	}
}

func TestCalculateScoresBounds(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		tele *models.RepoTelemetry
	}{
		{"empty telemetry", &models.RepoTelemetry{}},
		{"example repo", sampleTelemetry()},
		{"extreme values", &models.RepoTelemetry{
			Stars:     1000000,
			Forks:     100000,
			Issues:    models.IssueCounts{Open: 0, Closed: 5000},
			Languages: map[string]float64{"Solidity": 50, "Rust": 30, "TypeScript": 20},
			Activity:  models.ActivitySnapshot{LastCommit: &testNow, Commits30d: 10000},
			Quality: models.QualityReport{Score: 100, Notes: []string{
				"tests", "ci", "docs", "audit", "benchmarks", "fuzzing", "coverage",
			}},
			GrantFit: models.GrantFitReport{Signals: []string{"a", "b", "c", "d", "e", "f", "g"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ExtractSignals(tt.tele, cfg, testNow)
			scores := CalculateScores(signals, tt.tele, cfg, testNow)

			if scores.Overall < 0 || scores.Overall > 100 {
				t.Errorf("overall %d out of [0,100]", scores.Overall)
			}
			for _, bd := range allBreakdowns(scores) {
				if bd.Score < 0 || bd.Score > 100 {
					t.Errorf("%s score %d out of [0,100]", bd.Type, bd.Score)
				}
			}
		})
	}
}

func TestCalculateScoresFactorSums(t *testing.T) {
	tele := sampleTelemetry()
	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	scores := CalculateScores(signals, tele, DefaultConfig(), testNow)

	for _, bd := range allBreakdowns(scores) {
		sum := 0
		for _, f := range bd.Factors {
			sum += f.Contribution
			if f.Explanation == "" {
				t.Errorf("%s factor %q has no explanation", bd.Type, f.Name)
			}
		}
		if sum != bd.Score {
			t.Errorf("%s: factor sum %d != score %d", bd.Type, sum, bd.Score)
		}
	}
}

func TestCalculateScoresExampleScenario(t *testing.T) {
	tele := sampleTelemetry()
	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	scores := CalculateScores(signals, tele, DefaultConfig(), testNow)

	// Recomputable by hand from the raw telemetry: 3 quality notes -> 21,
	// quality 85 -> 26, 25 commits -> 13, 90% resolution -> 14.
	if scores.CapitalReadiness.Score != 74 {
		t.Fatalf("capital readiness = %d, want 74", scores.CapitalReadiness.Score)
	}
	if scores.EcosystemAlignment.Score != 55 {
		t.Fatalf("ecosystem alignment = %d, want 55 (Solidity+TS stack, 2 signals)", scores.EcosystemAlignment.Score)
	}
	if scores.Overall < 60 || scores.Overall > 85 {
		t.Fatalf("overall = %d, want a healthy mid-range score", scores.Overall)
	}
}

func TestCalculateScoresAlternateWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overall = OverallWeights{GrantFit: 1} // everything on grant fit

	tele := sampleTelemetry()
	signals := ExtractSignals(tele, cfg, testNow)
	scores := CalculateScores(signals, tele, cfg, testNow)

	if scores.Overall != scores.GrantFit.Score {
		t.Fatalf("with unit grant-fit weight, overall %d should equal grant fit %d",
			scores.Overall, scores.GrantFit.Score)
	}
}

func TestIssueResolutionRatioFloorsDenominator(t *testing.T) {
	tele := &models.RepoTelemetry{}
	if got := issueResolutionRatio(tele.WithDefaults()); got != 0 {
		t.Fatalf("empty tracker ratio = %v, want 0", got)
	}
}

func TestEngagementEaseDecaysWithAge(t *testing.T) {
	fresh := sampleTelemetry()
	stale := sampleTelemetry()
	old := testNow.Add(-100 * 24 * time.Hour)
	stale.Activity.LastCommit = &old

	cfg := DefaultConfig()
	freshScore := CalculateScores(ExtractSignals(fresh, cfg, testNow), fresh, cfg, testNow)
	staleScore := CalculateScores(ExtractSignals(stale, cfg, testNow), stale, cfg, testNow)

	if staleScore.EngagementEase.Score >= freshScore.EngagementEase.Score {
		t.Fatalf("stale repo engagement %d should trail fresh repo %d",
			staleScore.EngagementEase.Score, freshScore.EngagementEase.Score)
	}
}
