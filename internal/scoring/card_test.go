package scoring

import (
	"strings"
	"testing"

	"github.com/alexmejias/repo-radar/internal/models"
	"github.com/google/uuid"
)

func TestGenerateOpportunityCardNilTelemetry(t *testing.T) {
	card := GenerateOpportunityCard(nil, DefaultConfig(), testNow)

	if card.ID == uuid.Nil {
		t.Fatal("card should always carry an id")
	}
	if card.Scores.Overall != 0 {
		t.Fatalf("expected overall 0, got %d", card.Scores.Overall)
	}
	if len(card.RiskFlags) != 0 || len(card.NextActions) != 0 || len(card.GrantRecommendations) != 0 {
		t.Fatalf("expected fully empty card, got %+v", card)
	}
	if card.RiskFlags == nil || card.NextActions == nil || card.GrantRecommendations == nil || card.StrongestSignals == nil {
		t.Fatal("collections must be empty, never nil")
	}
	if card.Summary == "" {
		t.Fatal("even an empty card carries a summary")
	}
}

func TestGenerateOpportunityCardExampleScenario(t *testing.T) {
	card := GenerateOpportunityCard(sampleTelemetry(), DefaultConfig(), testNow)

	if card.ProjectName != "acme/vault" {
		t.Fatalf("project name = %q", card.ProjectName)
	}
	for _, f := range card.RiskFlags {
		if f.Type == models.RiskCritical {
			t.Fatalf("healthy repo produced critical flag: %+v", f)
		}
	}
	if len(card.GrantRecommendations) == 0 {
		t.Fatal("expected recommendations from supplied matches")
	}
	if card.GrantRecommendations[0].ProgramName != "Ethereum Ecosystem Grants" {
		t.Fatalf("unexpected recommendation: %+v", card.GrantRecommendations[0])
	}
}

func TestGenerateOpportunityCardStrongestSignals(t *testing.T) {
	card := GenerateOpportunityCard(sampleTelemetry(), DefaultConfig(), testNow)

	if len(card.StrongestSignals) != 4 {
		t.Fatalf("expected 4 strongest signals, got %d", len(card.StrongestSignals))
	}
	prev := 2.0
	for _, s := range card.StrongestSignals {
		if s.Value > prev {
			t.Fatalf("strongest signals not sorted: %v after %v", s.Value, prev)
		}
		prev = s.Value

		switch {
		case s.Value > 0.7 && s.Strength != models.StrengthStrong:
			t.Errorf("%s at %v should be strong, got %s", s.Label, s.Value, s.Strength)
		case s.Value <= 0.7 && s.Value > 0.4 && s.Strength != models.StrengthModerate:
			t.Errorf("%s at %v should be moderate, got %s", s.Label, s.Value, s.Strength)
		case s.Value <= 0.4 && s.Strength != models.StrengthWeak:
			t.Errorf("%s at %v should be weak, got %s", s.Label, s.Value, s.Strength)
		}
	}
}

func TestBuildSummaryAdjectives(t *testing.T) {
	tests := []struct {
		name       string
		commits30d int
		capital    int
		activity   string
		readiness  string
	}{
		{"hot and funded", 25, 80, "highly active", "capital-ready"},
		{"steady", 10, 55, "moderately active", "developing"},
		{"quiet", 2, 20, "low activity", "early-stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tele := &models.RepoTelemetry{
				Repo:     "acme/vault",
				Activity: models.ActivitySnapshot{Commits30d: tt.commits30d},
			}
			scores := models.ProjectScores{
				CapitalReadiness: models.ScoreBreakdown{Score: tt.capital},
			}
			summary := buildSummary(tele.WithDefaults(), scores)
			if !strings.Contains(summary, tt.activity) {
				t.Errorf("summary %q missing %q", summary, tt.activity)
			}
			if !strings.Contains(summary, tt.readiness) {
				t.Errorf("summary %q missing %q", summary, tt.readiness)
			}
		})
	}
}

func TestExportMarkdown(t *testing.T) {
	card := GenerateOpportunityCard(sampleTelemetry(), DefaultConfig(), testNow)
	md := ExportMarkdown(card)

	for _, want := range []string{
		"# acme/vault",
		"## Scores",
		"**Overall**",
		"Ethereum Ecosystem Grants",
		"## Next actions",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown export missing %q:\n%s", want, md)
		}
	}
}
