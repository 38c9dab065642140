package scoring

import (
	"testing"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleTelemetry() *models.RepoTelemetry {
	lastCommit := testNow.Add(-20 * 24 * time.Hour)
	return &models.RepoTelemetry{
		Repo:  "acme/vault",
		URL:   "https://github.com/acme/vault",
		Stars: 1000,
		Forks: 50,
		Issues: models.IssueCounts{
			Open:   5,
			Closed: 45,
		},
		Languages: map[string]float64{
			"Solidity":   60,
			"TypeScript": 40,
		},
		Activity: models.ActivitySnapshot{
			LastCommit: &lastCommit,
			Commits30d: 25,
		},
		Quality: models.QualityReport{
			Score: 85,
			Notes: []string{"has tests", "has CI", "has README"},
		},
		GrantFit: models.GrantFitReport{
			Signals: []string{"active development", "web3 native"},
			Matches: []models.GrantMatch{
				{GrantID: "eth-eco", Program: "Ethereum Ecosystem Grants", Ecosystem: "ethereum", Confidence: 88},
			},
		},
	}
}

func TestNormalizeValueTiers(t *testing.T) {
	tiers := Tiers{Low: 10, Medium: 100, High: 1000, Exceptional: 10000}

	tests := []struct {
		name  string
		value float64
		min   float64
		max   float64
	}{
		{"zero", 0, 0, 0},
		{"negative", -5, 0, 0},
		{"low boundary", 10, 0.25, 0.25},
		{"medium boundary", 100, 0.5, 0.5},
		{"high boundary", 1000, 0.75, 0.75},
		{"inside top tier", 5000, 0.75, 1.0},
		{"top bound", 10000, 1.0, 1.0},
		{"beyond top", 50000, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeValue(tt.value, tiers)
			if got < tt.min || got > tt.max {
				t.Fatalf("NormalizeValue(%v) = %v, want in [%v, %v]", tt.value, got, tt.min, tt.max)
			}
		})
	}
}

func TestNormalizeValueMonotonic(t *testing.T) {
	tiers := Tiers{Low: 5, Medium: 15, High: 30, Exceptional: 60}

	prev := -1.0
	for v := 0.0; v <= 100; v += 0.5 {
		got := NormalizeValue(v, tiers)
		if got < prev {
			t.Fatalf("NormalizeValue not monotonic: f(%v)=%v < previous %v", v, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("NormalizeValue(%v) = %v out of [0,1]", v, got)
		}
		prev = got
	}
}

func TestNormalizeValueMissingExceptionalUsesDoubleHigh(t *testing.T) {
	tiers := Tiers{Low: 5, Medium: 25, High: 100}

	if got := NormalizeValue(200, tiers); got != 1 {
		t.Fatalf("expected 1.0 at high*2, got %v", got)
	}
	mid := NormalizeValue(150, tiers)
	if mid <= 0.75 || mid >= 1 {
		t.Fatalf("expected value between high and high*2 in (0.75, 1), got %v", mid)
	}
}

func TestExtractSignalsNilTelemetry(t *testing.T) {
	signals := ExtractSignals(nil, DefaultConfig(), testNow)
	if signals == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
}

func TestExtractSignalsFixedSet(t *testing.T) {
	signals := ExtractSignals(sampleTelemetry(), DefaultConfig(), testNow)

	expected := []string{
		SignalCommits30d, SignalStars, SignalForks, SignalRecency,
		SignalIssues, SignalCodeQuality, SignalHasTests, SignalHasContracts,
	}
	if len(signals) != len(expected) {
		t.Fatalf("expected %d signals, got %d", len(expected), len(signals))
	}

	seen := map[string]bool{}
	for _, s := range signals {
		seen[s.Key] = true
		if s.Normalized < 0 || s.Normalized > 1 {
			t.Errorf("signal %s normalized value %v out of [0,1]", s.Key, s.Normalized)
		}
		if s.Weight <= 0 {
			t.Errorf("signal %s has no weight", s.Key)
		}
	}
	for _, key := range expected {
		if !seen[key] {
			t.Errorf("missing signal %s", key)
		}
	}
}

func TestExtractSignalsExampleScenario(t *testing.T) {
	signals := ExtractSignals(sampleTelemetry(), DefaultConfig(), testNow)

	contracts := signalByKey(signals, SignalHasContracts)
	if contracts == nil || contracts.Normalized != 1 {
		t.Fatalf("expected hasContracts normalized 1 for Solidity repo, got %+v", contracts)
	}

	stars := signalByKey(signals, SignalStars)
	if stars == nil || stars.Normalized < 0.75 {
		t.Fatalf("expected 1000 stars in the [0.75, 1.0] tier, got %+v", stars)
	}

	tests := signalByKey(signals, SignalHasTests)
	if tests == nil || tests.Normalized != 1 {
		t.Fatalf("expected test evidence from quality notes, got %+v", tests)
	}
}

func TestExtractSignalsRecencyDecay(t *testing.T) {
	tele := sampleTelemetry()

	tests := []struct {
		name string
		age  time.Duration
		min  float64
		max  float64
	}{
		{"fresh commit", 0, 0.99, 1.0},
		{"45 days", 45 * 24 * time.Hour, 0.49, 0.51},
		{"90 days", 90 * 24 * time.Hour, 0, 0.01},
		{"beyond window", 400 * 24 * time.Hour, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := testNow.Add(-tt.age)
			tele.Activity.LastCommit = &last
			signals := ExtractSignals(tele, DefaultConfig(), testNow)
			recency := signalByKey(signals, SignalRecency)
			if recency == nil {
				t.Fatal("recency signal missing")
			}
			if recency.Normalized < tt.min || recency.Normalized > tt.max {
				t.Fatalf("recency after %v = %v, want in [%v, %v]", tt.age, recency.Normalized, tt.min, tt.max)
			}
		})
	}
}

func TestExtractSignalsNoCommitRecorded(t *testing.T) {
	tele := sampleTelemetry()
	tele.Activity.LastCommit = nil

	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	recency := signalByKey(signals, SignalRecency)
	if recency == nil || recency.Normalized != 0 {
		t.Fatalf("expected zero recency without commits, got %+v", recency)
	}
}

func TestExtractSignalsConservativeDetection(t *testing.T) {
	tele := sampleTelemetry()
	tele.Quality.Notes = []string{"clean architecture"}
	tele.Languages = map[string]float64{"Go": 100}

	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	if s := signalByKey(signals, SignalHasTests); s == nil || s.Normalized != 0 {
		t.Errorf("expected no test evidence, got %+v", s)
	}
	if s := signalByKey(signals, SignalHasContracts); s == nil || s.Normalized != 0 {
		t.Errorf("expected no contract evidence, got %+v", s)
	}
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/weights.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(cfg.Signals) != len(DefaultConfig().Signals) {
		t.Fatal("expected defaults to survive a load failure")
	}
}
