package telemetry

import (
	"testing"

	"github.com/alexmejias/repo-radar/internal/models"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		owner   string
		repo    string
		wantErr bool
	}{
		{"https url", "https://github.com/acme/vault", "acme", "vault", false},
		{"url with git suffix", "https://github.com/acme/vault.git", "acme", "vault", false},
		{"bare ref", "acme/vault", "acme", "vault", false},
		{"host without scheme", "github.com/acme/vault", "acme", "vault", false},
		{"host without scheme, trailing path", "github.com/acme/vault/issues", "acme", "vault", false},
		{"host without scheme, git suffix", "github.com/acme/vault.git", "acme", "vault", false},
		{"trailing path", "https://github.com/acme/vault/tree/main", "acme", "vault", false},
		{"empty", "", "", "", true},
		{"owner only", "acme", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.owner || repo != tt.repo {
				t.Fatalf("got %s/%s, want %s/%s", owner, repo, tt.owner, tt.repo)
			}
		})
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		want  float64
	}{
		{"no evidence", nil, 30},
		{"one marker", []string{"has README"}, 55},
		{"full marks capped", []string{"a", "b", "c", "d", "e"}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qualityScore(tt.notes); got != tt.want {
				t.Fatalf("qualityScore(%d notes) = %v, want %v", len(tt.notes), got, tt.want)
			}
		})
	}
}

func TestGrantFitSignals(t *testing.T) {
	tele := &models.RepoTelemetry{
		Stars: 500,
		Languages: map[string]float64{
			"Solidity":   50,
			"TypeScript": 30,
			"Go":         20,
		},
		Activity: models.ActivitySnapshot{Commits30d: 12},
	}

	signals := grantFitSignals(tele)
	want := map[string]bool{
		"active development":      true,
		"established community":   true,
		"smart-contract codebase": true,
		"multi-language stack":    true,
	}
	if len(signals) != len(want) {
		t.Fatalf("expected %d signals, got %v", len(want), signals)
	}
	for _, s := range signals {
		if !want[s] {
			t.Errorf("unexpected signal %q", s)
		}
	}

	if got := grantFitSignals(&models.RepoTelemetry{}); len(got) != 0 {
		t.Fatalf("empty repo should emit no signals, got %v", got)
	}
}
