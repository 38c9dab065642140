package matching

import (
	"testing"

	"github.com/alexmejias/repo-radar/internal/models"
)

func defiNiche() models.BuilderNiche {
	return models.BuilderNiche{
		ID:                "defi",
		Tags:              []string{"DeFi", "Lending"},
		RecommendedChains: []string{"ethereum"},
	}
}

func TestMatchGrantsForNicheExampleScenario(t *testing.T) {
	catalog := []models.Grant{
		{
			ID:        "dex-grant",
			Name:      "DEX Builders Program",
			Ecosystem: "ethereum",
			Tags:      []string{"DEX", "DeFi"},
			Category:  "defi",
		},
	}

	ranked := MatchGrantsForNiche(defiNiche(), catalog)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 match, got %d", len(ranked))
	}
	// +2 tag pair (DeFi~DeFi), +2 category (DeFi~defi), +1 chain alias.
	if ranked[0].Score < 5 {
		t.Fatalf("score = %d, want >= 5", ranked[0].Score)
	}
	if len(ranked[0].Reasons) == 0 {
		t.Fatal("matches must carry human-readable reasons")
	}
}

func TestMatchGrantsForNicheCategoryScoreNotCumulative(t *testing.T) {
	grant := models.Grant{
		ID:        "g",
		Ecosystem: "ethereum",
		Tags:      []string{"DeFi"},
		Category:  "defi lending",
	}

	ranked := MatchGrantsForNiche(defiNiche(), []models.Grant{grant})
	if len(ranked) != 1 {
		t.Fatalf("expected a match, got %d", len(ranked))
	}
	// +2 tag pair, +2 category (once, despite both niche tags overlapping
	// the category), +1 chain.
	if ranked[0].Score != 5 {
		t.Fatalf("score = %d, want 5", ranked[0].Score)
	}
}

func TestMatchGrantsForNicheRequiresTagOverlap(t *testing.T) {
	grant := models.Grant{
		ID:        "g1",
		Ecosystem: "ethereum",
		Tags:      []string{"DeFi"},
		Category:  "defi",
	}

	ranked := MatchGrantsForNiche(defiNiche(), []models.Grant{grant})
	if len(ranked) != 1 {
		t.Fatalf("expected a match before removing tags, got %d", len(ranked))
	}

	// Removing every overlapping tag removes the grant from the result.
	grant.Tags = []string{"Gaming"}
	grant.Category = "gaming"
	ranked = MatchGrantsForNiche(defiNiche(), []models.Grant{grant})
	if len(ranked) != 0 {
		t.Fatalf("expected no match without tag overlap, got %+v", ranked)
	}
}

func TestMatchGrantsForNicheRequiresEcosystem(t *testing.T) {
	grant := models.Grant{
		ID:        "sol-defi",
		Ecosystem: "solana",
		Tags:      []string{"DeFi"},
	}

	ranked := MatchGrantsForNiche(defiNiche(), []models.Grant{grant})
	if len(ranked) != 0 {
		t.Fatalf("solana grant should not match an ethereum-only niche, got %+v", ranked)
	}

	grant.Ecosystem = "multi-chain"
	ranked = MatchGrantsForNiche(defiNiche(), []models.Grant{grant})
	if len(ranked) != 1 {
		t.Fatalf("multi-chain grant should match every niche, got %d", len(ranked))
	}
}

func TestMatchGrantsForNicheSubstringOverlapBothDirections(t *testing.T) {
	niche := models.BuilderNiche{
		Tags:              []string{"Zero-Knowledge"},
		RecommendedChains: []string{"ethereum"},
	}
	grant := models.Grant{
		ID:        "zk",
		Ecosystem: "ethereum",
		Tags:      []string{"zero-knowledge proofs"},
	}

	if ranked := MatchGrantsForNiche(niche, []models.Grant{grant}); len(ranked) != 1 {
		t.Fatalf("expected substring overlap to match, got %d", len(ranked))
	}
}

func TestMatchGrantsForNicheRanking(t *testing.T) {
	catalog := []models.Grant{
		{ID: "weak", Ecosystem: "multi-chain", Tags: []string{"Lending"}},
		{ID: "strong", Ecosystem: "ethereum", Tags: []string{"DeFi", "Lending"}, Category: "defi"},
		{ID: "tied-a", Ecosystem: "multi-chain", Tags: []string{"DeFi"}},
		{ID: "tied-b", Ecosystem: "multi-chain", Tags: []string{"DeFi"}},
	}

	ranked := MatchGrantsForNiche(defiNiche(), catalog)
	if len(ranked) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(ranked))
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("ranking not non-increasing: %s(%d) after %s(%d)",
				ranked[i].Grant.ID, ranked[i].Score, ranked[i-1].Grant.ID, ranked[i-1].Score)
		}
	}
	if ranked[0].Grant.ID != "strong" {
		t.Fatalf("expected strongest grant first, got %s", ranked[0].Grant.ID)
	}

	// Stable sort: equal scores keep catalog order.
	posA, posB := -1, -1
	for i, r := range ranked {
		switch r.Grant.ID {
		case "tied-a":
			posA = i
		case "tied-b":
			posB = i
		}
	}
	if posA == -1 || posB == -1 || posA > posB {
		t.Fatalf("tie order not stable: tied-a at %d, tied-b at %d", posA, posB)
	}
}

func TestMatchGrantsForNicheChainScoreNotCumulative(t *testing.T) {
	niche := models.BuilderNiche{
		Tags:              []string{"DeFi"},
		RecommendedChains: []string{"ethereum", "arbitrum", "optimism"},
	}
	grant := models.Grant{ID: "g", Ecosystem: "ethereum", Tags: []string{"DeFi"}}

	ranked := MatchGrantsForNiche(niche, []models.Grant{grant})
	if len(ranked) != 1 {
		t.Fatalf("expected a match, got %d", len(ranked))
	}
	// +2 tag pair, +1 chain (once, despite three chains aliasing ethereum).
	if ranked[0].Score != 3 {
		t.Fatalf("score = %d, want 3", ranked[0].Score)
	}
}

func TestEcosystemAliases(t *testing.T) {
	tests := []struct {
		chain string
		want  string
	}{
		{"arbitrum", "ethereum"},
		{"Arbitrum", "ethereum"}, // case-insensitive lookup
		{"solana", "multi-chain"},
		{"newchain", "newchain"}, // unknown chains self-alias
	}

	for _, tt := range tests {
		aliases := EcosystemAliases(tt.chain)
		found := false
		for _, a := range aliases {
			if a == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("EcosystemAliases(%q) = %v, want it to contain %q", tt.chain, aliases, tt.want)
		}
	}
}

func TestNicheCatalog(t *testing.T) {
	niches := Niches()
	if len(niches) == 0 {
		t.Fatal("niche catalog is empty")
	}

	seen := map[string]bool{}
	for _, n := range niches {
		if n.ID == "" || len(n.Tags) == 0 {
			t.Errorf("incomplete niche: %+v", n)
		}
		if seen[n.ID] {
			t.Errorf("duplicate niche id %s", n.ID)
		}
		seen[n.ID] = true
	}

	if _, ok := NicheByID("defi"); !ok {
		t.Fatal("expected defi niche in catalog")
	}
	if _, ok := NicheByID("no-such"); ok {
		t.Fatal("unknown id should not resolve")
	}
}
