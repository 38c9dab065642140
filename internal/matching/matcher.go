// Package matching ranks the grant catalog against builder niches using a
// deliberately simple bag-of-tags matcher, so every match reason stays a
// human-auditable string.
package matching

import (
	"sort"
	"strings"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Scoring increments for the ranked match score.
const (
	tagPairPoints  = 2
	categoryPoints = 2
	chainPoints    = 1
)

// RankedGrant pairs a matched grant with its computed score and the
// human-readable reasons behind it.
type RankedGrant struct {
	Grant   models.Grant `json:"grant"`
	Score   int          `json:"score"`
	Reasons []string     `json:"reasons"`
}

// MatchGrantsForNiche returns the subset of the catalog matching the niche,
// ranked by score (higher first, catalog order on ties).
//
// A grant matches only if both conditions hold:
//   - at least one niche tag has case-insensitive substring overlap (either
//     direction) with a grant tag or the grant category, and
//   - the grant's ecosystem is "multi-chain" or is an alias of one of the
//     niche's recommended chains.
func MatchGrantsForNiche(niche models.BuilderNiche, catalog []models.Grant) []RankedGrant {
	matched := make([]RankedGrant, 0)

	for _, grant := range catalog {
		if score, reasons := scoreGrant(niche, grant); score > 0 {
			matched = append(matched, RankedGrant{Grant: grant, Score: score, Reasons: reasons})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})
	return matched
}

// scoreGrant returns the match score for one grant, or 0 when either the
// tag-overlap or the ecosystem condition fails.
func scoreGrant(niche models.BuilderNiche, grant models.Grant) (int, []string) {
	score := 0
	var reasons []string

	for _, nicheTag := range niche.Tags {
		for _, grantTag := range grant.Tags {
			if tagsOverlap(nicheTag, grantTag) {
				score += tagPairPoints
				reasons = append(reasons, "tag overlap: "+nicheTag+" ~ "+grantTag)
			}
		}
	}

	// Category score is not cumulative: the first overlapping niche tag
	// counts once, no matter how many tags touch the category.
	if grant.Category != "" {
		for _, nicheTag := range niche.Tags {
			if tagsOverlap(nicheTag, grant.Category) {
				score += categoryPoints
				reasons = append(reasons, "category match: "+nicheTag+" ~ "+grant.Category)
				break
			}
		}
	}
	if score == 0 {
		return 0, nil
	}

	if !ecosystemMatches(niche, grant.Ecosystem) {
		return 0, nil
	}

	// Chain score is not cumulative: the first aliased hit counts once.
	if chain, ok := firstChainAliasHit(niche, grant.Ecosystem); ok {
		score += chainPoints
		reasons = append(reasons, "recommended chain "+chain+" maps to "+grant.Ecosystem)
	}

	return score, reasons
}

// tagsOverlap reports case-insensitive substring overlap in either direction.
func tagsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ecosystemMatches applies the chain/ecosystem condition: multi-chain grants
// match every niche, otherwise the grant ecosystem must be an alias of one
// of the niche's recommended chains.
func ecosystemMatches(niche models.BuilderNiche, ecosystem string) bool {
	ecosystem = strings.ToLower(strings.TrimSpace(ecosystem))
	if ecosystem == EcosystemMultiChain {
		return true
	}
	_, ok := firstChainAliasHit(niche, ecosystem)
	return ok
}

// firstChainAliasHit finds the first recommended chain whose alias set
// contains the grant ecosystem.
func firstChainAliasHit(niche models.BuilderNiche, ecosystem string) (string, bool) {
	ecosystem = strings.ToLower(strings.TrimSpace(ecosystem))
	for _, chain := range niche.RecommendedChains {
		for _, alias := range EcosystemAliases(chain) {
			if alias == ecosystem {
				return chain, true
			}
		}
	}
	return "", false
}
