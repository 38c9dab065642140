package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/alexmejias/repo-radar/internal/models"
)

// RawGrant is the untrusted, unnormalized entry a fetcher extracts from a
// listing page.
type RawGrant struct {
	Title        string
	Organization string
	URL          string
	Ecosystem    string
	Chains       []string
	RawTags      []string
	Category     string
	RawAmount    string
	RawStatus    string
	RawDeadline  string
	HTMLSnippet  string
}

var htmlSanitizer = bluemonday.StrictPolicy()

// HTMLToText converts an HTML fragment to sanitized plain text with
// collapsed whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(htmlSanitizer.Sanitize(html))
	}
	return cleanText(htmlSanitizer.Sanitize(doc.Text()))
}

// cleanText collapses runs of whitespace and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FromRaw converts a RawGrant into a canonical catalog entry.
func FromRaw(raw RawGrant) models.Grant {
	grant := models.Grant{
		ID:           slugify(raw.Title),
		Name:         cleanText(raw.Title),
		Organization: cleanText(raw.Organization),
		Ecosystem:    raw.Ecosystem,
		Chains:       raw.Chains,
		Tags:         raw.RawTags,
		Category:     raw.Category,
		Status:       raw.RawStatus,
		Deadline:     cleanText(raw.RawDeadline),
		ApplyURL:     strings.TrimSpace(raw.URL),
	}

	if raw.RawAmount != "" {
		grant.AmountMinUSD, grant.AmountMaxUSD = parseAmountRange(raw.RawAmount)
	}

	NormalizeGrant(&grant)
	return grant
}

// NormalizeGrant cleans and standardizes a grant in place: lowercase
// ecosystem/chains, deduplicated tags, mapped status, and a multi-chain
// fallback when no ecosystem is known (so degraded entries keep matching
// instead of vanishing).
func NormalizeGrant(g *models.Grant) {
	g.Name = cleanText(g.Name)
	g.Organization = cleanText(g.Organization)
	g.Category = strings.ToLower(cleanText(g.Category))

	g.Ecosystem = strings.ToLower(cleanText(g.Ecosystem))
	if g.Ecosystem == "" {
		g.Ecosystem = "multi-chain"
	}

	chains := make([]string, 0, len(g.Chains))
	for _, chain := range g.Chains {
		chain = strings.ToLower(cleanText(chain))
		if chain != "" {
			chains = append(chains, chain)
		}
	}
	g.Chains = chains

	g.Tags = dedupeFold(g.Tags)
	g.Status = normalizeStatus(g.Status)

	if g.ID == "" {
		g.ID = slugify(g.Name)
	}
}

// normalizeStatus maps free-text status hints onto open | rolling | closed.
// Unknown values default to open: a listed program without contrary evidence
// is presumed accepting.
func normalizeStatus(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))

	closedHints := []string{"closed", "ended", "expired", "archived", "no longer accepting", "concluded"}
	for _, hint := range closedHints {
		if strings.Contains(raw, hint) {
			return models.GrantStatusClosed
		}
	}

	rollingHints := []string{"rolling", "ongoing", "continuous", "open-ended", "no deadline", "always open"}
	for _, hint := range rollingHints {
		if strings.Contains(raw, hint) {
			return models.GrantStatusRolling
		}
	}

	return models.GrantStatusOpen
}

// amountRegex finds numbers with thousands separators or magnitude suffixes.
var amountRegex = regexp.MustCompile(`(?i)\$?\s*([\d][\d,\.]*)\s*(k|m)?`)

// parseAmountRange extracts a USD min/max from free text like
// "$10,000 - $250,000" or "up to $50k". A single amount is treated as the
// maximum.
func parseAmountRange(text string) (min, max float64) {
	var amounts []float64
	for _, m := range amountRegex.FindAllStringSubmatch(text, -1) {
		clean := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(strings.TrimSuffix(clean, "."), 64)
		if err != nil || val <= 0 {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			val *= 1_000
		case "m":
			val *= 1_000_000
		}
		amounts = append(amounts, val)
	}

	if len(amounts) == 0 {
		return 0, 0
	}
	if len(amounts) == 1 {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "minimum") || strings.Contains(lower, "at least") {
			return amounts[0], 0
		}
		return 0, amounts[0]
	}

	min, max = amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
	}
	return min, max
}

func dedupeFold(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = cleanText(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
