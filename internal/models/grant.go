package models

import "time"

// Grant status values.
const (
	GrantStatusOpen    = "open"
	GrantStatusRolling = "rolling"
	GrantStatusClosed  = "closed"
)

// Grant is one funding-program catalog entry. Catalog data is read-only
// reference data for the matcher; the scoring pipeline never mutates it.
type Grant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Ecosystem    string    `json:"ecosystem"` // canonical ecosystem id, or "multi-chain"
	Chains       []string  `json:"chains"`
	Tags         []string  `json:"tags"`
	Category     string    `json:"category"`
	Status       string    `json:"status"` // open | rolling | closed
	Deadline     string    `json:"deadline,omitempty"`
	AmountMinUSD float64   `json:"amount_min_usd"`
	AmountMaxUSD float64   `json:"amount_max_usd"`
	ApplyURL     string    `json:"apply_url"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// BuilderNiche is a builder-defined profile used to filter and rank the
// grant catalog. Immutable seed data.
type BuilderNiche struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Icon              string   `json:"icon"`
	Tags              []string `json:"tags"`
	RecommendedChains []string `json:"recommended_chains,omitempty"`
}
