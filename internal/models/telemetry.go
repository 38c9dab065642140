package models

import "time"

// RepoTelemetry is the raw repository snapshot produced by the analysis
// collector (or the remote analysis API). Every field is optional on the
// wire; use WithDefaults before feeding it to the scoring pipeline.
type RepoTelemetry struct {
	Repo      string             `json:"repo"`
	URL       string             `json:"url,omitempty"`
	Stars     int                `json:"stars"`
	Forks     int                `json:"forks"`
	Issues    IssueCounts        `json:"issues"`
	Languages map[string]float64 `json:"languages"` // language name -> percentage share
	Activity  ActivitySnapshot   `json:"activity"`
	Quality   QualityReport      `json:"code_quality"`
	GrantFit  GrantFitReport     `json:"grant_fit"`
}

type IssueCounts struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type ActivitySnapshot struct {
	LastCommit *time.Time `json:"last_commit"`
	Commits30d int        `json:"commits_30d"`
}

type QualityReport struct {
	Score float64  `json:"score"` // 0-100
	Notes []string `json:"notes"` // free-text quality observations
}

// GrantFitReport carries the upstream provider's own read of the repo:
// free-text signal labels, recommendations, and pre-computed grant matches.
type GrantFitReport struct {
	Signals         []string     `json:"signals"`
	Recommendations []string     `json:"recommendations"`
	Matches         []GrantMatch `json:"matches"`
}

// GrantMatch is a pre-computed match supplied alongside telemetry.
type GrantMatch struct {
	GrantID    string   `json:"grant_id"`
	Program    string   `json:"program"`
	Ecosystem  string   `json:"ecosystem"`
	Confidence float64  `json:"confidence"` // 0-100
	Reasons    []string `json:"reasons"`
	ApplyURL   string   `json:"apply_url,omitempty"`
}

// WithDefaults returns a fully-populated telemetry value. A nil input yields
// the zero shape, and nil collections are replaced with empty ones, so the
// scoring pipeline never has to defend individual field accesses.
func (t *RepoTelemetry) WithDefaults() *RepoTelemetry {
	if t == nil {
		t = &RepoTelemetry{}
	}
	out := *t
	if out.Languages == nil {
		out.Languages = map[string]float64{}
	}
	if out.Quality.Notes == nil {
		out.Quality.Notes = []string{}
	}
	if out.GrantFit.Signals == nil {
		out.GrantFit.Signals = []string{}
	}
	if out.GrantFit.Recommendations == nil {
		out.GrantFit.Recommendations = []string{}
	}
	if out.GrantFit.Matches == nil {
		out.GrantFit.Matches = []GrantMatch{}
	}
	return &out
}

// DaysSinceLastCommit reports whole days since the last commit as of now.
// Repos with no recorded commit are treated as stale beyond every threshold.
func (t *RepoTelemetry) DaysSinceLastCommit(now time.Time) float64 {
	if t == nil || t.Activity.LastCommit == nil || t.Activity.LastCommit.IsZero() {
		return 1e6
	}
	days := now.Sub(*t.Activity.LastCommit).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
