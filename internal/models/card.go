package models

import (
	"time"

	"github.com/google/uuid"
)

// SignalCategory groups signals for category-level aggregation.
type SignalCategory string

const (
	CategoryActivity      SignalCategory = "activity"
	CategoryCommunity     SignalCategory = "community"
	CategoryCodeQuality   SignalCategory = "code_quality"
	CategoryDocumentation SignalCategory = "documentation"
	CategoryDeployment    SignalCategory = "deployment"
	CategoryTeam          SignalCategory = "team"
)

// Signal is a normalized (0-1), weighted observation derived from one raw
// telemetry metric. Signals are recomputed fresh on every analysis.
type Signal struct {
	Key         string         `json:"key"`
	Category    SignalCategory `json:"category"`
	Raw         any            `json:"raw"`
	Normalized  float64        `json:"normalized"` // clamped to [0,1]
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Weight      float64        `json:"weight"`
}

// ScoreType names one of the four sub-scores.
type ScoreType string

const (
	ScoreGrantFit           ScoreType = "grantFit"
	ScoreCapitalReadiness   ScoreType = "capitalReadiness"
	ScoreEcosystemAlignment ScoreType = "ecosystemAlignment"
	ScoreEngagementEase     ScoreType = "engagementEase"
)

// ScoreFactor is one itemized contribution inside a breakdown. Contributions
// for a breakdown sum to its score, so every number is recomputable from the
// raw telemetry alone.
type ScoreFactor struct {
	Name         string `json:"name"`
	Contribution int    `json:"contribution"`
	Explanation  string `json:"explanation"`
}

// ScoreBreakdown is a named 0-100 sub-score with its contributing factors.
type ScoreBreakdown struct {
	Type        ScoreType     `json:"type"`
	Score       int           `json:"score"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Factors     []ScoreFactor `json:"factors"`
}

// ProjectScores is the full score set for one repository.
type ProjectScores struct {
	GrantFit           ScoreBreakdown `json:"grantFit"`
	CapitalReadiness   ScoreBreakdown `json:"capitalReadiness"`
	EcosystemAlignment ScoreBreakdown `json:"ecosystemAlignment"`
	EngagementEase     ScoreBreakdown `json:"engagementEase"`
	Overall            int            `json:"overall"`
	CalculatedAt       time.Time      `json:"calculated_at"`
}

// RiskLevel classifies a risk flag.
type RiskLevel string

const (
	RiskWarning  RiskLevel = "warning"
	RiskCritical RiskLevel = "critical"
)

type RiskFlag struct {
	Type     RiskLevel      `json:"type"`
	Message  string         `json:"message"`
	Category SignalCategory `json:"category"`
}

// ActionPriority orders next actions for display.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// NextAction is a concrete remediation suggestion. Completed is UI state
// owned by the presentation layer (tracked in a side table keyed by action
// id); the generator always emits false.
type NextAction struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Priority  ActionPriority `json:"priority"`
	Impact    string         `json:"impact"`
	Completed bool           `json:"completed"`
}

// GrantRecommendation is derived 1:1 from externally supplied grant matches.
type GrantRecommendation struct {
	GrantID     string   `json:"grant_id"`
	ProgramName string   `json:"program_name"`
	Ecosystem   string   `json:"ecosystem"`
	Confidence  int      `json:"confidence"` // 0-100
	WhyFits     []string `json:"why_fits"`
	ApplyURL    string   `json:"apply_url,omitempty"`
}

// SignalStrength tiers a strongest-signal entry.
type SignalStrength string

const (
	StrengthStrong   SignalStrength = "strong"   // normalized > 0.7
	StrengthModerate SignalStrength = "moderate" // normalized > 0.4
	StrengthWeak     SignalStrength = "weak"
)

type StrongSignal struct {
	Label    string         `json:"label"`
	Value    float64        `json:"value"`
	Strength SignalStrength `json:"strength"`
}

// OpportunityCard is the terminal aggregate of one analysis: scores, risks,
// next actions and grant matches for a single repository. Cards are
// constructed fresh per analysis and never mutated afterwards.
type OpportunityCard struct {
	ID                   uuid.UUID             `json:"id"`
	ProjectName          string                `json:"project_name"`
	ProjectURL           string                `json:"project_url"`
	Summary              string                `json:"summary"`
	StrongestSignals     []StrongSignal        `json:"strongest_signals"` // up to 4
	RiskFlags            []RiskFlag            `json:"risk_flags"`
	Scores               ProjectScores         `json:"scores"`
	GrantRecommendations []GrantRecommendation `json:"grant_recommendations"`
	NextActions          []NextAction          `json:"next_actions"` // up to 5
	GeneratedAt          time.Time             `json:"generated_at"`
}
