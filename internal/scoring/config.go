package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Tiers configures the four-tier piecewise-linear normalization for one
// bounded numeric metric. Exceptional may be zero, in which case High*2 is
// used as the top bound.
type Tiers struct {
	Low         float64 `yaml:"low"`
	Medium      float64 `yaml:"medium"`
	High        float64 `yaml:"high"`
	Exceptional float64 `yaml:"exceptional,omitempty"`
}

// SignalSpec is one row of the static signal table: category, weight and
// optional normalization tiers for a tracked metric.
type SignalSpec struct {
	Key      string                `yaml:"key"`
	Category models.SignalCategory `yaml:"category"`
	Label    string                `yaml:"label"`
	Weight   float64               `yaml:"weight"`
	Tiers    *Tiers                `yaml:"tiers,omitempty"`
}

// OverallWeights blends the four sub-scores into the overall score. Weights
// are non-negative and sum to 1, which keeps overall in [0,100] whenever the
// sub-scores are.
type OverallWeights struct {
	GrantFit           float64 `yaml:"grant_fit"`
	CapitalReadiness   float64 `yaml:"capital_readiness"`
	EcosystemAlignment float64 `yaml:"ecosystem_alignment"`
	EngagementEase     float64 `yaml:"engagement_ease"`
}

// Config carries every constant table the pipeline depends on. It is passed
// explicitly into the scoring functions so tests can run with alternate
// weight sets; nothing in this package holds mutable package state.
type Config struct {
	Signals       []SignalSpec   `yaml:"signals"`
	Overall       OverallWeights `yaml:"overall"`
	RecencyWindow float64        `yaml:"recency_window_days"` // linear decay horizon
}

// Signal table keys. Adding a metric means adding a row here plus its
// normalization rule in ExtractSignals.
const (
	SignalCommits30d   = "commits30d"
	SignalRecency      = "lastCommitRecency"
	SignalStars        = "stars"
	SignalForks        = "forks"
	SignalIssues       = "issueActivity"
	SignalCodeQuality  = "codeQuality"
	SignalHasTests     = "hasTests"
	SignalHasContracts = "hasContracts"
)

// DefaultConfig returns the built-in weight and threshold tables.
func DefaultConfig() Config {
	return Config{
		Signals: []SignalSpec{
			{Key: SignalCommits30d, Category: models.CategoryActivity, Label: "Commit frequency (30d)", Weight: 0.15,
				Tiers: &Tiers{Low: 5, Medium: 15, High: 30, Exceptional: 60}},
			{Key: SignalRecency, Category: models.CategoryActivity, Label: "Last commit recency", Weight: 0.15},
			{Key: SignalStars, Category: models.CategoryCommunity, Label: "GitHub stars", Weight: 0.12,
				Tiers: &Tiers{Low: 10, Medium: 100, High: 1000, Exceptional: 10000}},
			{Key: SignalForks, Category: models.CategoryCommunity, Label: "Forks", Weight: 0.08,
				Tiers: &Tiers{Low: 5, Medium: 25, High: 100, Exceptional: 500}},
			{Key: SignalIssues, Category: models.CategoryCommunity, Label: "Issue resolution", Weight: 0.10},
			{Key: SignalCodeQuality, Category: models.CategoryCodeQuality, Label: "Code quality", Weight: 0.20},
			{Key: SignalHasTests, Category: models.CategoryCodeQuality, Label: "Test coverage present", Weight: 0.10},
			{Key: SignalHasContracts, Category: models.CategoryDeployment, Label: "Smart contracts present", Weight: 0.10},
		},
		Overall: OverallWeights{
			GrantFit:           0.35,
			CapitalReadiness:   0.25,
			EcosystemAlignment: 0.25,
			EngagementEase:     0.15,
		},
		RecencyWindow: 90,
	}
}

// LoadConfig reads a YAML weight file and overlays it on the defaults.
// Missing sections keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read scoring config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("failed to parse scoring config: %w", err)
	}

	if len(override.Signals) > 0 {
		cfg.Signals = override.Signals
	}
	if override.Overall != (OverallWeights{}) {
		cfg.Overall = override.Overall
	}
	if override.RecencyWindow > 0 {
		cfg.RecencyWindow = override.RecencyWindow
	}
	return cfg, nil
}

// spec returns the table row for a key, or nil if the key is unknown.
func (c Config) spec(key string) *SignalSpec {
	for i := range c.Signals {
		if c.Signals[i].Key == key {
			return &c.Signals[i]
		}
	}
	return nil
}
