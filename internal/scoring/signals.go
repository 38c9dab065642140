package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

// NormalizeValue maps a raw metric value into [0,1] through the four-tier
// piecewise-linear threshold function. Each tier occupies a quarter of the
// output range, so credit grows continuously across tier boundaries and
// marginal credit diminishes for extreme values:
//
//	0 .. low          -> 0.00 .. 0.25
//	low .. medium     -> 0.25 .. 0.50
//	medium .. high    -> 0.50 .. 0.75
//	high .. top       -> 0.75 .. 1.00  (top = exceptional, or high*2)
//
// Values at or above the top bound return exactly 1.
func NormalizeValue(v float64, tiers Tiers) float64 {
	if v <= 0 {
		return 0
	}

	top := tiers.Exceptional
	if top <= tiers.High {
		top = tiers.High * 2
	}

	switch {
	case v <= tiers.Low:
		return segment(v, 0, tiers.Low, 0, 0.25)
	case v <= tiers.Medium:
		return segment(v, tiers.Low, tiers.Medium, 0.25, 0.5)
	case v <= tiers.High:
		return segment(v, tiers.Medium, tiers.High, 0.5, 0.75)
	case v < top:
		return segment(v, tiers.High, top, 0.75, 1.0)
	default:
		return 1
	}
}

// segment linearly interpolates v from [from,to] into [lo,hi].
func segment(v, from, to, lo, hi float64) float64 {
	if to <= from {
		return hi
	}
	return lo + (v-from)/(to-from)*(hi-lo)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ExtractSignals converts raw telemetry into the fixed set of normalized,
// weighted signals. A nil telemetry yields an empty slice; it never fails.
func ExtractSignals(t *models.RepoTelemetry, cfg Config, now time.Time) []models.Signal {
	if t == nil {
		return []models.Signal{}
	}
	t = t.WithDefaults()

	signals := make([]models.Signal, 0, len(cfg.Signals))
	add := func(key string, raw any, normalized float64, description string) {
		spec := cfg.spec(key)
		if spec == nil {
			return
		}
		signals = append(signals, models.Signal{
			Key:         key,
			Category:    spec.Category,
			Raw:         raw,
			Normalized:  clamp01(normalized),
			Label:       spec.Label,
			Description: description,
			Weight:      spec.Weight,
		})
	}

	// Tiered numeric metrics.
	add(SignalCommits30d, t.Activity.Commits30d,
		tieredNorm(cfg, SignalCommits30d, float64(t.Activity.Commits30d)),
		fmt.Sprintf("%d commits in the last 30 days", t.Activity.Commits30d))
	add(SignalStars, t.Stars,
		tieredNorm(cfg, SignalStars, float64(t.Stars)),
		fmt.Sprintf("%d stars", t.Stars))
	add(SignalForks, t.Forks,
		tieredNorm(cfg, SignalForks, float64(t.Forks)),
		fmt.Sprintf("%d forks", t.Forks))

	// Recency: linear decay to zero across the configured window.
	days := t.DaysSinceLastCommit(now)
	window := cfg.RecencyWindow
	if window <= 0 {
		window = 90
	}
	recency := 1 - days/window
	if recency < 0 {
		recency = 0
	}
	recencyDesc := "no commit recorded"
	if t.Activity.LastCommit != nil && !t.Activity.LastCommit.IsZero() {
		recencyDesc = fmt.Sprintf("last commit %d days ago", int(days))
	}
	add(SignalRecency, days, recency, recencyDesc)

	// Ratio metrics, already in [0,1].
	total := t.Issues.Open + t.Issues.Closed
	resolution := 0.0
	if total > 0 {
		resolution = float64(t.Issues.Closed) / float64(total)
	}
	add(SignalIssues, total, resolution,
		fmt.Sprintf("%d of %d issues resolved", t.Issues.Closed, total))

	add(SignalCodeQuality, t.Quality.Score, t.Quality.Score/100,
		fmt.Sprintf("quality score %.0f/100", t.Quality.Score))

	// Boolean detections via conservative substring heuristics over
	// free-text notes and the language map. False negatives are accepted;
	// the upstream telemetry contract does not give us anything stronger.
	tests := 0.0
	if hasTestEvidence(t.Quality.Notes) {
		tests = 1
	}
	add(SignalHasTests, tests == 1, tests, describeBool(tests == 1, "test evidence"))

	contracts := 0.0
	if hasContractLanguage(t.Languages) {
		contracts = 1
	}
	add(SignalHasContracts, contracts == 1, contracts, describeBool(contracts == 1, "smart-contract code"))

	return signals
}

func tieredNorm(cfg Config, key string, v float64) float64 {
	spec := cfg.spec(key)
	if spec == nil || spec.Tiers == nil {
		return clamp01(v)
	}
	return NormalizeValue(v, *spec.Tiers)
}

func hasTestEvidence(notes []string) bool {
	for _, note := range notes {
		lower := strings.ToLower(note)
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
			return true
		}
	}
	return false
}

func hasContractLanguage(languages map[string]float64) bool {
	for name := range languages {
		if strings.EqualFold(name, "solidity") {
			return true
		}
	}
	return false
}

func describeBool(present bool, what string) string {
	if present {
		return what + " detected"
	}
	return "no " + what + " detected"
}

// signalByKey returns the signal with the given key, or nil.
func signalByKey(signals []models.Signal, key string) *models.Signal {
	for i := range signals {
		if signals[i].Key == key {
			return &signals[i]
		}
	}
	return nil
}

// categoryMean averages normalized values for one category. Empty categories
// yield zero rather than NaN.
func categoryMean(signals []models.Signal, category models.SignalCategory) float64 {
	sum, n := 0.0, 0
	for _, s := range signals {
		if s.Category == category {
			sum += s.Normalized
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
