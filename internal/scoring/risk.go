package scoring

import (
	"fmt"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Risk thresholds. Each check is an independent, stateless rule evaluated
// once per analysis.
const (
	staleCriticalDays   = 180
	staleWarningDays    = 60
	lowVisibilityStars  = 5
	issueBacklogMin     = 10
	issueBacklogOpenPct = 0.8
)

// DetectRiskFlags scans telemetry and derived signals for threshold
// breaches. Absent telemetry yields no flags; it never fails.
func DetectRiskFlags(signals []models.Signal, t *models.RepoTelemetry, now time.Time) []models.RiskFlag {
	if t == nil {
		return []models.RiskFlag{}
	}
	t = t.WithDefaults()

	flags := []models.RiskFlag{}

	// Inactivity: critical takes precedence over warning.
	days := t.DaysSinceLastCommit(now)
	if days > staleCriticalDays {
		flags = append(flags, models.RiskFlag{
			Type:     models.RiskCritical,
			Message:  fmt.Sprintf("No commits in over %d days - the project looks abandoned", staleCriticalDays),
			Category: models.CategoryActivity,
		})
	} else if days > staleWarningDays {
		flags = append(flags, models.RiskFlag{
			Type:     models.RiskWarning,
			Message:  fmt.Sprintf("No commits in over %d days - activity is slowing down", staleWarningDays),
			Category: models.CategoryActivity,
		})
	}

	if t.Stars < lowVisibilityStars {
		flags = append(flags, models.RiskFlag{
			Type:     models.RiskWarning,
			Message:  fmt.Sprintf("Low visibility: only %d stars", t.Stars),
			Category: models.CategoryCommunity,
		})
	}

	if s := signalByKey(signals, SignalHasTests); s != nil && s.Normalized == 0 {
		flags = append(flags, models.RiskFlag{
			Type:     models.RiskWarning,
			Message:  "No test evidence found - reviewers will question reliability",
			Category: models.CategoryCodeQuality,
		})
	}

	total := t.Issues.Open + t.Issues.Closed
	if total > issueBacklogMin && float64(t.Issues.Open)/float64(total) > issueBacklogOpenPct {
		flags = append(flags, models.RiskFlag{
			Type:     models.RiskWarning,
			Message:  fmt.Sprintf("%d of %d issues are still open - the backlog looks unattended", t.Issues.Open, total),
			Category: models.CategoryCommunity,
		})
	}

	return flags
}
