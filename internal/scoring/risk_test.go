package scoring

import (
	"testing"
	"time"

	"github.com/alexmejias/repo-radar/internal/models"
)

func flagsOfType(flags []models.RiskFlag, level models.RiskLevel) []models.RiskFlag {
	var out []models.RiskFlag
	for _, f := range flags {
		if f.Type == level {
			out = append(out, f)
		}
	}
	return out
}

func TestDetectRiskFlagsNilTelemetry(t *testing.T) {
	flags := DetectRiskFlags(nil, nil, testNow)
	if flags == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(flags) != 0 {
		t.Fatalf("expected no flags for absent telemetry, got %d", len(flags))
	}
}

func TestDetectRiskFlagsHealthyRepo(t *testing.T) {
	tele := sampleTelemetry()
	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	flags := DetectRiskFlags(signals, tele, testNow)

	if critical := flagsOfType(flags, models.RiskCritical); len(critical) != 0 {
		t.Fatalf("expected no critical flags for a healthy repo, got %+v", critical)
	}
}

func TestDetectRiskFlagsInactivity(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		wantType models.RiskLevel
		want     bool
	}{
		{"recent", 20 * 24 * time.Hour, "", false},
		{"slowing", 90 * 24 * time.Hour, models.RiskWarning, true},
		{"abandoned", 200 * 24 * time.Hour, models.RiskCritical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tele := sampleTelemetry()
			last := testNow.Add(-tt.age)
			tele.Activity.LastCommit = &last

			signals := ExtractSignals(tele, DefaultConfig(), testNow)
			flags := DetectRiskFlags(signals, tele, testNow)

			var activity []models.RiskFlag
			for _, f := range flags {
				if f.Category == models.CategoryActivity {
					activity = append(activity, f)
				}
			}

			if !tt.want {
				if len(activity) != 0 {
					t.Fatalf("expected no activity flags, got %+v", activity)
				}
				return
			}
			if len(activity) != 1 {
				t.Fatalf("expected exactly one activity flag, got %d", len(activity))
			}
			if activity[0].Type != tt.wantType {
				t.Fatalf("expected %s flag, got %s", tt.wantType, activity[0].Type)
			}
		})
	}
}

func TestDetectRiskFlagsLowVisibility(t *testing.T) {
	tele := sampleTelemetry()
	tele.Stars = 3

	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	flags := DetectRiskFlags(signals, tele, testNow)

	found := false
	for _, f := range flags {
		if f.Category == models.CategoryCommunity && f.Type == models.RiskWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a community warning for a 3-star repo")
	}
}

func TestDetectRiskFlagsMissingTests(t *testing.T) {
	tele := sampleTelemetry()
	tele.Quality.Notes = []string{"clean code"}

	signals := ExtractSignals(tele, DefaultConfig(), testNow)
	flags := DetectRiskFlags(signals, tele, testNow)

	found := false
	for _, f := range flags {
		if f.Category == models.CategoryCodeQuality {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a code_quality warning without test evidence")
	}
}

func TestDetectRiskFlagsIssueBacklog(t *testing.T) {
	tests := []struct {
		name   string
		open   int
		closed int
		want   bool
	}{
		{"healthy ratio", 5, 45, false},
		{"small tracker ignored", 9, 1, false},
		{"unattended backlog", 40, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tele := sampleTelemetry()
			tele.Issues = models.IssueCounts{Open: tt.open, Closed: tt.closed}

			signals := ExtractSignals(tele, DefaultConfig(), testNow)
			flags := DetectRiskFlags(signals, tele, testNow)

			found := false
			for _, f := range flags {
				if f.Category == models.CategoryCommunity && f.Type == models.RiskWarning &&
					tt.open+tt.closed > issueBacklogMin {
					found = true
				}
			}
			if found != tt.want {
				t.Fatalf("backlog flag = %v, want %v (flags: %+v)", found, tt.want, flags)
			}
		})
	}
}
