// Package telemetry builds RepoTelemetry snapshots from the GitHub API.
// This is the collaborator that supplies raw data to the scoring core;
// unlike the core, failures here are real errors and are returned.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/alexmejias/repo-radar/internal/models"
)

// Collector fetches repository telemetry from GitHub.
type Collector struct {
	client *github.Client
	logger *zap.Logger
}

// NewCollector creates a Collector. An empty token falls back to
// unauthenticated requests (60 req/h rate limit).
func NewCollector(token string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := oauth2.NewClient(context.Background(), nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &Collector{
		client: github.NewClient(httpClient),
		logger: logger,
	}
}

// ParseRepoRef extracts "owner/name" from a repository URL or a bare
// owner/name reference.
func ParseRepoRef(raw string) (owner, name string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("empty repository reference")
	}

	// Scheme-less refs like "github.com/acme/vault" parse as an opaque path,
	// so the host prefix has to be stripped by hand before splitting.
	path := raw
	switch {
	case strings.Contains(raw, "://"):
		u, perr := url.Parse(raw)
		if perr != nil || u.Path == "" {
			return "", "", fmt.Errorf("cannot parse repository reference %q", raw)
		}
		path = u.Path
	case strings.HasPrefix(raw, "github.com/"):
		path = strings.TrimPrefix(raw, "github.com/")
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse repository reference %q", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Collect assembles a RepoTelemetry snapshot for owner/name as of now.
func (c *Collector) Collect(ctx context.Context, owner, name string, now time.Time) (*models.RepoTelemetry, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, name, err)
	}

	tele := &models.RepoTelemetry{
		Repo:  repo.GetFullName(),
		URL:   repo.GetHTMLURL(),
		Stars: repo.GetStargazersCount(),
		Forks: repo.GetForksCount(),
		Issues: models.IssueCounts{
			Open: repo.GetOpenIssuesCount(),
		},
	}

	if langs, err := c.collectLanguages(ctx, owner, name); err == nil {
		tele.Languages = langs
	} else {
		c.logger.Warn("language fetch failed", zap.String("repo", tele.Repo), zap.Error(err))
	}

	commits30d, lastCommit, err := c.collectActivity(ctx, owner, name, now)
	if err != nil {
		c.logger.Warn("activity fetch failed", zap.String("repo", tele.Repo), zap.Error(err))
	}
	tele.Activity = models.ActivitySnapshot{Commits30d: commits30d, LastCommit: lastCommit}

	if closed, err := c.countClosedIssues(ctx, owner, name); err == nil {
		tele.Issues.Closed = closed
	} else {
		c.logger.Warn("closed-issue count failed", zap.String("repo", tele.Repo), zap.Error(err))
	}

	notes := c.collectQualityNotes(ctx, owner, name)
	tele.Quality = models.QualityReport{
		Score: qualityScore(notes),
		Notes: notes,
	}
	tele.GrantFit = models.GrantFitReport{
		Signals:         grantFitSignals(tele),
		Recommendations: []string{},
		Matches:         []models.GrantMatch{},
	}

	return tele.WithDefaults(), nil
}

func (c *Collector) collectLanguages(ctx context.Context, owner, name string) (map[string]float64, error) {
	bytes, _, err := c.client.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, b := range bytes {
		total += b
	}
	shares := make(map[string]float64, len(bytes))
	if total == 0 {
		return shares, nil
	}
	for lang, b := range bytes {
		shares[lang] = float64(b) / float64(total) * 100
	}
	return shares, nil
}

// collectActivity counts commits over the last 30 days and records the most
// recent commit timestamp. Pagination stops after the window is covered.
func (c *Collector) collectActivity(ctx context.Context, owner, name string, now time.Time) (int, *time.Time, error) {
	since := now.Add(-30 * 24 * time.Hour)
	opts := &github.CommitsListOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	count := 0
	var last *time.Time
	for {
		commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			// Empty repositories answer 409.
			if resp != nil && resp.StatusCode == 409 {
				return 0, nil, nil
			}
			return count, last, err
		}

		count += len(commits)
		if last == nil && len(commits) > 0 {
			if date := commits[0].GetCommit().GetAuthor().GetDate(); !date.IsZero() {
				t := date.Time
				last = &t
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	// Nothing in the window: fall back to the latest commit overall so
	// recency scoring still has a timestamp.
	if last == nil {
		latest, _, err := c.client.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
			ListOptions: github.ListOptions{PerPage: 1},
		})
		if err == nil && len(latest) > 0 {
			if date := latest[0].GetCommit().GetAuthor().GetDate(); !date.IsZero() {
				t := date.Time
				last = &t
			}
		}
	}

	return count, last, nil
}

func (c *Collector) countClosedIssues(ctx context.Context, owner, name string) (int, error) {
	query := fmt.Sprintf("repo:%s/%s type:issue state:closed", owner, name)
	result, _, err := c.client.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, err
	}
	return result.GetTotal(), nil
}

// collectQualityNotes probes the repository tree for observable quality
// markers. Each probe failure just drops that note; notes are evidence, not
// requirements.
func (c *Collector) collectQualityNotes(ctx context.Context, owner, name string) []string {
	notes := []string{}

	if _, _, err := c.client.Repositories.GetReadme(ctx, owner, name, nil); err == nil {
		notes = append(notes, "has README")
	}

	_, contents, _, err := c.client.Repositories.GetContents(ctx, owner, name, "", nil)
	if err != nil {
		return notes
	}

	hasTests, hasCI, hasLicense := false, false, false
	for _, entry := range contents {
		lower := strings.ToLower(entry.GetName())
		switch {
		case strings.Contains(lower, "test") || strings.Contains(lower, "spec"):
			hasTests = true
		case lower == ".github":
			hasCI = true
		case strings.HasPrefix(lower, "license"):
			hasLicense = true
		}
	}
	if hasTests {
		notes = append(notes, "has tests")
	}
	if hasCI {
		notes = append(notes, "has CI configuration")
	}
	if hasLicense {
		notes = append(notes, "has LICENSE")
	}

	return notes
}

// qualityScore converts note evidence into a 0-100 score: a 40-point base
// for an accessible repository plus 15 per marker.
func qualityScore(notes []string) float64 {
	score := 40 + 15*float64(len(notes))
	if score > 100 {
		score = 100
	}
	if len(notes) == 0 {
		score = 30
	}
	return score
}

// grantFitSignals derives the free-text grant-fit labels the downstream
// scoring treats as upstream-provided.
func grantFitSignals(t *models.RepoTelemetry) []string {
	signals := []string{}
	if t.Activity.Commits30d >= 5 {
		signals = append(signals, "active development")
	}
	if t.Stars >= 100 {
		signals = append(signals, "established community")
	}
	for lang := range t.Languages {
		if strings.EqualFold(lang, "solidity") {
			signals = append(signals, "smart-contract codebase")
			break
		}
	}
	if len(t.Languages) >= 3 {
		signals = append(signals, "multi-language stack")
	}
	return signals
}
