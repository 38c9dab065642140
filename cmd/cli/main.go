package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexmejias/repo-radar/internal/catalog"
	"github.com/alexmejias/repo-radar/internal/config"
	"github.com/alexmejias/repo-radar/internal/matching"
	"github.com/alexmejias/repo-radar/internal/models"
	"github.com/alexmejias/repo-radar/internal/scoring"
	"github.com/alexmejias/repo-radar/internal/telemetry"
)

var (
	telemetryFile string
	nicheID       string
	outputJSON    bool
	outputMD      bool
	scoringPath   string
)

var rootCmd = &cobra.Command{
	Use:   "repo-radar",
	Short: "Repo scoring and grant matching tool",
	Long: `repo-radar turns raw repository telemetry into an opportunity card:
normalized signals, four project scores, risk flags, next actions, and
ranked grant recommendations for web3 builders.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [owner/repo]",
	Short: "Analyze a repository and print its opportunity card",
	Long: `Collect telemetry for a GitHub repository (or load it from a JSON file
with --telemetry-file) and print the generated opportunity card.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var grantsCmd = &cobra.Command{
	Use:   "grants [niche]",
	Short: "Show ranked grant matches for a builder niche",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrants,
}

var nichesCmd = &cobra.Command{
	Use:   "niches",
	Short: "List known builder niches",
	RunE:  runNiches,
}

func init() {
	analyzeCmd.Flags().StringVar(&telemetryFile, "telemetry-file", "", "read telemetry from a JSON file instead of the GitHub API")
	analyzeCmd.Flags().StringVar(&nicheID, "niche", "", "builder niche to match grants against")
	analyzeCmd.Flags().BoolVar(&outputJSON, "json", false, "output the full card as JSON")
	analyzeCmd.Flags().BoolVar(&outputMD, "markdown", false, "output the card as markdown")
	analyzeCmd.Flags().StringVar(&scoringPath, "config", "", "scoring config file (YAML)")

	grantsCmd.Flags().BoolVar(&outputJSON, "json", false, "output matches as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(grantsCmd)
	rootCmd.AddCommand(nichesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()

	scoringCfg := scoring.DefaultConfig()
	if scoringPath != "" {
		var err error
		scoringCfg, err = scoring.LoadConfig(scoringPath)
		if err != nil {
			return err
		}
	}

	t, err := loadTelemetry(cmd.Context(), args, now)
	if err != nil {
		return err
	}

	if nicheID != "" {
		niche, ok := matching.NicheByID(nicheID)
		if !ok {
			return fmt.Errorf("unknown niche %q (try `repo-radar niches`)", nicheID)
		}
		grants, err := openSeedGrants()
		if err != nil {
			return err
		}
		for _, r := range matching.MatchGrantsForNiche(niche, grants) {
			confidence := float64(r.Score) * 10
			if confidence > 100 {
				confidence = 100
			}
			t.GrantFit.Matches = append(t.GrantFit.Matches, models.GrantMatch{
				GrantID:    r.Grant.ID,
				Program:    r.Grant.Name,
				Ecosystem:  r.Grant.Ecosystem,
				Confidence: confidence,
				Reasons:    r.Reasons,
				ApplyURL:   r.Grant.ApplyURL,
			})
		}
	}

	card := scoring.GenerateOpportunityCard(t, scoringCfg, now)

	switch {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(card)
	case outputMD:
		fmt.Print(scoring.ExportMarkdown(card))
		return nil
	default:
		renderCard(card)
		return nil
	}
}

func loadTelemetry(ctx context.Context, args []string, now time.Time) (*models.RepoTelemetry, error) {
	if telemetryFile != "" {
		data, err := os.ReadFile(telemetryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read telemetry file: %w", err)
		}
		var t models.RepoTelemetry
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("invalid telemetry JSON: %w", err)
		}
		return &t, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("repo argument required unless --telemetry-file is set")
	}
	owner, name, err := telemetry.ParseRepoRef(args[0])
	if err != nil {
		return nil, err
	}

	cfg := config.Load()
	collector := telemetry.NewCollector(cfg.GitHubToken, zap.NewNop())
	return collector.Collect(ctx, owner, name, now)
}

func openSeedGrants() ([]models.Grant, error) {
	seed, err := catalog.LoadSeed()
	if err != nil {
		return nil, err
	}
	open := make([]models.Grant, 0, len(seed))
	for _, g := range seed {
		if g.Status != models.GrantStatusClosed {
			open = append(open, g)
		}
	}
	return open, nil
}

func renderCard(card models.OpportunityCard) {
	fmt.Printf("\n%s\n%s\n\n%s\n\n", card.ProjectName, card.ProjectURL, card.Summary)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Scores")
	t.AppendHeader(table.Row{"Score", "Value"})
	t.AppendRow(table.Row{"Grant fit", card.Scores.GrantFit.Score})
	t.AppendRow(table.Row{"Capital readiness", card.Scores.CapitalReadiness.Score})
	t.AppendRow(table.Row{"Ecosystem alignment", card.Scores.EcosystemAlignment.Score})
	t.AppendRow(table.Row{"Engagement ease", card.Scores.EngagementEase.Score})
	t.AppendFooter(table.Row{"Overall", card.Scores.Overall})
	t.Render()

	if len(card.GrantRecommendations) > 0 {
		m := table.NewWriter()
		m.SetOutputMirror(os.Stdout)
		m.SetTitle("Grant matches")
		m.AppendHeader(table.Row{"Program", "Ecosystem", "Confidence"})
		for _, g := range card.GrantRecommendations {
			m.AppendRow(table.Row{g.ProgramName, g.Ecosystem, fmt.Sprintf("%d%%", g.Confidence)})
		}
		m.Render()
	}

	if len(card.NextActions) > 0 {
		fmt.Println("\nNext actions:")
		for i, a := range card.NextActions {
			fmt.Printf("  %d. [%s] %s\n", i+1, a.Priority, a.Action)
		}
	}

	if len(card.RiskFlags) > 0 {
		fmt.Println("\nRisks:")
		for _, r := range card.RiskFlags {
			fmt.Printf("  - [%s] %s\n", r.Type, r.Message)
		}
	}
	fmt.Println()
}

func runGrants(cmd *cobra.Command, args []string) error {
	niche, ok := matching.NicheByID(args[0])
	if !ok {
		return fmt.Errorf("unknown niche %q (try `repo-radar niches`)", args[0])
	}

	grants, err := openSeedGrants()
	if err != nil {
		return err
	}
	ranked := matching.MatchGrantsForNiche(niche, grants)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Grants for %s", niche.Name))
	t.AppendHeader(table.Row{"Score", "Program", "Ecosystem", "Status", "Why"})
	for _, r := range ranked {
		why := ""
		if len(r.Reasons) > 0 {
			why = r.Reasons[0]
		}
		t.AppendRow(table.Row{r.Score, r.Grant.Name, r.Grant.Ecosystem, r.Grant.Status, why})
	}
	t.Render()
	return nil
}

func runNiches(cmd *cobra.Command, args []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Description"})
	for _, n := range matching.Niches() {
		t.AppendRow(table.Row{n.ID, n.Name, n.Description})
	}
	t.Render()
	return nil
}
