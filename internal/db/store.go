package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexmejias/repo-radar/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GrantListParams filters the grant catalog. Filtering is a browse-layer
// concern layered on top of the matcher, not part of matching itself.
type GrantListParams struct {
	Query     string
	Status    string // open | rolling | closed | all (default: non-closed)
	Ecosystem string
	Tag       string
	MinAmount float64
	MaxAmount float64
	Limit     int
	Offset    int
}

type GrantListResult struct {
	Grants []models.Grant `json:"grants"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

const grantCols = `id, name, organization, ecosystem, chains, tags, category,
	status, deadline, amount_min_usd, amount_max_usd, apply_url, created_at, updated_at`

// buildGrantFilter assembles the WHERE clause and args for ListGrants.
func buildGrantFilter(params GrantListParams) (string, []any) {
	where := "WHERE 1=1"
	var args []any
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR organization ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}

	switch params.Status {
	case "all":
		// No status filter.
	case "":
		where += " AND status <> 'closed'"
	default:
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}

	if params.Ecosystem != "" {
		where += fmt.Sprintf(" AND ecosystem = $%d", argIdx)
		args = append(args, params.Ecosystem)
		argIdx++
	}
	if params.Tag != "" {
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d)", argIdx)
		args = append(args, params.Tag)
		argIdx++
	}
	if params.MinAmount > 0 {
		where += fmt.Sprintf(" AND amount_max_usd >= $%d", argIdx)
		args = append(args, params.MinAmount)
		argIdx++
	}
	if params.MaxAmount > 0 {
		where += fmt.Sprintf(" AND amount_min_usd <= $%d", argIdx)
		args = append(args, params.MaxAmount)
		argIdx++
	}

	return where, args
}

func (s *Store) ListGrants(ctx context.Context, params GrantListParams) (*GrantListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildGrantFilter(params)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM grants "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("grant count failed: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM grants %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		grantCols, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grant list failed: %w", err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}

	return &GrantListResult{
		Grants: grants,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (s *Store) GetGrant(ctx context.Context, id string) (*models.Grant, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM grants WHERE id = $1", grantCols), id)
	g, err := scanGrant(row.Scan)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGrant(scan func(dest ...any) error) (models.Grant, error) {
	var g models.Grant
	err := scan(
		&g.ID, &g.Name, &g.Organization, &g.Ecosystem, &g.Chains, &g.Tags, &g.Category,
		&g.Status, &g.Deadline, &g.AmountMinUSD, &g.AmountMaxUSD, &g.ApplyURL, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

// UpsertGrants writes catalog entries, updating mutable fields on conflict.
func (s *Store) UpsertGrants(ctx context.Context, grants []models.Grant) (int, error) {
	count := 0
	for _, g := range grants {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO grants (
				id, name, organization, ecosystem, chains, tags, category,
				status, deadline, amount_min_usd, amount_max_usd, apply_url
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				updated_at = NOW(),
				name = EXCLUDED.name,
				organization = EXCLUDED.organization,
				ecosystem = EXCLUDED.ecosystem,
				chains = EXCLUDED.chains,
				tags = EXCLUDED.tags,
				category = EXCLUDED.category,
				status = EXCLUDED.status,
				deadline = EXCLUDED.deadline,
				amount_min_usd = EXCLUDED.amount_min_usd,
				amount_max_usd = EXCLUDED.amount_max_usd,
				apply_url = EXCLUDED.apply_url
		`, g.ID, g.Name, g.Organization, g.Ecosystem, g.Chains, g.Tags, g.Category,
			g.Status, g.Deadline, g.AmountMinUSD, g.AmountMaxUSD, g.ApplyURL)
		if err != nil {
			return count, fmt.Errorf("failed to upsert grant %s: %w", g.ID, err)
		}
		count++
	}
	return count, nil
}

// SaveCard persists an analysis result. The full card is stored as JSONB;
// the indexed columns exist only for listing and sorting.
func (s *Store) SaveCard(ctx context.Context, card models.OpportunityCard) error {
	payload, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO cards (id, project_name, project_url, overall_score, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, card.ID, card.ProjectName, card.ProjectURL, card.Scores.Overall, payload, card.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// CardSummary is the listing row for analysis history.
type CardSummary struct {
	ID          uuid.UUID `json:"id"`
	ProjectName string    `json:"project_name"`
	ProjectURL  string    `json:"project_url"`
	Overall     int       `json:"overall"`
	GeneratedAt string    `json:"generated_at"`
}

func (s *Store) ListCards(ctx context.Context, limit, offset int) ([]CardSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, project_name, project_url, overall_score, generated_at::text
		FROM cards ORDER BY generated_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("card list failed: %w", err)
	}
	defer rows.Close()

	cards := []CardSummary{}
	for rows.Next() {
		var c CardSummary
		if err := rows.Scan(&c.ID, &c.ProjectName, &c.ProjectURL, &c.Overall, &c.GeneratedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

var ErrNotFound = pgx.ErrNoRows

// GetCard loads a stored card and overlays completion state from the
// card_actions side table onto its next actions.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*models.OpportunityCard, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "SELECT payload FROM cards WHERE id = $1", id).Scan(&payload)
	if err != nil {
		return nil, err
	}

	var card models.OpportunityCard
	if err := json.Unmarshal(payload, &card); err != nil {
		return nil, fmt.Errorf("failed to decode card %s: %w", id, err)
	}

	states, err := s.ActionStates(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range card.NextActions {
		if done, ok := states[card.NextActions[i].ID]; ok {
			card.NextActions[i].Completed = done
		}
	}

	return &card, nil
}

// SetActionState records the completion toggle for one next action.
func (s *Store) SetActionState(ctx context.Context, cardID uuid.UUID, actionID string, completed bool) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO card_actions (card_id, action_id, completed)
		VALUES ($1, $2, $3)
		ON CONFLICT (card_id, action_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			updated_at = NOW()
	`, cardID, actionID, completed)
	if err != nil {
		return fmt.Errorf("failed to set action state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("action state not recorded for card %s", cardID)
	}
	return nil
}

// ActionStates returns the completion side table for one card.
func (s *Store) ActionStates(ctx context.Context, cardID uuid.UUID) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT action_id, completed FROM card_actions WHERE card_id = $1", cardID)
	if err != nil {
		return nil, fmt.Errorf("action state query failed: %w", err)
	}
	defer rows.Close()

	states := map[string]bool{}
	for rows.Next() {
		var actionID string
		var completed bool
		if err := rows.Scan(&actionID, &completed); err != nil {
			return nil, err
		}
		states[actionID] = completed
	}
	return states, nil
}
