package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
)

// ErrCampaignExists is returned when creating a campaign whose id is taken.
var ErrCampaignExists = errors.New("campaign already exists")

// CampaignRepository persists campaign records. A campaign row owns all of the
// campaign's characters, bestiary entries, and combat state via cascade.
type CampaignRepository struct {
	db *pgxpool.Pool
}

// NewCampaignRepository creates a CampaignRepository backed by the given pool.
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Get retrieves a campaign by id.
//
// Postcondition: Returns (nil, nil) when no campaign exists.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, player_name FROM campaigns WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.PlayerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying campaign: %w", err)
	}
	return &c, nil
}

// List returns all campaigns, oldest first.
func (r *CampaignRepository) List(ctx context.Context) ([]campaign.Campaign, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, slug, player_name FROM campaigns ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]campaign.Campaign, 0)
	for rows.Next() {
		var c campaign.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.PlayerName); err != nil {
			return nil, fmt.Errorf("scanning campaign row: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Save upserts a campaign.
//
// Precondition: c must pass Validate.
func (r *CampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO campaigns (id, name, slug, player_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
		              player_name = EXCLUDED.player_name, updated_at = NOW()`,
		c.ID, c.Name, c.Slug, c.PlayerName,
	)
	if err != nil {
		return fmt.Errorf("saving campaign %q: %w", c.ID, err)
	}
	return nil
}

// Create inserts a campaign, failing on a duplicate id.
//
// Postcondition: Returns ErrCampaignExists when the id is already taken.
func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO campaigns (id, name, slug, player_name) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Slug, c.PlayerName,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrCampaignExists
		}
		return fmt.Errorf("inserting campaign %q: %w", c.ID, err)
	}
	return nil
}

// Delete removes a campaign and, via cascade, everything it owns.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM campaigns WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("deleting campaign %q: %w", id, err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
