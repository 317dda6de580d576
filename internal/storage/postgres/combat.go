package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

// CombatRepository persists at most one active combat state per campaign. The
// row's existence is the combat-is-active flag; ending a fight deletes the row.
type CombatRepository struct {
	db *pgxpool.Pool
}

// NewCombatRepository creates a CombatRepository backed by the given pool.
func NewCombatRepository(db *pgxpool.Pool) *CombatRepository {
	return &CombatRepository{db: db}
}

// Get retrieves the active combat state.
//
// Postcondition: Returns (nil, nil) when no combat is running.
func (r *CombatRepository) Get(ctx context.Context, campaignID string) (*combat.State, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT doc FROM combats WHERE campaign_id = $1`,
		campaignID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying combat state: %w", err)
	}
	var s combat.State
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("decoding combat state: %w", err)
	}
	return &s, nil
}

// Save upserts the campaign's combat state.
func (r *CombatRepository) Save(ctx context.Context, campaignID string, s *combat.State) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding combat state: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO combats (campaign_id, doc)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		campaignID, doc,
	)
	if err != nil {
		return fmt.Errorf("saving combat state: %w", err)
	}
	return nil
}

// Delete ends the campaign's combat. Deleting an absent state is a no-op.
func (r *CombatRepository) Delete(ctx context.Context, campaignID string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM combats WHERE campaign_id = $1`,
		campaignID,
	); err != nil {
		return fmt.Errorf("deleting combat state: %w", err)
	}
	return nil
}

// Exists reports whether the campaign has an active combat.
func (r *CombatRepository) Exists(ctx context.Context, campaignID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM combats WHERE campaign_id = $1)`,
		campaignID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking combat state: %w", err)
	}
	return exists, nil
}
