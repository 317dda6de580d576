package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

// CharacterRepository persists character records as JSONB documents keyed by
// campaign and slug. Row insertion order backs the keyword-lookup contract:
// the index is always returned oldest record first.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Get retrieves a character by slug.
//
// Postcondition: Returns (nil, nil) when no record exists.
func (r *CharacterRepository) Get(ctx context.Context, campaignID, slug string) (*character.Character, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT doc FROM characters WHERE campaign_id = $1 AND slug = $2`,
		campaignID, slug,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying character: %w", err)
	}
	var c character.Character
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", slug, err)
	}
	return &c, nil
}

// Index lists every character's slug and keywords in creation order.
func (r *CharacterRepository) Index(ctx context.Context, campaignID string) ([]combat.CharacterEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slug, doc FROM characters WHERE campaign_id = $1 ORDER BY id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	entries := make([]combat.CharacterEntry, 0)
	for rows.Next() {
		var (
			slug string
			doc  []byte
		)
		if err := rows.Scan(&slug, &doc); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		var c character.Character
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decoding character %q: %w", slug, err)
		}
		entries = append(entries, combat.CharacterEntry{Slug: slug, Keywords: c.Keywords})
	}
	return entries, rows.Err()
}

// Save upserts a character under its derived slug.
//
// Precondition: c must pass Validate.
func (r *CharacterRepository) Save(ctx context.Context, campaignID string, c *character.Character) error {
	if err := c.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO characters (campaign_id, slug, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, slug)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		campaignID, c.Slug(), doc,
	)
	if err != nil {
		return fmt.Errorf("saving character %q: %w", c.Name, err)
	}
	return nil
}

// Delete removes a character record. Deleting an absent slug is a no-op.
func (r *CharacterRepository) Delete(ctx context.Context, campaignID, slug string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM characters WHERE campaign_id = $1 AND slug = $2`,
		campaignID, slug,
	); err != nil {
		return fmt.Errorf("deleting character %q: %w", slug, err)
	}
	return nil
}
