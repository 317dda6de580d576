package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
)

// BestiaryRepository persists creature templates as JSONB documents keyed by
// campaign and lowercased template name.
type BestiaryRepository struct {
	db *pgxpool.Pool
}

// NewBestiaryRepository creates a BestiaryRepository backed by the given pool.
func NewBestiaryRepository(db *pgxpool.Pool) *BestiaryRepository {
	return &BestiaryRepository{db: db}
}

// Get retrieves a template by its canonical key.
//
// Postcondition: Returns (nil, nil) when no template exists.
func (r *BestiaryRepository) Get(ctx context.Context, campaignID, name string) (*bestiary.Template, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT doc FROM bestiary WHERE campaign_id = $1 AND key = $2`,
		campaignID, bestiary.Key(name),
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	var t bestiary.Template
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decoding template %q: %w", name, err)
	}
	return &t, nil
}

// List returns every template in the campaign's bestiary, oldest first.
func (r *BestiaryRepository) List(ctx context.Context, campaignID string) ([]*bestiary.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT doc FROM bestiary WHERE campaign_id = $1 ORDER BY id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*bestiary.Template, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		var t bestiary.Template
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decoding template: %w", err)
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// Save upserts a template under its canonical key.
//
// Precondition: t must pass Validate.
func (r *BestiaryRepository) Save(ctx context.Context, campaignID string, t *bestiary.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding template %q: %w", t.Name, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO bestiary (campaign_id, key, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, key)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		campaignID, bestiary.Key(t.Name), doc,
	)
	if err != nil {
		return fmt.Errorf("saving template %q: %w", t.Name, err)
	}
	return nil
}
