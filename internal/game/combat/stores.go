package combat

import (
	"context"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
)

// CharacterEntry is one row of the character index used for keyword lookup.
type CharacterEntry struct {
	Slug     string
	Keywords []string
}

// CharacterStore persists character records, keyed by campaign and slug.
//
// Get returns (nil, nil) for an absent record; only I/O failures are errors.
type CharacterStore interface {
	Get(ctx context.Context, campaignID, slug string) (*character.Character, error)
	// Index lists all records in creation order, oldest first. Lookup by
	// keyword depends on this order for deterministic ties.
	Index(ctx context.Context, campaignID string) ([]CharacterEntry, error)
	Save(ctx context.Context, campaignID string, c *character.Character) error
	Delete(ctx context.Context, campaignID, slug string) error
}

// TemplateStore persists bestiary templates, keyed by campaign and lowercased
// template name.
//
// Get returns (nil, nil) for an absent template.
type TemplateStore interface {
	Get(ctx context.Context, campaignID, name string) (*bestiary.Template, error)
	List(ctx context.Context, campaignID string) ([]*bestiary.Template, error)
	Save(ctx context.Context, campaignID string, t *bestiary.Template) error
}

// CombatStore persists at most one combat State per campaign.
//
// Get returns (nil, nil) when no combat is active.
type CombatStore interface {
	Get(ctx context.Context, campaignID string) (*State, error)
	Save(ctx context.Context, campaignID string, s *State) error
	Delete(ctx context.Context, campaignID string) error
	Exists(ctx context.Context, campaignID string) (bool, error)
}

// CampaignStore persists campaign records.
//
// Get returns (nil, nil) for an unknown campaign.
type CampaignStore interface {
	Get(ctx context.Context, id string) (*campaign.Campaign, error)
	List(ctx context.Context) ([]campaign.Campaign, error)
	Save(ctx context.Context, c *campaign.Campaign) error
	Delete(ctx context.Context, id string) error
}
