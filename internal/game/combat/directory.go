package combat

import (
	"context"
	"strings"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// Directory resolves free-text names to character records and bestiary
// templates.
type Directory struct {
	characters CharacterStore
	templates  TemplateStore
}

// NewDirectory creates a Directory over the given stores.
func NewDirectory(characters CharacterStore, templates TemplateStore) *Directory {
	return &Directory{characters: characters, templates: templates}
}

// Character resolves text to a character record: first by slug, then by a
// case-insensitive scan of each record's keyword list in index order. The
// first matching record wins, so two characters sharing a keyword resolve
// deterministically to the older one.
//
// Postcondition: Returns (nil, nil) when nothing matches. Only store failures
// are errors.
func (d *Directory) Character(ctx context.Context, campaignID, text string) (*character.Character, error) {
	slug := character.Slugify(text)
	if slug != "" {
		c, err := d.characters.Get(ctx, campaignID, slug)
		if err != nil {
			return nil, gameerr.Wrap(err, "looking up character %q", text)
		}
		if c != nil {
			return c, nil
		}
	}

	entries, err := d.characters.Index(ctx, campaignID)
	if err != nil {
		return nil, gameerr.Wrap(err, "listing characters for %q", text)
	}
	for _, entry := range entries {
		for _, keyword := range entry.Keywords {
			if strings.EqualFold(keyword, text) {
				c, err := d.characters.Get(ctx, campaignID, entry.Slug)
				if err != nil {
					return nil, gameerr.Wrap(err, "loading character %q", entry.Slug)
				}
				return c, nil
			}
		}
	}
	return nil, nil
}

// Template resolves text to a bestiary template by case-insensitive name.
//
// Postcondition: Returns (nil, nil) when nothing matches.
func (d *Directory) Template(ctx context.Context, campaignID, text string) (*bestiary.Template, error) {
	t, err := d.templates.Get(ctx, campaignID, bestiary.Key(text))
	if err != nil {
		return nil, gameerr.Wrap(err, "looking up template %q", text)
	}
	return t, nil
}
