// Package campaign defines the campaign record that scopes all other state.
package campaign

import (
	"fmt"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
)

// Campaign is a persistent campaign record.
//
// PlayerName designates the campaign's player character; combat treats that
// character's death specially (the record survives, the fight ends).
type Campaign struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PlayerName string `json:"player_name"`
}

// New builds a Campaign with a derived slug.
//
// Precondition: id and name must be non-empty.
func New(id, name, playerName string) Campaign {
	return Campaign{
		ID:         id,
		Name:       name,
		Slug:       character.Slugify(name),
		PlayerName: playerName,
	}
}

// Validate checks the record's invariants at the store boundary.
func (c *Campaign) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("campaign: id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("campaign %s: name must not be empty", c.ID)
	}
	if c.Slug == "" {
		return fmt.Errorf("campaign %s: slug must not be empty", c.ID)
	}
	return nil
}

// IsPlayer reports whether the named character is the campaign's designated
// player, compared by normalized name.
func (c *Campaign) IsPlayer(name string) bool {
	return c.PlayerName != "" && character.Slugify(c.PlayerName) == character.Slugify(name)
}
