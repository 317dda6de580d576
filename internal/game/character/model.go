// Package character defines the persistent character record: a player or
// non-player entity with health, lookup keywords, and an inventory.
package character

import (
	"fmt"
	"regexp"
	"strings"
)

// Item is a single inventory entry.
type Item struct {
	Description string `json:"description" yaml:"description"`
	Source      string `json:"source" yaml:"source"`
	// Weapon marks the item as usable in combat. A weapon item must carry a
	// damage formula.
	Weapon bool   `json:"weapon" yaml:"weapon"`
	Damage string `json:"damage,omitempty" yaml:"damage,omitempty"`
	// Container names another item this one is stored in, if any.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`
}

// Inventory holds a character's money and items.
//
// Invariant: Money >= 0.
type Inventory struct {
	Money int             `json:"money" yaml:"money"`
	Items map[string]Item `json:"items" yaml:"items"`
}

// Character is a persistent character record.
//
// Invariant: 0 <= Health <= MaxHealth; 0 <= HitChance <= 100.
type Character struct {
	Name string `json:"name" yaml:"name"`
	// Keywords are aliases used for fuzzy lookup ("bandit", "the stranger").
	Keywords    []string  `json:"keywords" yaml:"keywords"`
	Description string    `json:"description" yaml:"description"`
	Health      int       `json:"health" yaml:"health"`
	MaxHealth   int       `json:"max_health" yaml:"max_health"`
	HitChance   int       `json:"hit_chance" yaml:"hit_chance"`
	Inventory   Inventory `json:"inventory" yaml:"inventory"`
}

// Validate checks the record's invariants. Performed at the store boundary so
// the engine can rely on well-formed records throughout.
func (c *Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("character: name must not be empty")
	}
	if c.MaxHealth < 1 {
		return fmt.Errorf("character %q: max_health must be >= 1", c.Name)
	}
	if c.Health < 0 || c.Health > c.MaxHealth {
		return fmt.Errorf("character %q: health %d outside [0, %d]", c.Name, c.Health, c.MaxHealth)
	}
	if c.HitChance < 0 || c.HitChance > 100 {
		return fmt.Errorf("character %q: hit_chance %d outside [0, 100]", c.Name, c.HitChance)
	}
	if c.Inventory.Money < 0 {
		return fmt.Errorf("character %q: money must not be negative", c.Name)
	}
	for name, item := range c.Inventory.Items {
		if item.Weapon && item.Damage == "" {
			return fmt.Errorf("character %q: item %q is a weapon without a damage formula", c.Name, name)
		}
	}
	return nil
}

// Slug returns the character's canonical store key.
func (c *Character) Slug() string { return Slugify(c.Name) }

// HasKeyword reports whether the character carries the keyword, case-insensitively.
func (c *Character) HasKeyword(keyword string) bool {
	for _, k := range c.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

// SetHealth clamps health into [0, MaxHealth] and stores it.
//
// Postcondition: 0 <= c.Health <= c.MaxHealth.
func (c *Character) SetHealth(health int) {
	if health < 0 {
		health = 0
	}
	if health > c.MaxHealth {
		health = c.MaxHealth
	}
	c.Health = health
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	slugTrim     = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts free text to the canonical lookup key: lowered, stripped of
// punctuation, with runs of whitespace/underscores/hyphens collapsed to one
// hyphen.
//
// Postcondition: Slugify is idempotent.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = slugTrim.ReplaceAllString(s, "")
	return s
}
