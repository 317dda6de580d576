// Package bestiary provides reusable creature templates from which combat
// instances are spawned.
package bestiary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tavernkeep/tavernkeep/internal/game/dice"
)

// ThreatLevel is the ordered danger vocabulary for creature templates. Each
// level maps to a fixed hit-chance percentage.
type ThreatLevel string

const (
	ThreatNone         ThreatLevel = "none"
	ThreatNegligible   ThreatLevel = "negligible"
	ThreatLow          ThreatLevel = "low"
	ThreatModerate     ThreatLevel = "moderate"
	ThreatHigh         ThreatLevel = "high"
	ThreatDeadly       ThreatLevel = "deadly"
	ThreatCertainDeath ThreatLevel = "certain_death"
)

// hitChanceByThreat is the fixed threat-level to hit-chance table.
var hitChanceByThreat = map[ThreatLevel]int{
	ThreatNone:         10,
	ThreatNegligible:   25,
	ThreatLow:          35,
	ThreatModerate:     50,
	ThreatHigh:         65,
	ThreatDeadly:       80,
	ThreatCertainDeath: 95,
}

// ThreatLevels lists the vocabulary in ascending danger order.
func ThreatLevels() []ThreatLevel {
	return []ThreatLevel{
		ThreatNone, ThreatNegligible, ThreatLow, ThreatModerate,
		ThreatHigh, ThreatDeadly, ThreatCertainDeath,
	}
}

// Valid reports whether t is part of the vocabulary.
func (t ThreatLevel) Valid() bool {
	_, ok := hitChanceByThreat[t]
	return ok
}

// HitChance returns the fixed hit-chance percentage for the threat level.
//
// Precondition: t must be Valid.
func (t ThreatLevel) HitChance() int {
	chance, ok := hitChanceByThreat[t]
	if !ok {
		panic(fmt.Sprintf("bestiary: HitChance on invalid threat level %q", t))
	}
	return chance
}

// Template is a bestiary entry: a creature archetype with a health-roll
// formula (rolled fresh per spawn, never a fixed number) and a weapon map.
type Template struct {
	Name        string      `json:"name" yaml:"name"`
	ThreatLevel ThreatLevel `json:"threat_level" yaml:"threat_level"`
	// HP is the dice formula rolled for health at spawn time.
	HP string `json:"hp" yaml:"hp"`
	// Weapons maps attack names to damage formulas.
	Weapons map[string]string `json:"weapons" yaml:"weapons"`
}

// Validate checks the template's invariants. Performed at the store boundary.
//
// Postcondition: Returns nil iff the name is non-empty, the threat level is in
// the vocabulary, and the HP formula parses.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("bestiary template: name must not be empty")
	}
	if !t.ThreatLevel.Valid() {
		return fmt.Errorf("bestiary template %q: unknown threat level %q", t.Name, t.ThreatLevel)
	}
	if _, err := dice.Parse(t.HP); err != nil {
		return fmt.Errorf("bestiary template %q: hp formula: %w", t.Name, err)
	}
	return nil
}

// WeaponNames returns the template's attack names sorted for stable output.
func (t *Template) WeaponNames() []string {
	names := make([]string, 0, len(t.Weapons))
	for name := range t.Weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Key converts a template name to its canonical store key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindWeapon looks up a weapon formula by case-insensitive attack name.
func (t *Template) FindWeapon(name string) (string, bool) {
	if formula, ok := t.Weapons[name]; ok {
		return formula, true
	}
	for key, formula := range t.Weapons {
		if strings.EqualFold(key, name) {
			return formula, true
		}
	}
	return "", false
}
