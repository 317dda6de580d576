// Package combat implements turnless combat resolution: attack, spawn,
// removal, and healing against a per-campaign participant roster.
package combat

import (
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/narrative"
)

// Participant is one combatant's transient in-combat record.
//
// Invariant: 0 <= Health <= MaxHealth; 0 <= HitChance <= 100; Team is non-empty.
type Participant struct {
	Name      string `json:"name"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"max_health"`
	HitChance int    `json:"hit_chance"`
	Team      string `json:"team"`
	// Template names the bestiary entry this participant was spawned from,
	// empty for participants backed by a character record.
	Template string `json:"template,omitempty"`
}

// Wound returns the participant's narrative wound state.
func (p *Participant) Wound() narrative.WoundState {
	return narrative.WoundFor(p.Health, p.MaxHealth)
}

// State is the full combat roster for one campaign. It exists only while a
// fight is active; ended combats are deleted, not archived.
//
// Invariant: Order holds exactly the keys of Participants, in join order.
type State struct {
	Participants map[string]*Participant `json:"participants"`
	Order        []string                `json:"order"`
}

// NewState returns an empty roster.
func NewState() *State {
	return &State{Participants: map[string]*Participant{}}
}

// Get returns the participant whose name slugifies identically to name.
func (s *State) Get(name string) (*Participant, bool) {
	slug := character.Slugify(name)
	for _, key := range s.Order {
		if character.Slugify(key) == slug {
			return s.Participants[key], true
		}
	}
	return nil, false
}

// Add appends a participant to the roster. A participant whose slug is
// already present replaces the existing entry in place, so Order always holds
// exactly the keys of Participants.
func (s *State) Add(p *Participant) {
	if s.Participants == nil {
		s.Participants = map[string]*Participant{}
	}
	slug := character.Slugify(p.Name)
	for _, key := range s.Order {
		if character.Slugify(key) == slug {
			s.Participants[key] = p
			return
		}
	}
	s.Participants[p.Name] = p
	s.Order = append(s.Order, p.Name)
}

// Remove deletes the participant matched by slug, preserving join order of the
// rest. Removing an absent name is a no-op.
func (s *State) Remove(name string) {
	slug := character.Slugify(name)
	for i, key := range s.Order {
		if character.Slugify(key) == slug {
			delete(s.Participants, key)
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			return
		}
	}
}

// All returns the participants in join order.
func (s *State) All() []*Participant {
	out := make([]*Participant, 0, len(s.Order))
	for _, key := range s.Order {
		out = append(out, s.Participants[key])
	}
	return out
}

// TeamCount returns the number of distinct team values on the roster.
func (s *State) TeamCount() int {
	teams := map[string]struct{}{}
	for _, p := range s.Participants {
		teams[p.Team] = struct{}{}
	}
	return len(teams)
}

// Over reports whether the fight has resolved: one side (or nobody) remains.
func (s *State) Over() bool {
	return s.TeamCount() <= 1
}
