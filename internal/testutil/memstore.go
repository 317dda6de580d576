package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

// MemStores is an in-memory implementation of the combat store contracts for
// unit tests that should not touch PostgreSQL. Values are deep-copied on every
// read and write so aliasing bugs in the engine surface as test failures, the
// same way a real store would expose them.
type MemStores struct {
	Characters *MemCharacterStore
	Templates  *MemTemplateStore
	Combats    *MemCombatStore
	Campaigns  *MemCampaignStore
}

// NewMemStores creates an empty store bundle.
func NewMemStores() *MemStores {
	return &MemStores{
		Characters: &MemCharacterStore{records: map[string]map[string]*character.Character{}},
		Templates:  &MemTemplateStore{records: map[string]map[string]*bestiary.Template{}},
		Combats:    &MemCombatStore{records: map[string]*combat.State{}},
		Campaigns:  &MemCampaignStore{records: map[string]*campaign.Campaign{}},
	}
}

func deepCopy[T any](v *T) *T {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: deep copy marshal: %v", err))
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("testutil: deep copy unmarshal: %v", err))
	}
	return out
}

// MemCharacterStore implements combat.CharacterStore, preserving creation
// order for the index.
type MemCharacterStore struct {
	mu      sync.Mutex
	records map[string]map[string]*character.Character
	order   map[string][]string
}

func (s *MemCharacterStore) Get(_ context.Context, campaignID, slug string) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.records[campaignID][slug]), nil
}

func (s *MemCharacterStore) Index(_ context.Context, campaignID string) ([]combat.CharacterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]combat.CharacterEntry, 0, len(s.order[campaignID]))
	for _, slug := range s.order[campaignID] {
		rec := s.records[campaignID][slug]
		entries = append(entries, combat.CharacterEntry{Slug: slug, Keywords: append([]string(nil), rec.Keywords...)})
	}
	return entries, nil
}

func (s *MemCharacterStore) Save(_ context.Context, campaignID string, c *character.Character) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[campaignID] == nil {
		s.records[campaignID] = map[string]*character.Character{}
	}
	if s.order == nil {
		s.order = map[string][]string{}
	}
	slug := c.Slug()
	if _, ok := s.records[campaignID][slug]; !ok {
		s.order[campaignID] = append(s.order[campaignID], slug)
	}
	s.records[campaignID][slug] = deepCopy(c)
	return nil
}

func (s *MemCharacterStore) Delete(_ context.Context, campaignID, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[campaignID], slug)
	order := s.order[campaignID]
	for i, key := range order {
		if key == slug {
			s.order[campaignID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return nil
}

// MemTemplateStore implements combat.TemplateStore, keyed by lowercased name.
type MemTemplateStore struct {
	mu      sync.Mutex
	records map[string]map[string]*bestiary.Template
	order   map[string][]string
}

func (s *MemTemplateStore) Get(_ context.Context, campaignID, name string) (*bestiary.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Lookups normalize the same way Save keys, matching the real store.
	return deepCopy(s.records[campaignID][bestiary.Key(name)]), nil
}

func (s *MemTemplateStore) List(_ context.Context, campaignID string) ([]*bestiary.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*bestiary.Template, 0, len(s.order[campaignID]))
	for _, name := range s.order[campaignID] {
		out = append(out, deepCopy(s.records[campaignID][name]))
	}
	return out, nil
}

func (s *MemTemplateStore) Save(_ context.Context, campaignID string, t *bestiary.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[campaignID] == nil {
		s.records[campaignID] = map[string]*bestiary.Template{}
	}
	if s.order == nil {
		s.order = map[string][]string{}
	}
	key := bestiary.Key(t.Name)
	if _, ok := s.records[campaignID][key]; !ok {
		s.order[campaignID] = append(s.order[campaignID], key)
	}
	s.records[campaignID][key] = deepCopy(t)
	return nil
}

// MemCombatStore implements combat.CombatStore.
type MemCombatStore struct {
	mu      sync.Mutex
	records map[string]*combat.State
}

func (s *MemCombatStore) Get(_ context.Context, campaignID string) (*combat.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.records[campaignID]), nil
}

func (s *MemCombatStore) Save(_ context.Context, campaignID string, state *combat.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[campaignID] = deepCopy(state)
	return nil
}

func (s *MemCombatStore) Delete(_ context.Context, campaignID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, campaignID)
	return nil
}

func (s *MemCombatStore) Exists(_ context.Context, campaignID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[campaignID]
	return ok, nil
}

// MemCampaignStore implements combat.CampaignStore.
type MemCampaignStore struct {
	mu      sync.Mutex
	records map[string]*campaign.Campaign
	order   []string
}

func (s *MemCampaignStore) Get(_ context.Context, id string) (*campaign.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.records[id]), nil
}

func (s *MemCampaignStore) List(_ context.Context) ([]campaign.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]campaign.Campaign, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *deepCopy(s.records[id]))
	}
	return out, nil
}

func (s *MemCampaignStore) Save(_ context.Context, c *campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.records[c.ID] = deepCopy(c)
	return nil
}

func (s *MemCampaignStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ScriptSource feeds a fixed sequence of values to dice and hit rolls for
// deterministic tests. Each Intn call consumes the next scripted value.
//
// Precondition: each scripted value must lie in [0, n) for the Intn call that
// consumes it; a hit roll of 40 is scripted as 39, a d4 roll of 3 as 2.
type ScriptSource struct {
	mu     sync.Mutex
	values []int
}

// Script creates a ScriptSource over the given values.
func Script(values ...int) *ScriptSource {
	return &ScriptSource{values: values}
}

// Intn returns the next scripted value.
func (s *ScriptSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		panic("testutil: ScriptSource exhausted")
	}
	v := s.values[0]
	s.values = s.values[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("testutil: scripted value %d out of range for Intn(%d)", v, n))
	}
	return v
}
