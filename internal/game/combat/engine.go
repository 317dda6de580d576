package combat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/dice"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
	"github.com/tavernkeep/tavernkeep/internal/game/narrative"
)

// hitLocations is the uniform pool a successful strike lands in.
var hitLocations = []string{"head", "chest", "arm", "leg"}

// Snapshot is one participant's externally visible state at a point in time.
type Snapshot struct {
	Name      string `json:"name"`
	Team      string `json:"team"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"max_health"`
	HitChance int    `json:"hit_chance"`
	Template  string `json:"template,omitempty"`
	Condition string `json:"condition"`
}

// Result is the outcome of a combat operation: a narration transcript plus
// structured roster snapshots from before and after the mutation.
type Result struct {
	Lines  []string   `json:"lines"`
	Before []Snapshot `json:"before"`
	After  []Snapshot `json:"after"`
	// Ended reports that this operation terminated the combat.
	Ended bool `json:"ended"`
	// Active reports whether a combat exists after the operation.
	Active bool `json:"active"`
}

// Transcript joins the narration lines for display.
func (r *Result) Transcript() string { return strings.Join(r.Lines, "\n") }

// Engine executes combat operations against persistent stores.
//
// Invariant: all operations on the same campaign are serialized by a
// per-campaign mutex, so concurrent tool calls never interleave roster
// mutations.
type Engine struct {
	characters CharacterStore
	templates  TemplateStore
	combats    CombatStore
	campaigns  CampaignStore
	directory  *Directory
	roller     *dice.Roller
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an Engine over the given stores.
//
// Precondition: all stores, roller, and logger must be non-nil.
func NewEngine(characters CharacterStore, templates TemplateStore, combats CombatStore,
	campaigns CampaignStore, roller *dice.Roller, logger *zap.Logger) *Engine {
	return &Engine{
		characters: characters,
		templates:  templates,
		combats:    combats,
		campaigns:  campaigns,
		directory:  NewDirectory(characters, templates),
		roller:     roller,
		logger:     logger,
		locks:      map[string]*sync.Mutex{},
	}
}

// lockCampaign acquires the campaign's mutex, creating it on first use.
func (e *Engine) lockCampaign(campaignID string) func() {
	e.mu.Lock()
	m, ok := e.locks[campaignID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[campaignID] = m
	}
	e.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (e *Engine) loadCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	camp, err := e.campaigns.Get(ctx, id)
	if err != nil {
		return nil, gameerr.Wrap(err, "loading campaign %q", id)
	}
	if camp == nil {
		return nil, gameerr.New(gameerr.KindInvalidArgument, "Campaign not found: %s.", id)
	}
	return camp, nil
}

func (e *Engine) loadState(ctx context.Context, campaignID string) (*State, error) {
	state, err := e.combats.Get(ctx, campaignID)
	if err != nil {
		return nil, gameerr.Wrap(err, "loading combat state for campaign %q", campaignID)
	}
	return state, nil
}

// combatant is a resolved attack party: its roster entry (nil until it joins),
// its character record (nil for spawned creatures), and the template backing a
// spawned creature's weapons.
type combatant struct {
	name     string
	entry    *Participant
	record   *character.Character
	template *bestiary.Template
}

// resolve finds a combatant by name: an active roster entry first, then a
// character record. A bestiary template alone does not resolve; creatures must
// be spawned before they can fight or be fought.
func (e *Engine) resolve(ctx context.Context, campaignID string, state *State, text string) (*combatant, error) {
	if p, ok := state.Get(text); ok {
		c := &combatant{name: p.Name, entry: p}
		rec, err := e.characters.Get(ctx, campaignID, character.Slugify(p.Name))
		if err != nil {
			return nil, gameerr.Wrap(err, "loading record for %q", p.Name)
		}
		c.record = rec
		if p.Template != "" {
			tmpl, err := e.directory.Template(ctx, campaignID, p.Template)
			if err != nil {
				return nil, err
			}
			c.template = tmpl
		}
		return c, nil
	}

	rec, err := e.directory.Character(ctx, campaignID, text)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return &combatant{name: rec.Name, record: rec}, nil
	}

	tmpl, err := e.directory.Template(ctx, campaignID, text)
	if err != nil {
		return nil, err
	}
	if tmpl != nil {
		return nil, gameerr.New(gameerr.KindParticipantNotFound,
			"%s is a creature type, not a combatant. Spawn one into combat first.", tmpl.Name)
	}
	return nil, gameerr.New(gameerr.KindParticipantNotFound, "No combatant named %q was found.", text)
}

// join materializes a resolved character into the roster. No-op when already
// present.
func (s *State) join(c *combatant, team string) {
	if c.entry != nil {
		return
	}
	if team == "" {
		team = c.record.Name
	}
	p := &Participant{
		Name:      c.record.Name,
		Health:    c.record.Health,
		MaxHealth: c.record.MaxHealth,
		HitChance: c.record.HitChance,
		Team:      team,
	}
	s.Add(p)
	c.entry = p
}

// AttackParams names the parties of an attack. Team, when set, reassigns the
// attacker's team before resolution.
type AttackParams struct {
	CampaignID string
	Attacker   string
	Target     string
	Weapon     string
	Team       string
}

// Attack resolves a single swing: hit roll against the attacker's hit chance,
// damage against the weapon's formula, narration against the damage intensity
// and the target's resulting wound state.
//
// Postcondition: A returned error implies no persisted mutation. Target death
// removes the roster entry and deletes the character record unless it is the
// campaign's player; a player death or a roster reduced to one team ends the
// combat.
func (e *Engine) Attack(ctx context.Context, p AttackParams) (*Result, error) {
	camp, err := e.loadCampaign(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	unlock := e.lockCampaign(p.CampaignID)
	defer unlock()

	state, err := e.loadState(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState()
	}
	before := snapshotAll(state)

	attacker, err := e.resolve(ctx, p.CampaignID, state, p.Attacker)
	if err != nil {
		return nil, err
	}
	target, err := e.resolve(ctx, p.CampaignID, state, p.Target)
	if err != nil {
		return nil, err
	}
	// Self-attack is decided on resolved identities, so a character aliased
	// by one of its own keywords never joins the roster twice.
	self := character.Slugify(attacker.name) == character.Slugify(target.name)
	if self {
		target = attacker
	}

	// Validate the weapon before anyone joins, so a bad weapon name leaves
	// the roster untouched.
	weapon, err := ResolveWeapon(attacker.record, attacker.template, p.Weapon)
	if err != nil {
		return nil, err
	}

	state.join(attacker, p.Team)
	if p.Team != "" {
		attacker.entry.Team = p.Team
	}
	if !self {
		state.join(target, "")
	}

	result := &Result{Before: before, Active: true}
	if self {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s attacks themself with %s.", attacker.name, weapon.Name))
	} else {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s attacks %s with %s.", attacker.name, target.name, weapon.Name))
		if attacker.entry.Team == target.entry.Team {
			attacker.entry.Team = attacker.entry.Name
			result.Lines = append(result.Lines,
				fmt.Sprintf("%s betrays %s, turning against their former allies!", attacker.name, target.name))
		}
	}

	roll := e.roller.Source().Intn(100) + 1
	hit := roll <= attacker.entry.HitChance
	e.logger.Debug("attack roll",
		zap.String("campaign", p.CampaignID),
		zap.String("attacker", attacker.name),
		zap.String("target", target.name),
		zap.Int("roll", roll),
		zap.Int("hit_chance", attacker.entry.HitChance),
		zap.Bool("hit", hit),
	)

	if !hit {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s dodges the attack.", target.name),
			fmt.Sprintf("%s is %s.", target.name, target.entry.Wound()))
		if err := e.combats.Save(ctx, p.CampaignID, state); err != nil {
			return nil, gameerr.Wrap(err, "saving combat state for campaign %q", p.CampaignID)
		}
		result.After = snapshotAll(state)
		return result, nil
	}

	damage := e.roller.Evaluate(weapon.Formula)
	intensity := narrative.IntensityFor(damage, dice.MaxValue(weapon.Formula))
	location := hitLocations[e.roller.Source().Intn(len(hitLocations))]
	result.Lines = append(result.Lines,
		fmt.Sprintf("The %s %s. %s is hit in the %s.", weapon.Name, intensity.DamagePhrase(), target.name, location))

	target.entry.Health -= damage
	if target.entry.Health < 0 {
		target.entry.Health = 0
	}
	if target.record != nil {
		target.record.SetHealth(target.entry.Health)
		if err := e.characters.Save(ctx, p.CampaignID, target.record); err != nil {
			return nil, gameerr.Wrap(err, "saving character %q", target.record.Name)
		}
	}

	if target.entry.Health == 0 {
		result.Lines = append(result.Lines, fmt.Sprintf("%s has been slain!", target.name))
		ended, err := e.fell(ctx, p.CampaignID, camp, state, target, true)
		if err != nil {
			return nil, err
		}
		if ended {
			result.Lines = append(result.Lines, "Combat has ended!")
			result.Ended = true
			result.Active = false
		}
		result.After = snapshotAll(state)
		return result, nil
	}

	result.Lines = append(result.Lines, fmt.Sprintf("%s is %s.", target.name, target.entry.Wound()))
	if err := e.combats.Save(ctx, p.CampaignID, state); err != nil {
		return nil, gameerr.Wrap(err, "saving combat state for campaign %q", p.CampaignID)
	}
	result.After = snapshotAll(state)
	return result, nil
}

// fell removes a downed or departing combatant and settles the aftermath:
// record deletion for slain non-players, then the end-of-combat check. When
// deleteRecord is false the record survives with its synced health.
//
// Postcondition: Returns true iff the combat ended; the state is persisted or
// deleted accordingly.
func (e *Engine) fell(ctx context.Context, campaignID string, camp *campaign.Campaign,
	state *State, c *combatant, deleteRecord bool) (bool, error) {
	isPlayer := camp.IsPlayer(c.name) || (c.record != nil && c.record.HasKeyword("player"))
	state.Remove(c.name)

	if deleteRecord && c.record != nil && !isPlayer {
		if err := e.characters.Delete(ctx, campaignID, c.record.Slug()); err != nil {
			return false, gameerr.Wrap(err, "deleting character %q", c.record.Name)
		}
	}

	if isPlayer || state.Over() {
		if err := e.endCombat(ctx, campaignID, state); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := e.combats.Save(ctx, campaignID, state); err != nil {
		return false, gameerr.Wrap(err, "saving combat state for campaign %q", campaignID)
	}
	return false, nil
}

// endCombat syncs every survivor's health back to its character record, then
// discards the roster. Ended combats leave no archive.
func (e *Engine) endCombat(ctx context.Context, campaignID string, state *State) error {
	for _, p := range state.All() {
		if p.Template != "" {
			continue
		}
		rec, err := e.characters.Get(ctx, campaignID, character.Slugify(p.Name))
		if err != nil {
			return gameerr.Wrap(err, "loading record for %q", p.Name)
		}
		if rec == nil {
			continue
		}
		rec.SetHealth(p.Health)
		if err := e.characters.Save(ctx, campaignID, rec); err != nil {
			return gameerr.Wrap(err, "saving character %q", rec.Name)
		}
	}
	if err := e.combats.Delete(ctx, campaignID); err != nil {
		return gameerr.Wrap(err, "deleting combat state for campaign %q", campaignID)
	}
	return nil
}

// SpawnParams names a creature instance to bring into combat.
type SpawnParams struct {
	CampaignID string
	// Name is the instance name, e.g. "Wolf-1". Must be unique on the roster.
	Name     string
	Template string
	Team     string
}

// SpawnEnemy instantiates a bestiary template onto the roster with freshly
// rolled health and the template's threat-derived hit chance.
//
// Postcondition: Health == MaxHealth >= 1. The team defaults to the instance
// name. Spawning never triggers the end-of-combat check.
func (e *Engine) SpawnEnemy(ctx context.Context, p SpawnParams) (*Result, error) {
	if _, err := e.loadCampaign(ctx, p.CampaignID); err != nil {
		return nil, err
	}
	unlock := e.lockCampaign(p.CampaignID)
	defer unlock()

	state, err := e.loadState(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState()
	}
	before := snapshotAll(state)

	if _, ok := state.Get(p.Name); ok {
		return nil, gameerr.New(gameerr.KindAlreadyExists, "%s is already in combat.", p.Name)
	}

	tmpl, err := e.directory.Template(ctx, p.CampaignID, p.Template)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		hints, err := e.templateNames(ctx, p.CampaignID)
		if err != nil {
			return nil, err
		}
		return nil, gameerr.New(gameerr.KindParticipantNotFound,
			"No creature template named %q.", p.Template).WithHints(hints...)
	}

	health := e.roller.Evaluate(tmpl.HP)
	if health < 1 {
		health = 1
	}
	team := p.Team
	if team == "" {
		team = p.Name
	}
	state.Add(&Participant{
		Name:      p.Name,
		Health:    health,
		MaxHealth: health,
		HitChance: tmpl.ThreatLevel.HitChance(),
		Team:      team,
		Template:  tmpl.Name,
	})
	if err := e.combats.Save(ctx, p.CampaignID, state); err != nil {
		return nil, gameerr.Wrap(err, "saving combat state for campaign %q", p.CampaignID)
	}
	return &Result{
		Lines:  []string{fmt.Sprintf("%s joins the combat!", p.Name)},
		Before: before,
		After:  snapshotAll(state),
		Active: true,
	}, nil
}

func (e *Engine) templateNames(ctx context.Context, campaignID string) ([]string, error) {
	templates, err := e.templates.List(ctx, campaignID)
	if err != nil {
		return nil, gameerr.Wrap(err, "listing templates for campaign %q", campaignID)
	}
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		names = append(names, t.Name)
	}
	return names, nil
}

// RemoveReason is why a combatant leaves the fight.
type RemoveReason string

const (
	ReasonDeath     RemoveReason = "death"
	ReasonFlee      RemoveReason = "flee"
	ReasonSurrender RemoveReason = "surrender"
)

// RemoveParams names a combatant to take off the roster.
type RemoveParams struct {
	CampaignID string
	Name       string
	Reason     RemoveReason
}

// RemoveFromCombat takes a participant off the roster. A death removal forces
// the character record to zero health and deletes it unless it is the player;
// flee and surrender sync current health and keep the record.
//
// Postcondition: Removing the player ends the combat regardless of the
// remaining teams.
func (e *Engine) RemoveFromCombat(ctx context.Context, p RemoveParams) (*Result, error) {
	camp, err := e.loadCampaign(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	unlock := e.lockCampaign(p.CampaignID)
	defer unlock()

	state, err := e.loadState(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, gameerr.New(gameerr.KindParticipantNotFound, "No combat is currently active.")
	}
	before := snapshotAll(state)

	entry, ok := state.Get(p.Name)
	if !ok {
		return nil, gameerr.New(gameerr.KindParticipantNotFound, "%s is not in combat.", p.Name)
	}
	c := &combatant{name: entry.Name, entry: entry}
	rec, err := e.characters.Get(ctx, p.CampaignID, character.Slugify(entry.Name))
	if err != nil {
		return nil, gameerr.Wrap(err, "loading record for %q", entry.Name)
	}
	c.record = rec

	result := &Result{Before: before, Active: true}
	deleteRecord := false
	switch p.Reason {
	case ReasonDeath:
		if c.record != nil {
			c.record.SetHealth(0)
			if err := e.characters.Save(ctx, p.CampaignID, c.record); err != nil {
				return nil, gameerr.Wrap(err, "saving character %q", c.record.Name)
			}
		}
		deleteRecord = true
		result.Lines = append(result.Lines, fmt.Sprintf("%s has been slain!", c.name))
	case ReasonFlee:
		result.Lines = append(result.Lines, fmt.Sprintf("%s flees from combat!", c.name))
	case ReasonSurrender:
		result.Lines = append(result.Lines, fmt.Sprintf("%s surrenders!", c.name))
	default:
		return nil, gameerr.New(gameerr.KindInvalidArgument,
			"Unknown removal reason %q.", p.Reason).WithHints(string(ReasonDeath), string(ReasonFlee), string(ReasonSurrender))
	}

	if p.Reason != ReasonDeath && c.record != nil {
		c.record.SetHealth(c.entry.Health)
		if err := e.characters.Save(ctx, p.CampaignID, c.record); err != nil {
			return nil, gameerr.Wrap(err, "saving character %q", c.record.Name)
		}
	}

	ended, err := e.fell(ctx, p.CampaignID, camp, state, c, deleteRecord)
	if err != nil {
		return nil, err
	}
	if ended {
		result.Lines = append(result.Lines, "Combat has ended!")
		result.Ended = true
		result.Active = false
	}
	result.After = snapshotAll(state)
	return result, nil
}

// HealParams names a character to heal and the formula to roll for it.
// Source, when set, is woven into the narration ("from a potion").
type HealParams struct {
	CampaignID string
	Character  string
	Formula    string
	Source     string
}

// Heal rolls the formula and restores that much health, capped at the
// character's maximum. An active roster entry is kept in sync with the record.
// The narration reports the wound-state transition, never the rolled number.
//
// Postcondition: Healing a character already at full health changes nothing.
func (e *Engine) Heal(ctx context.Context, p HealParams) (*Result, error) {
	if _, err := e.loadCampaign(ctx, p.CampaignID); err != nil {
		return nil, err
	}
	unlock := e.lockCampaign(p.CampaignID)
	defer unlock()

	rec, err := e.directory.Character(ctx, p.CampaignID, p.Character)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, gameerr.New(gameerr.KindParticipantNotFound, "No character matching %q was found.", p.Character)
	}

	source := ""
	if p.Source != "" {
		source = " from " + p.Source
	}

	result := &Result{}
	if rec.Health >= rec.MaxHealth {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s receives healing%s, but is already in perfect health.", rec.Name, source))
		return result, nil
	}

	amount := e.roller.Evaluate(p.Formula)
	intensity := narrative.IntensityFor(amount, dice.MaxValue(p.Formula))
	oldWound := narrative.WoundFor(rec.Health, rec.MaxHealth)
	rec.SetHealth(rec.Health + amount)
	if err := e.characters.Save(ctx, p.CampaignID, rec); err != nil {
		return nil, gameerr.Wrap(err, "saving character %q", rec.Name)
	}

	state, err := e.loadState(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		if entry, ok := state.Get(rec.Name); ok {
			entry.Health = rec.Health
			if err := e.combats.Save(ctx, p.CampaignID, state); err != nil {
				return nil, gameerr.Wrap(err, "saving combat state for campaign %q", p.CampaignID)
			}
			result.Active = true
			result.After = snapshotAll(state)
		}
	}

	result.Lines = append(result.Lines,
		fmt.Sprintf("%s receives %s%s.", rec.Name, intensity.HealingPhrase(), source))
	if rec.Health == rec.MaxHealth {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s is fully restored to perfect health.", rec.Name))
	} else {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s recovers from %s to %s.",
				rec.Name, oldWound, narrative.WoundFor(rec.Health, rec.MaxHealth)))
	}
	return result, nil
}

// Status reports the current roster without mutating anything.
func (e *Engine) Status(ctx context.Context, campaignID string) (*Result, error) {
	if _, err := e.loadCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	unlock := e.lockCampaign(campaignID)
	defer unlock()

	state, err := e.loadState(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &Result{Lines: []string{"No combat is currently active."}}, nil
	}

	result := &Result{Active: true, Lines: []string{"Combat is underway:"}}
	for _, p := range state.All() {
		result.Lines = append(result.Lines,
			fmt.Sprintf("%s [team %s] is %s.", p.Name, p.Team, p.Wound()))
	}
	result.After = snapshotAll(state)
	return result, nil
}

func snapshotAll(s *State) []Snapshot {
	out := make([]Snapshot, 0, len(s.Order))
	for _, p := range s.All() {
		out = append(out, Snapshot{
			Name:      p.Name,
			Team:      p.Team,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			HitChance: p.HitChance,
			Template:  p.Template,
			Condition: p.Wound().String(),
		})
	}
	return out
}
