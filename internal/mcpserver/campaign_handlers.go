package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

const (
	defaultMaxHealth     = 20
	defaultPlayerWeapon  = "fists"
	defaultPlayerFormula = "1d4"
)

// BeginCampaignInput describes a new campaign and its player character.
type BeginCampaignInput struct {
	Name              string            `json:"name" jsonschema:"campaign name (e.g. 'The Lost Kingdom')"`
	PlayerName        string            `json:"player_name" jsonschema:"the player character's name"`
	PlayerDescription string            `json:"player_description,omitempty" jsonschema:"optional player description (appearance, backstory)"`
	PlayerHealth      int               `json:"player_health,omitempty" jsonschema:"optional player max health, defaults to 20"`
	PlayerWeapons     map[string]string `json:"player_weapons,omitempty" jsonschema:"optional starting weapons mapping name to damage formula; defaults to fists (1d4)"`
}

// BeginCampaignOutput reports the created campaign and player.
type BeginCampaignOutput struct {
	CampaignID string            `json:"campaign_id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Slug       string            `json:"slug,omitempty"`
	Player     string            `json:"player,omitempty"`
	Health     int               `json:"health,omitempty"`
	Weapons    map[string]string `json:"weapons,omitempty"`
	Error      *ToolError        `json:"error,omitempty"`
}

func (s *Server) handleBeginCampaign(ctx context.Context, _ *mcp.CallToolRequest, in BeginCampaignInput) (*mcp.CallToolResult, BeginCampaignOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, BeginCampaignOutput, error) {
		r, te, ferr := s.failure("begin_campaign", err)
		return r, BeginCampaignOutput{Error: te}, ferr
	}

	if strings.TrimSpace(in.Name) == "" {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Campaign name is required."))
	}
	if strings.TrimSpace(in.PlayerName) == "" {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Player name is required."))
	}

	health := in.PlayerHealth
	if health <= 0 {
		health = defaultMaxHealth
	}
	description := in.PlayerDescription
	if description == "" {
		description = "The player character"
	}
	weapons := in.PlayerWeapons
	if len(weapons) == 0 {
		weapons = map[string]string{defaultPlayerWeapon: defaultPlayerFormula}
	}

	camp := campaign.New(uuid.NewString(), in.Name, in.PlayerName)
	if err := s.campaigns.Save(ctx, &camp); err != nil {
		return fail(gameerr.Wrap(err, "saving campaign %q", in.Name))
	}

	player := &character.Character{
		Name:        in.PlayerName,
		Keywords:    []string{strings.ToLower(in.PlayerName), "player", "you", "user"},
		Description: description,
		Health:      health,
		MaxHealth:   health,
		HitChance:   bestiary.ThreatModerate.HitChance(),
	}
	for name, damage := range weapons {
		if err := player.Inventory.AddItem(name, character.Item{
			Description: fmt.Sprintf("A %s", strings.ToLower(name)),
			Source:      "starting equipment",
			Weapon:      true,
			Damage:      damage,
		}); err != nil {
			return fail(err)
		}
	}
	if err := s.characters.Save(ctx, camp.ID, player); err != nil {
		return fail(gameerr.Wrap(err, "saving player %q", in.PlayerName))
	}

	s.logger.Info("campaign created",
		zap.String("campaign_id", camp.ID),
		zap.String("name", camp.Name),
		zap.String("player", in.PlayerName))

	text := fmt.Sprintf("Campaign %q created.\nCampaign ID: %s\nPlayer: %s (%d HP)\nWeapons: %s",
		camp.Name, camp.ID, in.PlayerName, health, formatWeaponMap(weapons))
	return textResult(text), BeginCampaignOutput{
		CampaignID: camp.ID,
		Name:       camp.Name,
		Slug:       camp.Slug,
		Player:     in.PlayerName,
		Health:     health,
		Weapons:    weapons,
	}, nil
}

// DeleteCampaignInput selects the campaign to delete.
type DeleteCampaignInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID to delete"`
}

// DeleteCampaignOutput reports the deleted campaign.
type DeleteCampaignOutput struct {
	CampaignID string     `json:"campaign_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Error      *ToolError `json:"error,omitempty"`
}

func (s *Server) handleDeleteCampaign(ctx context.Context, _ *mcp.CallToolRequest, in DeleteCampaignInput) (*mcp.CallToolResult, DeleteCampaignOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, DeleteCampaignOutput, error) {
		r, te, ferr := s.failure("delete_campaign", err)
		return r, DeleteCampaignOutput{Error: te}, ferr
	}

	camp, err := s.campaigns.Get(ctx, in.CampaignID)
	if err != nil {
		return fail(gameerr.Wrap(err, "loading campaign %q", in.CampaignID))
	}
	if camp == nil {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Campaign not found: %s.", in.CampaignID))
	}
	if err := s.campaigns.Delete(ctx, in.CampaignID); err != nil {
		return fail(gameerr.Wrap(err, "deleting campaign %q", in.CampaignID))
	}

	s.logger.Info("campaign deleted",
		zap.String("campaign_id", camp.ID),
		zap.String("name", camp.Name))

	text := fmt.Sprintf("Campaign %q (ID: %s) has been permanently deleted, including its characters, bestiary, and combat state.",
		camp.Name, camp.ID)
	return textResult(text), DeleteCampaignOutput{CampaignID: camp.ID, Name: camp.Name}, nil
}

// ListCampaignsInput is empty; the tool takes no arguments.
type ListCampaignsInput struct{}

// CampaignSummary is one row of the campaign listing.
type CampaignSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PlayerName string `json:"player_name,omitempty"`
}

// ListCampaignsOutput lists every campaign.
type ListCampaignsOutput struct {
	Campaigns []CampaignSummary `json:"campaigns"`
	Error     *ToolError        `json:"error,omitempty"`
}

func (s *Server) handleListCampaigns(ctx context.Context, _ *mcp.CallToolRequest, _ ListCampaignsInput) (*mcp.CallToolResult, ListCampaignsOutput, error) {
	all, err := s.campaigns.List(ctx)
	if err != nil {
		r, te, ferr := s.failure("list_campaigns", gameerr.Wrap(err, "listing campaigns"))
		return r, ListCampaignsOutput{Error: te}, ferr
	}
	out := ListCampaignsOutput{Campaigns: make([]CampaignSummary, 0, len(all))}
	lines := make([]string, 0, len(all)+1)
	if len(all) == 0 {
		lines = append(lines, "No campaigns yet. Create one with begin_campaign.")
	} else {
		lines = append(lines, "Campaigns:")
	}
	for _, c := range all {
		out.Campaigns = append(out.Campaigns, CampaignSummary{
			ID: c.ID, Name: c.Name, Slug: c.Slug, PlayerName: c.PlayerName,
		})
		lines = append(lines, fmt.Sprintf("- %s (ID: %s, player: %s)", c.Name, c.ID, c.PlayerName))
	}
	return textResult(strings.Join(lines, "\n")), out, nil
}

// CreateNPCInput describes a new character record.
type CreateNPCInput struct {
	CampaignID  string            `json:"campaign_id" jsonschema:"the campaign ID"`
	Name        string            `json:"name" jsonschema:"the character's full name"`
	Keywords    []string          `json:"keywords" jsonschema:"keywords that match this character (name variations, role, race)"`
	Description string            `json:"description" jsonschema:"the character's story or description"`
	Health      int               `json:"health,omitempty" jsonschema:"optional current health; defaults to max_health"`
	MaxHealth   int               `json:"max_health,omitempty" jsonschema:"optional maximum health; defaults to 20"`
	ThreatLevel string            `json:"threat_level,omitempty" jsonschema:"optional combat threat level (none to certain_death); defaults to moderate"`
	Weapons     map[string]string `json:"weapons,omitempty" jsonschema:"optional starting weapons mapping name to damage formula"`
}

// CreateNPCOutput reports the created character.
type CreateNPCOutput struct {
	Name      string     `json:"name,omitempty"`
	Slug      string     `json:"slug,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
	Health    int        `json:"health,omitempty"`
	MaxHealth int        `json:"max_health,omitempty"`
	HitChance int        `json:"hit_chance,omitempty"`
	Error     *ToolError `json:"error,omitempty"`
}

func (s *Server) handleCreateNPC(ctx context.Context, _ *mcp.CallToolRequest, in CreateNPCInput) (*mcp.CallToolResult, CreateNPCOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, CreateNPCOutput, error) {
		r, te, ferr := s.failure("create_npc", err)
		return r, CreateNPCOutput{Error: te}, ferr
	}

	if err := s.requireCampaign(ctx, in.CampaignID); err != nil {
		return fail(err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Character name is required."))
	}

	threat := bestiary.ThreatModerate
	if in.ThreatLevel != "" {
		threat = bestiary.ThreatLevel(in.ThreatLevel)
		if !threat.Valid() {
			return fail(gameerr.New(gameerr.KindInvalidArgument, "Unknown threat level %q.", in.ThreatLevel).
				WithHints(threatLevelNames()...))
		}
	}
	maxHealth := in.MaxHealth
	if maxHealth <= 0 {
		maxHealth = defaultMaxHealth
	}
	health := in.Health
	if health <= 0 || health > maxHealth {
		health = maxHealth
	}

	slug := character.Slugify(in.Name)
	existing, err := s.characters.Get(ctx, in.CampaignID, slug)
	if err != nil {
		return fail(gameerr.Wrap(err, "loading character %q", slug))
	}
	if existing != nil {
		return fail(gameerr.New(gameerr.KindAlreadyExists, "Character %q already exists.", existing.Name))
	}

	rec := &character.Character{
		Name:        in.Name,
		Keywords:    in.Keywords,
		Description: in.Description,
		Health:      health,
		MaxHealth:   maxHealth,
		HitChance:   threat.HitChance(),
	}
	for name, damage := range in.Weapons {
		if err := rec.Inventory.AddItem(name, character.Item{
			Description: fmt.Sprintf("A %s", strings.ToLower(name)),
			Source:      "starting equipment",
			Weapon:      true,
			Damage:      damage,
		}); err != nil {
			return fail(err)
		}
	}
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", in.Name))
	}

	text := fmt.Sprintf("Character %q created.\nKeywords: %s\nHealth: %d/%d\nHit chance: %d%%",
		in.Name, strings.Join(in.Keywords, ", "), health, maxHealth, rec.HitChance)
	if len(in.Weapons) > 0 {
		text += fmt.Sprintf("\nWeapons: %s", formatWeaponMap(in.Weapons))
	}
	return textResult(text), CreateNPCOutput{
		Name:      in.Name,
		Slug:      slug,
		Keywords:  in.Keywords,
		Health:    health,
		MaxHealth: maxHealth,
		HitChance: rec.HitChance,
	}, nil
}

// CreateBestiaryEntryInput describes a new creature template.
type CreateBestiaryEntryInput struct {
	CampaignID  string            `json:"campaign_id" jsonschema:"the campaign ID"`
	Name        string            `json:"name" jsonschema:"creature type name"`
	ThreatLevel string            `json:"threat_level" jsonschema:"how dangerous this creature is: none, negligible, low, moderate, high, deadly, certain_death"`
	HP          string            `json:"hp" jsonschema:"HP formula in standard dice notation (XdY+Z), rolled fresh per spawn"`
	Weapons     map[string]string `json:"weapons" jsonschema:"map of attack names to damage formulas"`
}

// CreateBestiaryEntryOutput reports the created template.
type CreateBestiaryEntryOutput struct {
	Name        string     `json:"name,omitempty"`
	ThreatLevel string     `json:"threat_level,omitempty"`
	HitChance   int        `json:"hit_chance,omitempty"`
	HP          string     `json:"hp,omitempty"`
	Error       *ToolError `json:"error,omitempty"`
}

func (s *Server) handleCreateBestiaryEntry(ctx context.Context, _ *mcp.CallToolRequest, in CreateBestiaryEntryInput) (*mcp.CallToolResult, CreateBestiaryEntryOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, CreateBestiaryEntryOutput, error) {
		r, te, ferr := s.failure("create_bestiary_entry", err)
		return r, CreateBestiaryEntryOutput{Error: te}, ferr
	}

	if err := s.requireCampaign(ctx, in.CampaignID); err != nil {
		return fail(err)
	}

	tmpl := &bestiary.Template{
		Name:        in.Name,
		ThreatLevel: bestiary.ThreatLevel(in.ThreatLevel),
		HP:          in.HP,
		Weapons:     in.Weapons,
	}
	if err := tmpl.Validate(); err != nil {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "%s", err.Error()))
	}
	if len(tmpl.Weapons) == 0 {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Bestiary entries need at least one attack."))
	}

	existing, err := s.templates.Get(ctx, in.CampaignID, bestiary.Key(in.Name))
	if err != nil {
		return fail(gameerr.Wrap(err, "loading template %q", in.Name))
	}
	if existing != nil {
		hint := fmt.Sprintf("Existing: %s, %s HP, %s.",
			existing.ThreatLevel, existing.HP, formatWeaponMap(existing.Weapons))
		return fail(gameerr.New(gameerr.KindAlreadyExists, "Bestiary entry %q already exists.", existing.Name).
			WithHints(hint))
	}
	if err := s.templates.Save(ctx, in.CampaignID, tmpl); err != nil {
		return fail(gameerr.Wrap(err, "saving template %q", in.Name))
	}

	text := fmt.Sprintf("Bestiary entry %q created.\nThreat level: %s (%d%% hit)\nHP: %s\nAttacks: %s",
		in.Name, tmpl.ThreatLevel, tmpl.ThreatLevel.HitChance(), in.HP, formatWeaponMap(in.Weapons))
	return textResult(text), CreateBestiaryEntryOutput{
		Name:        in.Name,
		ThreatLevel: string(tmpl.ThreatLevel),
		HitChance:   tmpl.ThreatLevel.HitChance(),
		HP:          in.HP,
	}, nil
}

// GetBestiaryInput selects the campaign whose templates to list.
type GetBestiaryInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
}

// BestiaryEntry is one template in the listing.
type BestiaryEntry struct {
	Name        string            `json:"name"`
	ThreatLevel string            `json:"threat_level"`
	HitChance   int               `json:"hit_chance"`
	HP          string            `json:"hp"`
	Weapons     map[string]string `json:"weapons"`
}

// GetBestiaryOutput lists every template in the campaign.
type GetBestiaryOutput struct {
	Entries []BestiaryEntry `json:"entries"`
	Error   *ToolError      `json:"error,omitempty"`
}

func (s *Server) handleGetBestiary(ctx context.Context, _ *mcp.CallToolRequest, in GetBestiaryInput) (*mcp.CallToolResult, GetBestiaryOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, GetBestiaryOutput, error) {
		r, te, ferr := s.failure("get_bestiary", err)
		return r, GetBestiaryOutput{Error: te}, ferr
	}

	if err := s.requireCampaign(ctx, in.CampaignID); err != nil {
		return fail(err)
	}
	all, err := s.templates.List(ctx, in.CampaignID)
	if err != nil {
		return fail(gameerr.Wrap(err, "listing templates for campaign %q", in.CampaignID))
	}
	if len(all) == 0 {
		return textResult("No bestiary entries yet. Create creature templates with create_bestiary_entry."),
			GetBestiaryOutput{Entries: []BestiaryEntry{}}, nil
	}

	out := GetBestiaryOutput{Entries: make([]BestiaryEntry, 0, len(all))}
	lines := []string{"Bestiary:"}
	for _, t := range all {
		out.Entries = append(out.Entries, BestiaryEntry{
			Name:        t.Name,
			ThreatLevel: string(t.ThreatLevel),
			HitChance:   t.ThreatLevel.HitChance(),
			HP:          t.HP,
			Weapons:     t.Weapons,
		})
		lines = append(lines, fmt.Sprintf("- %s: %s threat (%d%% hit), %s HP, attacks: %s",
			t.Name, t.ThreatLevel, t.ThreatLevel.HitChance(), t.HP, formatWeaponMap(t.Weapons)))
	}
	return textResult(strings.Join(lines, "\n")), out, nil
}

// requireCampaign fails with InvalidArgument when the campaign does not exist.
func (s *Server) requireCampaign(ctx context.Context, id string) error {
	camp, err := s.campaigns.Get(ctx, id)
	if err != nil {
		return gameerr.Wrap(err, "loading campaign %q", id)
	}
	if camp == nil {
		return gameerr.New(gameerr.KindInvalidArgument, "Campaign not found: %s.", id)
	}
	return nil
}

// formatWeaponMap renders a weapon map as "name (formula), ..." in stable order.
func formatWeaponMap(weapons map[string]string) string {
	names := make([]string, 0, len(weapons))
	for name := range weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, weapons[name]))
	}
	return strings.Join(parts, ", ")
}

func threatLevelNames() []string {
	levels := bestiary.ThreatLevels()
	names := make([]string, 0, len(levels))
	for _, l := range levels {
		names = append(names, string(l))
	}
	return names
}
