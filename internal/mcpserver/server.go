// Package mcpserver exposes the game engine as a Model Context Protocol tool
// server over stdio. Tools mutate campaign state through the combat engine and
// the stores; resources expose read-only JSON views of the same records.
//
// Recoverable game errors (unknown participants, duplicate names, bad
// arguments) are reported as tool results so the caller can react to them.
// Only store I/O failures surface as protocol errors.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/tavernkeep/tavernkeep/internal/config"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// Server binds the tool and resource handlers to an MCP server instance.
type Server struct {
	cfg        config.ServerConfig
	engine     *combat.Engine
	characters combat.CharacterStore
	templates  combat.TemplateStore
	combats    combat.CombatStore
	campaigns  combat.CampaignStore
	directory  *combat.Directory
	logger     *zap.Logger
	mcp        *mcp.Server
}

// New creates a Server with every tool and resource registered.
//
// Precondition: engine, all stores, and logger must be non-nil.
func New(cfg config.ServerConfig, engine *combat.Engine, characters combat.CharacterStore,
	templates combat.TemplateStore, combats combat.CombatStore, campaigns combat.CampaignStore,
	logger *zap.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		engine:     engine,
		characters: characters,
		templates:  templates,
		combats:    combats,
		campaigns:  campaigns,
		directory:  combat.NewDirectory(characters, templates),
		logger:     logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
	}
	s.register()
	return s
}

// register wires every tool and resource onto the MCP server.
func (s *Server) register() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "begin_campaign",
		Description: "Create a new campaign with a name and player character. Returns the campaign ID.",
	}, s.handleBeginCampaign)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_campaign",
		Description: "Delete a campaign and all of its characters, bestiary entries, and combat state. This is permanent.",
	}, s.handleDeleteCampaign)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List all campaigns with their IDs and player characters.",
	}, s.handleListCampaigns)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_npc",
		Description: "Create a character in the campaign so it can be referenced by name or keyword later.",
	}, s.handleCreateNPC)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_bestiary_entry",
		Description: "Create a creature template with a threat level, an HP formula, and attacks. Templates are spawned into combat with spawn_enemy.",
	}, s.handleCreateBestiaryEntry)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_bestiary",
		Description: "List the campaign's creature templates with their stats and attacks.",
	}, s.handleGetBestiary)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "attack",
		Description: "Perform one attack. Returns narrated combat results: hit or miss, damage description, and resulting health states.",
	}, s.handleAttack)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "spawn_enemy",
		Description: "Spawn a creature from a bestiary template into the active combat with freshly rolled health.",
	}, s.handleSpawnEnemy)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "remove_from_combat",
		Description: "Remove a participant from combat because of death, fleeing, or surrender.",
	}, s.handleRemoveFromCombat)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "heal",
		Description: "Heal a character by rolling a dice formula. Healing cannot exceed max health.",
	}, s.handleHeal)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_combat_status",
		Description: "Show the current combat roster with teams and wound states. Read-only.",
	}, s.handleCombatStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_item",
		Description: "Add an item to a character's inventory. Items can be weapons, consumables, or containers.",
	}, s.handleAddItem)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "remove_item",
		Description: "Remove an item from a character's inventory (discard, destroy, or consume).",
	}, s.handleRemoveItem)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_item",
		Description: "Update properties of an item in a character's inventory.",
	}, s.handleUpdateItem)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_inventory",
		Description: "View a character's inventory including money and all items.",
	}, s.handleGetInventory)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_money",
		Description: "Add gold to a character's inventory.",
	}, s.handleAddMoney)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "remove_money",
		Description: "Remove gold from a character's inventory. Fails if the balance would go negative.",
	}, s.handleRemoveMoney)

	s.mcp.AddResource(&mcp.Resource{
		URI:         campaignListURI,
		Name:        "Campaign List",
		Description: "All campaigns with their IDs and player characters.",
		MIMEType:    "application/json",
	}, s.readCampaignList)
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "campaign://{campaign_id}/characters",
		Name:        "Campaign Characters",
		Description: "All character records in a campaign.",
		MIMEType:    "application/json",
	}, s.readCampaignCharacters)
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "campaign://{campaign_id}/bestiary",
		Name:        "Campaign Bestiary",
		Description: "All creature templates in a campaign.",
		MIMEType:    "application/json",
	}, s.readCampaignBestiary)
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "campaign://{campaign_id}/combat",
		Name:        "Active Combat",
		Description: "The campaign's active combat roster, if any.",
		MIMEType:    "application/json",
	}, s.readCampaignCombat)
}

// Serve runs the server on stdio until the context ends or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting",
		zap.String("name", s.cfg.Name),
		zap.String("version", s.cfg.Version))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// failure maps a recoverable game error to a reportable tool result. Internal
// errors pass through and fail the protocol call instead.
func (s *Server) failure(tool string, err error) (*mcp.CallToolResult, *ToolError, error) {
	if gameerr.IsKind(err, gameerr.KindInternal) {
		s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
		return nil, nil, err
	}
	s.logger.Debug("tool rejected",
		zap.String("tool", tool),
		zap.String("kind", string(gameerr.KindOf(err))),
		zap.Error(err))
	return errorResult(err), asToolError(err), nil
}
