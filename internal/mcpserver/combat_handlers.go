package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

// AttackInput names the parties of a single attack.
type AttackInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID (read the campaign://list resource to find it)"`
	Attacker   string `json:"attacker" jsonschema:"who is attacking, by name or keyword"`
	Target     string `json:"target" jsonschema:"who is being attacked, by name or keyword"`
	Weapon     string `json:"weapon" jsonschema:"weapon to attack with (inventory item, template attack, or 'fists')"`
	Team       string `json:"team,omitempty" jsonschema:"optional team to fight on; joining the target's former team counts as betrayal"`
}

func (s *Server) handleAttack(ctx context.Context, _ *mcp.CallToolRequest, in AttackInput) (*mcp.CallToolResult, CombatOutput, error) {
	res, err := s.engine.Attack(ctx, combat.AttackParams{
		CampaignID: in.CampaignID,
		Attacker:   in.Attacker,
		Target:     in.Target,
		Weapon:     in.Weapon,
		Team:       in.Team,
	})
	if err != nil {
		r, te, ferr := s.failure("attack", err)
		return r, CombatOutput{Error: te}, ferr
	}
	out := combatOutput(res)
	return textResult(out.Transcript), out, nil
}

// SpawnEnemyInput names a creature instance to bring into combat.
type SpawnEnemyInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Name       string `json:"name" jsonschema:"instance name, unique on the roster (e.g. 'Wolf-1')"`
	Template   string `json:"template" jsonschema:"bestiary template to spawn from"`
	Team       string `json:"team,omitempty" jsonschema:"optional team; defaults to the instance's own side"`
}

func (s *Server) handleSpawnEnemy(ctx context.Context, _ *mcp.CallToolRequest, in SpawnEnemyInput) (*mcp.CallToolResult, CombatOutput, error) {
	res, err := s.engine.SpawnEnemy(ctx, combat.SpawnParams{
		CampaignID: in.CampaignID,
		Name:       in.Name,
		Template:   in.Template,
		Team:       in.Team,
	})
	if err != nil {
		r, te, ferr := s.failure("spawn_enemy", err)
		return r, CombatOutput{Error: te}, ferr
	}
	out := combatOutput(res)
	return textResult(out.Transcript), out, nil
}

// RemoveFromCombatInput names a participant to take off the roster.
type RemoveFromCombatInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Name       string `json:"name" jsonschema:"participant to remove, by name or keyword"`
	Reason     string `json:"reason" jsonschema:"why they leave: death, flee, or surrender"`
}

func (s *Server) handleRemoveFromCombat(ctx context.Context, _ *mcp.CallToolRequest, in RemoveFromCombatInput) (*mcp.CallToolResult, CombatOutput, error) {
	res, err := s.engine.RemoveFromCombat(ctx, combat.RemoveParams{
		CampaignID: in.CampaignID,
		Name:       in.Name,
		Reason:     combat.RemoveReason(in.Reason),
	})
	if err != nil {
		r, te, ferr := s.failure("remove_from_combat", err)
		return r, CombatOutput{Error: te}, ferr
	}
	out := combatOutput(res)
	return textResult(out.Transcript), out, nil
}

// HealInput names a character to heal and the formula to roll for it.
type HealInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Character  string `json:"character" jsonschema:"character to heal, by name or keyword"`
	Formula    string `json:"formula" jsonschema:"healing dice formula in standard notation (XdY+Z)"`
	Source     string `json:"source,omitempty" jsonschema:"optional source of the healing (potion, rest, magic)"`
}

// HealOutput carries the heal narration plus the source the caller attributed
// it to.
type HealOutput struct {
	CombatOutput
	Source string `json:"source,omitempty"`
}

func (s *Server) handleHeal(ctx context.Context, _ *mcp.CallToolRequest, in HealInput) (*mcp.CallToolResult, HealOutput, error) {
	res, err := s.engine.Heal(ctx, combat.HealParams{
		CampaignID: in.CampaignID,
		Character:  in.Character,
		Formula:    in.Formula,
		Source:     in.Source,
	})
	if err != nil {
		r, te, ferr := s.failure("heal", err)
		return r, HealOutput{CombatOutput: CombatOutput{Error: te}}, ferr
	}
	out := HealOutput{CombatOutput: combatOutput(res), Source: in.Source}
	return textResult(out.Transcript), out, nil
}

// CombatStatusInput selects the campaign to report on.
type CombatStatusInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
}

func (s *Server) handleCombatStatus(ctx context.Context, _ *mcp.CallToolRequest, in CombatStatusInput) (*mcp.CallToolResult, CombatOutput, error) {
	res, err := s.engine.Status(ctx, in.CampaignID)
	if err != nil {
		r, te, ferr := s.failure("get_combat_status", err)
		return r, CombatOutput{Error: te}, ferr
	}
	out := combatOutput(res)
	return textResult(out.Transcript), out, nil
}
