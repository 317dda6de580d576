package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// resolveCharacter loads a character by name or keyword, or fails with
// ParticipantNotFound.
func (s *Server) resolveCharacter(ctx context.Context, campaignID, name string) (*character.Character, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	rec, err := s.directory.Character(ctx, campaignID, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, gameerr.New(gameerr.KindParticipantNotFound, "No character matching %q was found.", name)
	}
	return rec, nil
}

// AddItemInput describes an item to add to a character's inventory.
type AddItemInput struct {
	CampaignID  string `json:"campaign_id" jsonschema:"the campaign ID"`
	Character   string `json:"character" jsonschema:"character name or keyword"`
	ItemName    string `json:"item_name" jsonschema:"name of the item, used as its key"`
	Description string `json:"description" jsonschema:"description of the item"`
	Source      string `json:"source" jsonschema:"where the item came from"`
	Weapon      bool   `json:"weapon,omitempty" jsonschema:"whether this item can be used as a weapon in combat"`
	Damage      string `json:"damage,omitempty" jsonschema:"damage formula in standard notation (XdY); required when weapon is true"`
	Container   string `json:"container,omitempty" jsonschema:"optional name of a container item this is stored in"`
}

// InventoryMutationOutput reports an inventory change.
type InventoryMutationOutput struct {
	Character string     `json:"character,omitempty"`
	ItemName  string     `json:"item_name,omitempty"`
	// Updated lists the fields changed by update_item, or the items whose
	// container reference was cleared by remove_item.
	Updated []string   `json:"updated,omitempty"`
	Error   *ToolError `json:"error,omitempty"`
}

func (s *Server) handleAddItem(ctx context.Context, _ *mcp.CallToolRequest, in AddItemInput) (*mcp.CallToolResult, InventoryMutationOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, InventoryMutationOutput, error) {
		r, te, ferr := s.failure("add_item", err)
		return r, InventoryMutationOutput{Error: te}, ferr
	}

	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		return fail(err)
	}
	if err := rec.Inventory.AddItem(in.ItemName, character.Item{
		Description: in.Description,
		Source:      in.Source,
		Weapon:      in.Weapon,
		Damage:      in.Damage,
		Container:   in.Container,
	}); err != nil {
		return fail(err)
	}
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", rec.Name))
	}

	text := fmt.Sprintf("Added %q to %s's inventory.", in.ItemName, rec.Name)
	if in.Weapon {
		text = fmt.Sprintf("Added %q (weapon, %s damage) to %s's inventory.", in.ItemName, in.Damage, rec.Name)
	}
	if in.Container != "" {
		text += fmt.Sprintf(" Stored in %s.", in.Container)
	}
	return textResult(text), InventoryMutationOutput{Character: rec.Name, ItemName: in.ItemName}, nil
}

// RemoveItemInput names an item to remove from a character's inventory.
type RemoveItemInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Character  string `json:"character" jsonschema:"character name or keyword"`
	ItemName   string `json:"item_name" jsonschema:"name of the item to remove"`
	Reason     string `json:"reason,omitempty" jsonschema:"optional reason the item is being removed"`
}

func (s *Server) handleRemoveItem(ctx context.Context, _ *mcp.CallToolRequest, in RemoveItemInput) (*mcp.CallToolResult, InventoryMutationOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, InventoryMutationOutput, error) {
		r, te, ferr := s.failure("remove_item", err)
		return r, InventoryMutationOutput{Error: te}, ferr
	}

	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		return fail(err)
	}
	orphaned, err := rec.Inventory.RemoveItem(in.ItemName)
	if err != nil {
		return fail(err)
	}
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", rec.Name))
	}

	reason := in.Reason
	if reason == "" {
		reason = "removed"
	}
	text := fmt.Sprintf("Removed %q from %s's inventory. Reason: %s", in.ItemName, rec.Name, reason)
	if len(orphaned) > 0 {
		text += fmt.Sprintf("\nAlso cleared container references from: %s", strings.Join(orphaned, ", "))
	}
	return textResult(text), InventoryMutationOutput{
		Character: rec.Name,
		ItemName:  in.ItemName,
		Updated:   orphaned,
	}, nil
}

// UpdateItemInput carries the optional fields of an item update; absent fields
// are left unchanged.
type UpdateItemInput struct {
	CampaignID  string  `json:"campaign_id" jsonschema:"the campaign ID"`
	Character   string  `json:"character" jsonschema:"character name or keyword"`
	ItemName    string  `json:"item_name" jsonschema:"name of the item to update"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
	Weapon      *bool   `json:"weapon,omitempty" jsonschema:"new weapon status"`
	Damage      *string `json:"damage,omitempty" jsonschema:"new damage formula"`
	Container   *string `json:"container,omitempty" jsonschema:"new container location; empty string to take the item out"`
}

func (s *Server) handleUpdateItem(ctx context.Context, _ *mcp.CallToolRequest, in UpdateItemInput) (*mcp.CallToolResult, InventoryMutationOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, InventoryMutationOutput, error) {
		r, te, ferr := s.failure("update_item", err)
		return r, InventoryMutationOutput{Error: te}, ferr
	}

	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		return fail(err)
	}
	updated, err := rec.Inventory.UpdateItem(in.ItemName, character.ItemUpdate{
		Description: in.Description,
		Weapon:      in.Weapon,
		Damage:      in.Damage,
		Container:   in.Container,
	})
	if err != nil {
		return fail(err)
	}
	if len(updated) == 0 {
		return textResult(fmt.Sprintf("No updates provided for %q.", in.ItemName)),
			InventoryMutationOutput{Character: rec.Name, ItemName: in.ItemName}, nil
	}
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", rec.Name))
	}

	text := fmt.Sprintf("Updated %q for %s: %s", in.ItemName, rec.Name, strings.Join(updated, ", "))
	return textResult(text), InventoryMutationOutput{
		Character: rec.Name,
		ItemName:  in.ItemName,
		Updated:   updated,
	}, nil
}

// GetInventoryInput selects the character whose inventory to show.
type GetInventoryInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Character  string `json:"character" jsonschema:"character name or keyword"`
}

// InventoryItem is one item in an inventory listing.
type InventoryItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Weapon      bool   `json:"weapon,omitempty"`
	Damage      string `json:"damage,omitempty"`
	Container   string `json:"container,omitempty"`
}

// GetInventoryOutput is a character's full inventory.
type GetInventoryOutput struct {
	Character string          `json:"character,omitempty"`
	Money     int             `json:"money"`
	Items     []InventoryItem `json:"items"`
	Error     *ToolError      `json:"error,omitempty"`
}

func (s *Server) handleGetInventory(ctx context.Context, _ *mcp.CallToolRequest, in GetInventoryInput) (*mcp.CallToolResult, GetInventoryOutput, error) {
	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		r, te, ferr := s.failure("get_inventory", err)
		return r, GetInventoryOutput{Error: te}, ferr
	}

	inv := rec.Inventory
	out := GetInventoryOutput{Character: rec.Name, Money: inv.Money, Items: []InventoryItem{}}
	lines := []string{
		fmt.Sprintf("%s's inventory:", rec.Name),
		fmt.Sprintf("Money: %d gold", inv.Money),
	}
	names := inv.ItemNames()
	if len(names) == 0 {
		lines = append(lines, "No items.")
	}
	for _, name := range names {
		item := inv.Items[name]
		out.Items = append(out.Items, InventoryItem{
			Name:        name,
			Description: item.Description,
			Source:      item.Source,
			Weapon:      item.Weapon,
			Damage:      item.Damage,
			Container:   item.Container,
		})
		line := fmt.Sprintf("- %s: %s", name, item.Description)
		if item.Weapon {
			line += fmt.Sprintf(" (weapon, %s damage)", item.Damage)
		}
		if item.Container != "" {
			line += fmt.Sprintf(" [in %s]", item.Container)
		}
		lines = append(lines, line)
	}
	return textResult(strings.Join(lines, "\n")), out, nil
}

// MoneyInput names a character and an amount of gold.
type MoneyInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"the campaign ID"`
	Character  string `json:"character" jsonschema:"character name or keyword"`
	Amount     int    `json:"amount" jsonschema:"amount of gold"`
}

// MoneyOutput reports a balance change.
type MoneyOutput struct {
	Character string     `json:"character,omitempty"`
	Balance   int        `json:"balance"`
	Error     *ToolError `json:"error,omitempty"`
}

func (s *Server) handleAddMoney(ctx context.Context, _ *mcp.CallToolRequest, in MoneyInput) (*mcp.CallToolResult, MoneyOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, MoneyOutput, error) {
		r, te, ferr := s.failure("add_money", err)
		return r, MoneyOutput{Error: te}, ferr
	}

	if in.Amount < 0 {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Amount must not be negative."))
	}
	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		return fail(err)
	}
	rec.Inventory.AddMoney(in.Amount)
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", rec.Name))
	}

	text := fmt.Sprintf("Added %d gold to %s's inventory.\nNew balance: %d gold", in.Amount, rec.Name, rec.Inventory.Money)
	return textResult(text), MoneyOutput{Character: rec.Name, Balance: rec.Inventory.Money}, nil
}

func (s *Server) handleRemoveMoney(ctx context.Context, _ *mcp.CallToolRequest, in MoneyInput) (*mcp.CallToolResult, MoneyOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, MoneyOutput, error) {
		r, te, ferr := s.failure("remove_money", err)
		return r, MoneyOutput{Error: te}, ferr
	}

	if in.Amount < 0 {
		return fail(gameerr.New(gameerr.KindInvalidArgument, "Amount must not be negative."))
	}
	rec, err := s.resolveCharacter(ctx, in.CampaignID, in.Character)
	if err != nil {
		return fail(err)
	}
	if err := rec.Inventory.RemoveMoney(in.Amount); err != nil {
		return fail(err)
	}
	if err := s.characters.Save(ctx, in.CampaignID, rec); err != nil {
		return fail(gameerr.Wrap(err, "saving character %q", rec.Name))
	}

	text := fmt.Sprintf("Removed %d gold from %s's inventory.\nNew balance: %d gold", in.Amount, rec.Name, rec.Inventory.Money)
	return textResult(text), MoneyOutput{Character: rec.Name, Balance: rec.Inventory.Money}, nil
}
