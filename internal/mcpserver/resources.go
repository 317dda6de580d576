package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

const campaignListURI = "campaign://list"

// jsonResource marshals payload into a single JSON resource content.
func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

// campaignIDFromURI extracts the campaign ID from a campaign://{id}/{view} URI.
func campaignIDFromURI(uri, view string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "campaign://")
	if !ok {
		return "", fmt.Errorf("unsupported resource URI %q", uri)
	}
	id, ok := strings.CutSuffix(rest, "/"+view)
	if !ok || id == "" {
		return "", fmt.Errorf("unsupported resource URI %q", uri)
	}
	return id, nil
}

func (s *Server) readCampaignList(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	all, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	payload := struct {
		Campaigns []CampaignSummary `json:"campaigns"`
	}{Campaigns: make([]CampaignSummary, 0, len(all))}
	for _, c := range all {
		payload.Campaigns = append(payload.Campaigns, CampaignSummary{
			ID: c.ID, Name: c.Name, Slug: c.Slug, PlayerName: c.PlayerName,
		})
	}
	return jsonResource(campaignListURI, payload)
}

func (s *Server) readCampaignCharacters(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := campaignIDFromURI(req.Params.URI, "characters")
	if err != nil {
		return nil, err
	}
	if err := s.requireCampaign(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.characters.Index(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("indexing characters for campaign %s: %w", id, err)
	}
	payload := struct {
		Characters []character.Character `json:"characters"`
	}{Characters: make([]character.Character, 0, len(entries))}
	for _, entry := range entries {
		rec, err := s.characters.Get(ctx, id, entry.Slug)
		if err != nil {
			return nil, fmt.Errorf("loading character %s: %w", entry.Slug, err)
		}
		if rec == nil {
			continue
		}
		payload.Characters = append(payload.Characters, *rec)
	}
	return jsonResource(req.Params.URI, payload)
}

func (s *Server) readCampaignBestiary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := campaignIDFromURI(req.Params.URI, "bestiary")
	if err != nil {
		return nil, err
	}
	if err := s.requireCampaign(ctx, id); err != nil {
		return nil, err
	}

	all, err := s.templates.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing templates for campaign %s: %w", id, err)
	}
	payload := struct {
		Entries []BestiaryEntry `json:"entries"`
	}{Entries: make([]BestiaryEntry, 0, len(all))}
	for _, t := range all {
		payload.Entries = append(payload.Entries, BestiaryEntry{
			Name:        t.Name,
			ThreatLevel: string(t.ThreatLevel),
			HitChance:   t.ThreatLevel.HitChance(),
			HP:          t.HP,
			Weapons:     t.Weapons,
		})
	}
	return jsonResource(req.Params.URI, payload)
}

func (s *Server) readCampaignCombat(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := campaignIDFromURI(req.Params.URI, "combat")
	if err != nil {
		return nil, err
	}
	if err := s.requireCampaign(ctx, id); err != nil {
		return nil, err
	}

	state, err := s.combats.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading combat state for campaign %s: %w", id, err)
	}
	payload := struct {
		Active       bool              `json:"active"`
		Participants []combat.Snapshot `json:"participants"`
	}{Participants: []combat.Snapshot{}}
	if state != nil {
		payload.Active = true
		for _, p := range state.All() {
			payload.Participants = append(payload.Participants, combat.Snapshot{
				Name:      p.Name,
				Team:      p.Team,
				Health:    p.Health,
				MaxHealth: p.MaxHealth,
				HitChance: p.HitChance,
				Template:  p.Template,
				Condition: p.Wound().String(),
			})
		}
	}
	return jsonResource(req.Params.URI, payload)
}
