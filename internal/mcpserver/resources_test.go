package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/testutil"
)

func readReq(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

// resourceJSON unmarshals the single JSON content of a resource read into out.
func resourceJSON(t *testing.T, res *mcp.ReadResourceResult, out any) {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), out))
}

func TestReadCampaignList(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "Marcus")

	res, err := s.readCampaignList(context.Background(), readReq(campaignListURI))
	require.NoError(t, err)

	var payload struct {
		Campaigns []CampaignSummary `json:"campaigns"`
	}
	resourceJSON(t, res, &payload)
	require.Len(t, payload.Campaigns, 1)
	assert.Equal(t, campID, payload.Campaigns[0].ID)
	assert.Equal(t, "Marcus", payload.Campaigns[0].PlayerName)
	assert.Equal(t, campaignListURI, res.Contents[0].URI)
}

func TestReadCampaignCharacters(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedCharacter(t, stores, &character.Character{
		Name: "Marcus", Keywords: []string{"marcus"},
		Health: 15, MaxHealth: 20, HitChance: 50,
	})
	seedCharacter(t, stores, &character.Character{
		Name: "Greta", Keywords: []string{"greta"},
		Health: 8, MaxHealth: 8, HitChance: 30,
	})

	res, err := s.readCampaignCharacters(context.Background(), readReq("campaign://camp-1/characters"))
	require.NoError(t, err)

	var payload struct {
		Characters []character.Character `json:"characters"`
	}
	resourceJSON(t, res, &payload)
	require.Len(t, payload.Characters, 2)
	assert.Equal(t, "Marcus", payload.Characters[0].Name, "creation order preserved")
	assert.Equal(t, "Greta", payload.Characters[1].Name)
}

func TestReadCampaignBestiary(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedWolfTemplate(t, stores)

	res, err := s.readCampaignBestiary(context.Background(), readReq("campaign://camp-1/bestiary"))
	require.NoError(t, err)

	var payload struct {
		Entries []BestiaryEntry `json:"entries"`
	}
	resourceJSON(t, res, &payload)
	require.Len(t, payload.Entries, 1)
	assert.Equal(t, "Wolf", payload.Entries[0].Name)
	assert.Equal(t, 35, payload.Entries[0].HitChance)
}

func TestReadCampaignCombat(t *testing.T) {
	s, stores := newTestServer(t, testutil.Script(0, 3, 1))
	seedCampaign(t, stores, "")
	seedDuelists(t, stores)

	var payload struct {
		Active       bool `json:"active"`
		Participants []struct {
			Name      string `json:"name"`
			Condition string `json:"condition"`
		} `json:"participants"`
	}

	res, err := s.readCampaignCombat(context.Background(), readReq("campaign://camp-1/combat"))
	require.NoError(t, err)
	resourceJSON(t, res, &payload)
	assert.False(t, payload.Active)
	assert.Empty(t, payload.Participants)

	_, _, err = s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Marcus", Target: "Bandit", Weapon: "fists",
	})
	require.NoError(t, err)

	res, err = s.readCampaignCombat(context.Background(), readReq("campaign://camp-1/combat"))
	require.NoError(t, err)
	resourceJSON(t, res, &payload)
	assert.True(t, payload.Active)
	require.Len(t, payload.Participants, 2)
	assert.Equal(t, "Marcus", payload.Participants[0].Name)
}

func TestReadResource_Errors(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")

	t.Run("unknown campaign", func(t *testing.T) {
		_, err := s.readCampaignCharacters(context.Background(), readReq("campaign://camp-404/characters"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := s.readCampaignCombat(context.Background(), readReq("wrong://camp-1/combat"))
		assert.Error(t, err)
	})
}
