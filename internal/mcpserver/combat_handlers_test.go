package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/testutil"
)

// textOf extracts the first text content of a tool result.
func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "tool results carry text content")
	return tc.Text
}

func seedDuelists(t *testing.T, stores *testutil.MemStores) {
	t.Helper()
	seedCharacter(t, stores, &character.Character{
		Name: "Marcus", Keywords: []string{"marcus", "guard"},
		Health: 20, MaxHealth: 20, HitChance: 100,
	})
	seedCharacter(t, stores, &character.Character{
		Name: "Bandit", Keywords: []string{"bandit"},
		Health: 10, MaxHealth: 10, HitChance: 50,
	})
}

func TestHandleAttack_Hit(t *testing.T) {
	// Hit roll 1, unarmed d4 rolls 4, location index 1 (chest).
	s, stores := newTestServer(t, testutil.Script(0, 3, 1))
	seedCampaign(t, stores, "")
	seedDuelists(t, stores)

	res, out, err := s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Marcus", Target: "Bandit", Weapon: "fists",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.False(t, res.IsError)
	assert.True(t, out.Active)
	assert.False(t, out.Ended)

	text := textOf(t, res)
	assert.Contains(t, text, "Marcus attacks Bandit with fists.")
	assert.Contains(t, text, "Bandit is hit in the chest.")
	assert.Equal(t, out.Transcript, text, "text content mirrors the transcript")

	require.Len(t, out.After, 2)
	assert.Equal(t, 6, out.After[1].Health, "4 damage applied to the target")

	rec, err := stores.Characters.Get(context.Background(), campID, "bandit")
	require.NoError(t, err)
	assert.Equal(t, 6, rec.Health, "record health synced after the swing")
}

func TestHandleAttack_UnknownAttacker(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")

	res, out, err := s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Nobody", Target: "Nobody Else", Weapon: "fists",
	})
	require.NoError(t, err, "unknown participants are reportable, not protocol errors")
	require.NotNil(t, out.Error)
	assert.True(t, res.IsError)
	assert.Equal(t, "PARTICIPANT_NOT_FOUND", out.Error.Kind)
}

func TestHandleAttack_UnknownCampaign(t *testing.T) {
	s, _ := newTestServer(t, nil)

	res, out, err := s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: "camp-404", Attacker: "A", Target: "B", Weapon: "fists",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.True(t, res.IsError)
	assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
}

func TestHandleSpawnEnemy(t *testing.T) {
	// 2d6+2 rolls 3 and 4 for 9 health.
	s, stores := newTestServer(t, testutil.Script(2, 3))
	seedCampaign(t, stores, "")
	seedWolfTemplate(t, stores)

	res, out, err := s.handleSpawnEnemy(context.Background(), nil, SpawnEnemyInput{
		CampaignID: campID, Name: "Wolf-1", Template: "wolf",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Contains(t, textOf(t, res), "Wolf-1 joins the combat!")
	require.Len(t, out.After, 1)
	assert.Equal(t, 9, out.After[0].Health)
	assert.Equal(t, 35, out.After[0].HitChance)
	assert.Equal(t, "Wolf", out.After[0].Template, "the roster keeps the template's display name")
}

func TestHandleSpawnEnemy_UnknownTemplate(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedWolfTemplate(t, stores)

	_, out, err := s.handleSpawnEnemy(context.Background(), nil, SpawnEnemyInput{
		CampaignID: campID, Name: "Bear-1", Template: "bear",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "PARTICIPANT_NOT_FOUND", out.Error.Kind)
	assert.Contains(t, out.Error.Hints, "Wolf")
}

func TestHandleRemoveFromCombat(t *testing.T) {
	s, stores := newTestServer(t, testutil.Script(0, 3, 1))
	seedCampaign(t, stores, "")
	seedDuelists(t, stores)

	_, _, err := s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Marcus", Target: "Bandit", Weapon: "fists",
	})
	require.NoError(t, err)

	res, out, err := s.handleRemoveFromCombat(context.Background(), nil, RemoveFromCombatInput{
		CampaignID: campID, Name: "Bandit", Reason: "flee",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Contains(t, textOf(t, res), "Bandit flees from combat!")
	assert.True(t, out.Ended, "one team left ends the combat")
}

func TestHandleRemoveFromCombat_UnknownReason(t *testing.T) {
	s, stores := newTestServer(t, testutil.Script(0, 3, 1))
	seedCampaign(t, stores, "")
	seedDuelists(t, stores)

	_, _, err := s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Marcus", Target: "Bandit", Weapon: "fists",
	})
	require.NoError(t, err)

	_, out, err := s.handleRemoveFromCombat(context.Background(), nil, RemoveFromCombatInput{
		CampaignID: campID, Name: "Bandit", Reason: "vacation",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
	assert.Contains(t, out.Error.Hints, "death")
	assert.Contains(t, out.Error.Hints, "flee")
	assert.Contains(t, out.Error.Hints, "surrender")
}

func TestHandleHeal(t *testing.T) {
	// 1d6 rolls 4.
	s, stores := newTestServer(t, testutil.Script(3))
	seedCampaign(t, stores, "")
	seedCharacter(t, stores, &character.Character{
		Name: "Greta", Keywords: []string{"greta", "healer"},
		Health: 3, MaxHealth: 10, HitChance: 30,
	})

	res, out, err := s.handleHeal(context.Background(), nil, HealInput{
		CampaignID: campID, Character: "healer", Formula: "1d6", Source: "potion",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, "potion", out.Source)
	text := textOf(t, res)
	assert.Contains(t, text, "from potion")
	assert.Contains(t, text, "recovers from severely wounded to moderately wounded")

	rec, err := stores.Characters.Get(context.Background(), campID, "greta")
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Health)
}

func TestHandleHeal_AlreadyPerfect(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedCharacter(t, stores, &character.Character{
		Name: "Greta", Keywords: []string{"greta"},
		Health: 10, MaxHealth: 10, HitChance: 30,
	})

	res, out, err := s.handleHeal(context.Background(), nil, HealInput{
		CampaignID: campID, Character: "Greta", Formula: "1d6",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Contains(t, textOf(t, res), "already in perfect health")
}

func TestHandleCombatStatus(t *testing.T) {
	s, stores := newTestServer(t, testutil.Script(0, 3, 1))
	seedCampaign(t, stores, "")
	seedDuelists(t, stores)

	res, out, err := s.handleCombatStatus(context.Background(), nil, CombatStatusInput{CampaignID: campID})
	require.NoError(t, err)
	assert.False(t, out.Active)
	assert.Contains(t, textOf(t, res), "No combat is currently active.")

	_, _, err = s.handleAttack(context.Background(), nil, AttackInput{
		CampaignID: campID, Attacker: "Marcus", Target: "Bandit", Weapon: "fists",
	})
	require.NoError(t, err)

	res, out, err = s.handleCombatStatus(context.Background(), nil, CombatStatusInput{CampaignID: campID})
	require.NoError(t, err)
	assert.True(t, out.Active)
	text := textOf(t, res)
	assert.Contains(t, text, "Combat is underway:")
	assert.Contains(t, text, "Marcus [team Marcus]")
}
