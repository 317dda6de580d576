package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/testutil"
)

func seedTrader(t *testing.T, stores *testutil.MemStores) {
	t.Helper()
	seedCharacter(t, stores, &character.Character{
		Name: "Tobbs", Keywords: []string{"tobbs", "trader"},
		Health: 12, MaxHealth: 12, HitChance: 25,
		Inventory: character.Inventory{
			Money: 10,
			Items: map[string]character.Item{
				"Backpack": {Description: "A worn leather backpack", Source: "old life"},
			},
		},
	})
}

func TestHandleAddItem(t *testing.T) {
	ctx := context.Background()
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	res, out, err := s.handleAddItem(ctx, nil, AddItemInput{
		CampaignID: campID, Character: "trader", ItemName: "Dagger",
		Description: "A rusty dagger", Source: "market stall",
		Weapon: true, Damage: "1d4", Container: "Backpack",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, "Tobbs", out.Character, "keyword lookup resolves to the record name")
	assert.Contains(t, textOf(t, res), "weapon, 1d4 damage")

	rec, err := stores.Characters.Get(ctx, campID, "tobbs")
	require.NoError(t, err)
	dagger, ok := rec.Inventory.Items["Dagger"]
	require.True(t, ok)
	assert.True(t, dagger.Weapon)
	assert.Equal(t, "Backpack", dagger.Container)
}

func TestHandleAddItem_Failures(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	t.Run("weapon without damage", func(t *testing.T) {
		res, out, err := s.handleAddItem(context.Background(), nil, AddItemInput{
			CampaignID: campID, Character: "Tobbs", ItemName: "Club",
			Description: "A club", Source: "found", Weapon: true,
		})
		require.NoError(t, err)
		require.NotNil(t, out.Error)
		assert.True(t, res.IsError)
		assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
	})

	t.Run("duplicate item", func(t *testing.T) {
		_, out, err := s.handleAddItem(context.Background(), nil, AddItemInput{
			CampaignID: campID, Character: "Tobbs", ItemName: "Backpack",
			Description: "Another backpack", Source: "market",
		})
		require.NoError(t, err)
		require.NotNil(t, out.Error)
		assert.Equal(t, "ALREADY_EXISTS", out.Error.Kind)
	})

	t.Run("missing container hints at items", func(t *testing.T) {
		_, out, err := s.handleAddItem(context.Background(), nil, AddItemInput{
			CampaignID: campID, Character: "Tobbs", ItemName: "Coin",
			Description: "A coin", Source: "found", Container: "Satchel",
		})
		require.NoError(t, err)
		require.NotNil(t, out.Error)
		assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
		assert.Contains(t, out.Error.Hints, "Backpack")
	})

	t.Run("unknown character", func(t *testing.T) {
		_, out, err := s.handleAddItem(context.Background(), nil, AddItemInput{
			CampaignID: campID, Character: "Nobody", ItemName: "Coin",
			Description: "A coin", Source: "found",
		})
		require.NoError(t, err)
		require.NotNil(t, out.Error)
		assert.Equal(t, "PARTICIPANT_NOT_FOUND", out.Error.Kind)
	})
}

func TestHandleRemoveItem_ClearsContainerReferences(t *testing.T) {
	ctx := context.Background()
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	_, _, err := s.handleAddItem(ctx, nil, AddItemInput{
		CampaignID: campID, Character: "Tobbs", ItemName: "Dagger",
		Description: "A rusty dagger", Source: "market", Weapon: true, Damage: "1d4",
		Container: "Backpack",
	})
	require.NoError(t, err)

	res, out, err := s.handleRemoveItem(ctx, nil, RemoveItemInput{
		CampaignID: campID, Character: "Tobbs", ItemName: "Backpack", Reason: "stolen",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, []string{"Dagger"}, out.Updated)
	assert.Contains(t, textOf(t, res), "Reason: stolen")

	rec, err := stores.Characters.Get(ctx, campID, "tobbs")
	require.NoError(t, err)
	dagger := rec.Inventory.Items["Dagger"]
	assert.Empty(t, dagger.Container, "orphaned container reference cleared")
}

func TestHandleUpdateItem(t *testing.T) {
	ctx := context.Background()
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	weapon := true
	damage := "1d6"
	_, out, err := s.handleUpdateItem(ctx, nil, UpdateItemInput{
		CampaignID: campID, Character: "Tobbs", ItemName: "Backpack",
		Weapon: &weapon, Damage: &damage,
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, []string{"weapon status", "damage"}, out.Updated)

	rec, err := stores.Characters.Get(ctx, campID, "tobbs")
	require.NoError(t, err)
	pack := rec.Inventory.Items["Backpack"]
	assert.True(t, pack.Weapon)
	assert.Equal(t, "1d6", pack.Damage)
}

func TestHandleUpdateItem_WeaponNeedsDamage(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	weapon := true
	_, out, err := s.handleUpdateItem(context.Background(), nil, UpdateItemInput{
		CampaignID: campID, Character: "Tobbs", ItemName: "Backpack", Weapon: &weapon,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
}

func TestHandleGetInventory(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	res, out, err := s.handleGetInventory(context.Background(), nil, GetInventoryInput{
		CampaignID: campID, Character: "trader",
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, 10, out.Money)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Backpack", out.Items[0].Name)

	text := textOf(t, res)
	assert.Contains(t, text, "Money: 10 gold")
	assert.Contains(t, text, "Backpack")
}

func TestHandleMoney(t *testing.T) {
	ctx := context.Background()
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	_, out, err := s.handleAddMoney(ctx, nil, MoneyInput{
		CampaignID: campID, Character: "Tobbs", Amount: 5,
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, 15, out.Balance)

	_, out, err = s.handleRemoveMoney(ctx, nil, MoneyInput{
		CampaignID: campID, Character: "Tobbs", Amount: 12,
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, 3, out.Balance)

	rec, err := stores.Characters.Get(ctx, campID, "tobbs")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Inventory.Money)
}

func TestHandleRemoveMoney_InsufficientFunds(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	res, out, err := s.handleRemoveMoney(context.Background(), nil, MoneyInput{
		CampaignID: campID, Character: "Tobbs", Amount: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.True(t, res.IsError)
	assert.Equal(t, "INSUFFICIENT_FUNDS", out.Error.Kind)

	rec, err := stores.Characters.Get(context.Background(), campID, "tobbs")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Inventory.Money, "failed removal leaves the balance unchanged")
}

func TestHandleMoney_NegativeAmount(t *testing.T) {
	s, stores := newTestServer(t, nil)
	seedCampaign(t, stores, "")
	seedTrader(t, stores)

	_, out, err := s.handleAddMoney(context.Background(), nil, MoneyInput{
		CampaignID: campID, Character: "Tobbs", Amount: -5,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_ARGUMENT", out.Error.Kind)
}
