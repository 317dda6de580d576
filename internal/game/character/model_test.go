package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tavernkeep/tavernkeep/internal/game/character"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Marcus", "marcus"},
		{"Old Greta", "old-greta"},
		{"  The   Stranger  ", "the-stranger"},
		{"D'Artagnan!", "dartagnan"},
		{"snake_case_name", "snake-case-name"},
		{"--edgy--", "edgy"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, character.Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestSlugify_Property_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[ A-Za-z0-9_'!-]{0,24}`).Draw(rt, "text")
		once := character.Slugify(s)
		assert.Equal(rt, once, character.Slugify(once), "Slugify must be idempotent")
	})
}

func TestCharacter_Validate(t *testing.T) {
	valid := func() character.Character {
		return character.Character{
			Name:      "Marcus",
			Keywords:  []string{"marcus", "guard"},
			Health:    15,
			MaxHealth: 20,
			HitChance: 50,
		}
	}

	t.Run("ok", func(t *testing.T) {
		c := valid()
		require.NoError(t, c.Validate())
	})
	t.Run("health above max", func(t *testing.T) {
		c := valid()
		c.Health = 25
		assert.Error(t, c.Validate())
	})
	t.Run("negative health", func(t *testing.T) {
		c := valid()
		c.Health = -1
		assert.Error(t, c.Validate())
	})
	t.Run("hit chance out of range", func(t *testing.T) {
		c := valid()
		c.HitChance = 101
		assert.Error(t, c.Validate())
	})
	t.Run("weapon without damage", func(t *testing.T) {
		c := valid()
		c.Inventory.Items = map[string]character.Item{
			"Sword": {Description: "A sword", Weapon: true},
		}
		assert.Error(t, c.Validate())
	})
}

func TestCharacter_SetHealth_Clamps(t *testing.T) {
	c := character.Character{Name: "X", MaxHealth: 20, Health: 10}
	c.SetHealth(-4)
	assert.Equal(t, 0, c.Health)
	c.SetHealth(99)
	assert.Equal(t, 20, c.Health)
	c.SetHealth(7)
	assert.Equal(t, 7, c.Health)
}

func TestCharacter_HasKeyword(t *testing.T) {
	c := character.Character{Name: "Aria", Keywords: []string{"Player", "bard"}}
	assert.True(t, c.HasKeyword("player"), "keyword match is case-insensitive")
	assert.True(t, c.HasKeyword("BARD"))
	assert.False(t, c.HasKeyword("wizard"))
}
