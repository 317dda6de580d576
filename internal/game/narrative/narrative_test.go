package narrative_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/tavernkeep/tavernkeep/internal/game/narrative"
)

func TestWoundFor_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		health    int
		maxHealth int
		want      narrative.WoundState
	}{
		{"dead at zero", 0, 20, narrative.Dead},
		{"dead below zero", -5, 20, narrative.Dead},
		{"dead regardless of max", 0, 0, narrative.Dead},
		{"perfect", 20, 20, narrative.Perfect},
		{"slight at 0.75 boundary", 15, 20, narrative.Slight},
		{"moderate at 0.5 boundary", 10, 20, narrative.Moderate},
		{"severe at 0.25 boundary", 5, 20, narrative.Severe},
		{"badly at 0.10 boundary", 2, 20, narrative.Badly},
		{"critical below 0.10", 1, 20, narrative.Critical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, narrative.WoundFor(tc.health, tc.maxHealth))
		})
	}
}

func TestWoundFor_Property_MonotonicInHealth(t *testing.T) {
	// Severity never decreases as health drops for a fixed maximum.
	rapid.Check(t, func(rt *rapid.T) {
		maxHealth := rapid.IntRange(1, 200).Draw(rt, "max_health")
		h1 := rapid.IntRange(0, maxHealth).Draw(rt, "h1")
		h2 := rapid.IntRange(0, h1).Draw(rt, "h2")

		w1 := narrative.WoundFor(h1, maxHealth)
		w2 := narrative.WoundFor(h2, maxHealth)

		severity := func(w narrative.WoundState) int {
			// Dead sorts as most severe.
			if w == narrative.Dead {
				return int(narrative.Critical) + 1
			}
			return int(w)
		}
		assert.GreaterOrEqual(rt, severity(w2), severity(w1),
			"lower health must never look healthier (h1=%d h2=%d max=%d)", h1, h2, maxHealth)
	})
}

func TestIntensityFor_Thresholds(t *testing.T) {
	// Ceiling 100 makes the ratios exact.
	tests := []struct {
		amount int
		want   narrative.Intensity
	}{
		{33, narrative.Bare},
		{34, narrative.Light},
		{55, narrative.Light},
		{56, narrative.Landed},
		{75, narrative.Landed},
		{76, narrative.Solid},
		{95, narrative.Solid},
		{96, narrative.Devastating},
		{100, narrative.Devastating},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, narrative.IntensityFor(tc.amount, 100), "amount=%d", tc.amount)
	}
}

func TestIntensityFor_CeilingFloorsAtOne(t *testing.T) {
	assert.Equal(t, narrative.Devastating, narrative.IntensityFor(1, 0))
	assert.Equal(t, narrative.Devastating, narrative.IntensityFor(5, -3))
}

func TestIntensityFor_DamageAndHealingShareBoundaries(t *testing.T) {
	// The two vocabularies are one scale: the same amount/ceiling pair must
	// grade to the same Intensity on both sides at every boundary ratio.
	tests := []struct {
		name    string
		amount  int
		ceiling int
		damage  string
		healing string
	}{
		{"boundary 0.33", 33, 100, "barely grazes", "minor recovery"},
		{"just over 0.33", 34, 100, "strikes lightly", "light healing"},
		{"boundary 0.55", 55, 100, "strikes lightly", "light healing"},
		{"boundary 0.75", 75, 100, "lands", "moderate recovery"},
		{"boundary 0.75 small ceiling", 3, 4, "lands", "moderate recovery"},
		{"boundary 0.95", 95, 100, "strikes solidly", "strong healing"},
		{"full ceiling", 100, 100, "crashes down with devastating force", "major restoration"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i := narrative.IntensityFor(tc.amount, tc.ceiling)
			assert.Equal(t, tc.damage, i.DamagePhrase())
			assert.Equal(t, tc.healing, i.HealingPhrase())
		})
	}
}

func TestWoundState_Strings(t *testing.T) {
	assert.Equal(t, "in perfect health", narrative.Perfect.String())
	assert.Equal(t, "critically wounded", narrative.Critical.String())
	assert.Equal(t, "dead", narrative.Dead.String())
}
