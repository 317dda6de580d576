package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tavernkeep/tavernkeep/internal/game/dice"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	s := r.String()
	require.Contains(t, s, "2d6+3", "String() must contain the formula")
	require.Contains(t, s, "[4 5]", "String() must contain the die results")
	require.Contains(t, s, "12", "String() must contain the total")
}

func TestParse(t *testing.T) {
	tests := []struct {
		formula string
		want    dice.Expression
	}{
		{"20", dice.Expression{Raw: "20", Modifier: 20}},
		{"d6", dice.Expression{Raw: "d6", Count: 1, Sides: 6}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"2d6+3", dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{"4d8-2", dice.Expression{Raw: "4d8-2", Count: 4, Sides: 8, Modifier: -2}},
		{"3+1d4", dice.Expression{Raw: "3+1d4", Count: 1, Sides: 4, Modifier: 3}},
		{"5-1d4", dice.Expression{Raw: "5-1d4", Count: 1, Sides: 4, Modifier: 5, Negated: true}},
		{"3+d4", dice.Expression{Raw: "3+d4", Count: 1, Sides: 4, Modifier: 3}},
		{" 1D6 ", dice.Expression{Raw: " 1D6 ", Count: 1, Sides: 6}},
	}
	for _, tc := range tests {
		t.Run(tc.formula, func(t *testing.T) {
			got, err := dice.Parse(tc.formula)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, formula := range []string{"", "banana", "xdy", "2d", "0d6", "2d0", "one d six"} {
		t.Run(fmt.Sprintf("%q", formula), func(t *testing.T) {
			_, err := dice.Parse(formula)
			assert.Error(t, err)
		})
	}
}

func TestEvaluate_FallbackOnBadFormula(t *testing.T) {
	// Leniency contract: user-authored garbage degrades to the fixed fallback
	// instead of failing the combat turn.
	assert.Equal(t, dice.FallbackValue, dice.Evaluate("definitely not dice", dice.NewCryptoSource()))
	assert.Equal(t, dice.FallbackValue, dice.MaxValue("definitely not dice"))
}

func TestEvaluate_BareIntegerIsFixed(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 10; i++ {
		assert.Equal(t, 7, dice.Evaluate("7", src))
	}
	assert.Equal(t, 7, dice.MaxValue("7"))
}

func TestEvaluate_Property_WithinBounds(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		sides := rapid.IntRange(1, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-10, 10).Draw(rt, "mod")

		formula := fmt.Sprintf("%dd%d%+d", count, sides, mod)
		got := dice.Evaluate(formula, src)
		assert.GreaterOrEqual(rt, got, count*1+mod, "formula %s", formula)
		assert.LessOrEqual(rt, got, count*sides+mod, "formula %s", formula)
		assert.Equal(rt, count*sides+mod, dice.MaxValue(formula),
			"MaxValue must equal the upper roll bound")
	})
}

func TestMaxValue_ReversedSubtraction(t *testing.T) {
	// 5-1d4 is maximal when the die rolls its minimum.
	assert.Equal(t, 4, dice.MaxValue("5-1d4"))
}

func TestRoll_ReversedSubtraction_TotalIdentity(t *testing.T) {
	expr, err := dice.Parse("5-1d4")
	require.NoError(t, err)
	r := dice.Roll(expr, fixedSource{2})
	assert.Equal(t, []int{-3}, r.Dice, "die results are recorded negated")
	assert.Equal(t, 2, r.Total())
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

// fixedSource always returns the same value regardless of n.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}
