// Package dice provides the randomness abstraction and dice-formula evaluation
// for the combat engine.
//
// Formula parsing is deliberately lenient: formulas come from user-authored
// template and item fields, and a bad formula must never crash a combat turn.
// Evaluate and MaxValue degrade to a fixed fallback value for input they cannot
// parse instead of returning an error.
package dice

import "fmt"

// FallbackValue is the result of evaluating a formula that cannot be parsed.
const FallbackValue = 1

// RollResult holds the audit trail for a single formula evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier. For reversed-subtraction
// formulas ("3-1d4") the die results are recorded negated so the identity holds.
type RollResult struct {
	Expression string // original formula string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
