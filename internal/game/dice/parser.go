package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a parsed dice formula ready to be rolled.
//
// Invariant after a successful Parse: either Count == 0 (flat value carried in
// Modifier) or Count >= 1 and Sides >= 1.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice; 0 for a bare integer formula
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
	// Negated is true for reversed-subtraction formulas ("5-1d4"), where the
	// dice total is subtracted from the modifier.
	Negated bool
}

// Parse parses a dice formula into an Expression.
//
// Supported forms: "20", "d6", "2d6", "2d6+3", "4d8-2", and the reversed
// "3+1d4" / "5-1d4". The die count defaults to 1 when omitted.
//
// Postcondition: Returns a descriptive error for anything else; callers that
// need the lenient never-fail behavior use Evaluate or MaxValue instead.
func Parse(formula string) (Expression, error) {
	raw := formula
	s := strings.ToLower(strings.TrimSpace(formula))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty formula")
	}

	// Bare integer: a fixed outcome.
	if n, err := strconv.Atoi(s); err == nil {
		return Expression{Raw: raw, Modifier: n}, nil
	}

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in formula %q", raw)
	}

	before := s[:dIdx]
	after := s[dIdx+1:]

	// Reversed form: the part before 'd' ends with the operator, as in "3+1" of
	// "3+1d4". Split on the last '+' or '-' that is not a leading sign.
	negated := false
	modifier := 0
	countStr := before
	if opIdx := lastOperator(before); opIdx > 0 {
		m, err := strconv.Atoi(before[:opIdx])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
		modifier = m
		negated = before[opIdx] == '-'
		countStr = before[opIdx+1:]
	}

	count := 1
	if countStr != "" {
		c, err := strconv.Atoi(countStr)
		if err != nil || c < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", raw)
		}
		count = c
	}

	// Trailing modifier: "2d6+3". Not combined with the reversed form.
	sidesStr := after
	if opIdx := lastOperator(after); opIdx > 0 {
		if modifier != 0 || negated {
			return Expression{}, fmt.Errorf("dice: multiple modifiers in %q", raw)
		}
		m, err := strconv.Atoi(after[opIdx:])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
		modifier = m
		sidesStr = after[:opIdx]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 1 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q", raw)
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
		Negated:  negated,
	}, nil
}

// Max returns the maximum attainable result of the expression, substituting
// each die's maximum face. For a negated dice term the maximum is reached when
// every die rolls its minimum.
func (e Expression) Max() int {
	if e.Count == 0 {
		return e.Modifier
	}
	if e.Negated {
		return e.Modifier - e.Count
	}
	return e.Modifier + e.Count*e.Sides
}

// lastOperator returns the index of the last '+' or '-' in s that is not at
// position 0, or -1 when none exists.
func lastOperator(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] == '+' || s[i] == '-' {
			return i
		}
	}
	return -1
}
