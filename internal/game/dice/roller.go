package dice

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count; each die is in [1, expr.Sides]
// (negated for reversed-subtraction formulas); result.Total() is the outcome.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		v := src.Intn(expr.Sides) + 1
		if expr.Negated {
			v = -v
		}
		rolled[i] = v
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// Evaluate rolls formula using src and returns the outcome.
//
// Unparseable input is not an error: it evaluates to FallbackValue. This keeps
// combat resolution alive on bad user-authored data; do not tighten it into a
// validation failure.
func Evaluate(formula string, src Source) int {
	expr, err := Parse(formula)
	if err != nil {
		return FallbackValue
	}
	return Roll(expr, src).Total()
}

// MaxValue returns the maximum attainable result of formula, used to scale
// narrative intensity. It applies the same lenient parsing as Evaluate and
// returns FallbackValue for unparseable input.
func MaxValue(formula string) int {
	expr, err := Parse(formula)
	if err != nil {
		return FallbackValue
	}
	return expr.Max()
}
