package dice

import "go.uber.org/zap"

// Roller wraps a Source and a logger so that every formula evaluation leaves a
// debug-level audit entry with the formula, die values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Evaluate rolls formula with the lenient parsing rules of Evaluate and logs
// the outcome.
func (r *Roller) Evaluate(formula string) int {
	expr, err := Parse(formula)
	if err != nil {
		r.logger.Debug("dice formula unparseable, using fallback",
			zap.String("formula", formula),
			zap.Int("fallback", FallbackValue),
		)
		return FallbackValue
	}
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("formula", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result.Total()
}
