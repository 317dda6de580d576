// Package narrative maps combat mechanics onto human-readable descriptors.
//
// Two scales exist: a wound scale derived from a health ratio, and an intensity
// scale derived from an outcome relative to its maximum possible value. The
// intensity scale backs both damage and healing phrasing with identical
// boundary ratios.
package narrative

// WoundState describes how hurt a participant is.
type WoundState int

const (
	Dead WoundState = iota
	Perfect
	Slight
	Moderate
	Severe
	Badly
	Critical
)

// String returns the narrative phrase for the wound state, e.g. "slightly wounded".
func (w WoundState) String() string {
	switch w {
	case Dead:
		return "dead"
	case Perfect:
		return "in perfect health"
	case Slight:
		return "slightly wounded"
	case Moderate:
		return "moderately wounded"
	case Severe:
		return "severely wounded"
	case Badly:
		return "badly wounded"
	default:
		return "critically wounded"
	}
}

// WoundFor converts a health/maxHealth pair to a WoundState by fixed ratio
// thresholds.
//
// Postcondition: health <= 0 always yields Dead, regardless of maxHealth.
func WoundFor(health, maxHealth int) WoundState {
	if health <= 0 {
		return Dead
	}
	if maxHealth < 1 {
		maxHealth = 1
	}
	ratio := float64(health) / float64(maxHealth)
	switch {
	case ratio >= 1.0:
		return Perfect
	case ratio >= 0.75:
		return Slight
	case ratio >= 0.5:
		return Moderate
	case ratio >= 0.25:
		return Severe
	case ratio >= 0.10:
		return Badly
	default:
		return Critical
	}
}

// Intensity grades an outcome against the ceiling of what its formula could
// have produced.
type Intensity int

const (
	Bare Intensity = iota
	Light
	Landed
	Solid
	Devastating
)

// IntensityFor converts an amount/ceiling pair to an Intensity.
//
// Postcondition: The ceiling floors at 1, so a zero or negative ceiling never
// divides by zero and grades everything Devastating-ward honestly.
func IntensityFor(amount, ceiling int) Intensity {
	if ceiling < 1 {
		ceiling = 1
	}
	ratio := float64(amount) / float64(ceiling)
	switch {
	case ratio <= 0.33:
		return Bare
	case ratio <= 0.55:
		return Light
	case ratio <= 0.75:
		return Landed
	case ratio <= 0.95:
		return Solid
	default:
		return Devastating
	}
}

// DamagePhrase returns the attack verb phrase for the intensity, completing a
// sentence like "The club <phrase>".
func (i Intensity) DamagePhrase() string {
	switch i {
	case Bare:
		return "barely grazes"
	case Light:
		return "strikes lightly"
	case Landed:
		return "lands"
	case Solid:
		return "strikes solidly"
	default:
		return "crashes down with devastating force"
	}
}

// HealingPhrase returns the healing noun phrase for the intensity, completing
// a sentence like "Marcus receives <phrase>".
func (i Intensity) HealingPhrase() string {
	switch i {
	case Bare:
		return "minor recovery"
	case Light:
		return "light healing"
	case Landed:
		return "moderate recovery"
	case Solid:
		return "strong healing"
	default:
		return "major restoration"
	}
}
