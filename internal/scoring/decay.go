// Package scoring implements the threat scoring engine: exponential time
// decay, per-event contribution weighting, and aggregation of a target's
// event window into a bounded threat assessment with a momentum trend.
//
// The computation is pure and synchronous. The only mutable state in this
// package is the per-target previous-assessment cache, which swaps whole
// immutable records so concurrent readers never observe a torn update.
package scoring

import (
	"math"
	"time"
)

// DefaultHalfLife is the decay half-life: an event's weight halves every two days.
const DefaultHalfLife = 48 * time.Hour

// DefaultCutoff is the window beyond which events are excluded entirely.
// Decay already drives their weight near zero; exclusion is an optimization
// and makes the contributing-event count well defined.
const DefaultCutoff = 14 * 24 * time.Hour

// Decay converts an event age into a multiplicative weight in (0,1] using
// exponential decay: Decay(0) = 1, halving every halfLife. Negative ages
// (clock skew already clamped by the normalizer) are treated as zero.
// halfLife <= 0 selects DefaultHalfLife.
func Decay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	if age <= 0 {
		return 1.0
	}
	return math.Exp(-math.Ln2 * age.Hours() / halfLife.Hours())
}
