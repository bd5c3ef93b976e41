package domain

import (
	"math/bits"
	"time"
)

// DefaultFullRest is the sleep length that fully restores energy.
const DefaultFullRest = 7 * time.Hour

// SleepRecoveryStrategy converts a completed sleep into regenerated energy.
type SleepRecoveryStrategy interface {
	Compute(slept time.Duration, energy Energy) int
}

// FullRestRecovery restores energy in proportion to how much of FullRest was
// slept, capped at the individual's full capacity.
type FullRestRecovery struct {
	FullRest time.Duration
}

// Compute returns floor(max * min(1, slept/FullRest)).
func (r FullRestRecovery) Compute(slept time.Duration, energy Energy) int {
	fullRest := r.FullRest
	if fullRest <= 0 {
		fullRest = DefaultFullRest
	}
	if slept <= 0 {
		return 0
	}
	if slept > fullRest {
		slept = fullRest
	}
	// Exact integer floor. slept <= fullRest keeps the quotient within max.
	hi, lo := bits.Mul64(uint64(energy.Max()), uint64(slept))
	q, _ := bits.Div64(hi, lo, uint64(fullRest))
	return int(q)
}
