package domain

import "errors"

// DefaultMaxEnergy is the capacity given to newly created individuals.
const DefaultMaxEnergy = 100

// Energy is an immutable bounded energy resource. Every operation returns a
// new value; the receiver is never modified.
type Energy struct {
	current int
	max     int
}

// NewEnergy validates and constructs an Energy with 0 < value <= capacity.
// All violations are reported together.
func NewEnergy(value, capacity int) (Energy, error) {
	var errs []error
	if value <= 0 || value > capacity {
		errs = append(errs, &InvalidEnergyValueError{Value: value})
	}
	if capacity <= 0 {
		errs = append(errs, &InvalidEnergyValueError{Value: capacity})
	}
	if value > capacity {
		errs = append(errs, &InvalidEnergyValueRangeError{Value: value, Max: capacity})
	}
	if len(errs) > 0 {
		return Energy{}, errors.Join(errs...)
	}
	return Energy{current: value, max: capacity}, nil
}

// FullEnergy returns an Energy filled to capacity.
func FullEnergy(capacity int) (Energy, error) {
	return NewEnergy(capacity, capacity)
}

// ReconstituteEnergy rebuilds a persisted Energy. Unlike NewEnergy it accepts
// a depleted value of zero, which is reachable through Spend and DecreaseBy.
func ReconstituteEnergy(value, capacity int) (Energy, error) {
	if value == 0 && capacity > 0 {
		return Energy{current: 0, max: capacity}, nil
	}
	return NewEnergy(value, capacity)
}

// Current returns the current energy.
func (e Energy) Current() int { return e.current }

// Max returns the capacity.
func (e Energy) Max() int { return e.max }

// Ratio returns current/max.
func (e Energy) Ratio() float64 {
	if e.max == 0 {
		return 0
	}
	return float64(e.current) / float64(e.max)
}

// IsBelow reports whether the fill ratio is strictly below threshold.
func (e Energy) IsBelow(threshold float64) bool {
	return e.Ratio() < threshold
}

// IsDepleted reports whether no energy is left.
func (e Energy) IsDepleted() bool {
	return e.current <= 0
}

// Spend removes amount. It fails rather than going negative.
func (e Energy) Spend(amount int) (Energy, error) {
	if amount <= 0 {
		return e, &InvalidEnergyAmountError{Amount: amount}
	}
	if e.current < amount {
		return e, &InsufficientEnergyError{Current: e.current, Amount: amount}
	}
	return Energy{current: e.current - amount, max: e.max}, nil
}

// Regenerate adds amount, saturating at max.
func (e Energy) Regenerate(amount int) (Energy, error) {
	return e.IncreaseBy(amount)
}

// IncreaseBy adds amount, saturating at max.
func (e Energy) IncreaseBy(amount int) (Energy, error) {
	if amount <= 0 {
		return e, &InvalidEnergyAmountError{Amount: amount}
	}
	// Compare against headroom; current+amount can overflow.
	if amount >= e.max-e.current {
		return Energy{current: e.max, max: e.max}, nil
	}
	return Energy{current: e.current + amount, max: e.max}, nil
}

// DecreaseBy removes amount, saturating at zero. Automated decay callers may
// overshoot, so this never reports insufficient energy.
func (e Energy) DecreaseBy(amount int) (Energy, error) {
	if amount <= 0 {
		return e, &InvalidEnergyAmountError{Amount: amount}
	}
	return Energy{current: max(e.current-amount, 0), max: e.max}, nil
}
