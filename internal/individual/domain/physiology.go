package domain

import (
	"errors"
	"time"
)

// Physiology holds the sleep state of an individual. The zero value is awake.
type Physiology struct {
	sleepSince time.Time
}

// AwakePhysiology returns an awake Physiology.
func AwakePhysiology() Physiology {
	return Physiology{}
}

// NewPhysiology builds a Physiology from an optional sleep start. A non-nil
// sleepSince must be a real timestamp not later than now.
func NewPhysiology(sleepSince *time.Time, now time.Time) (Physiology, error) {
	if sleepSince == nil {
		return Physiology{}, nil
	}

	var errs []error
	if sleepSince.IsZero() {
		errs = append(errs, &InvalidSleepTimestampError{Time: *sleepSince})
	} else if sleepSince.After(now) {
		errs = append(errs, &SleepInFutureError{Time: *sleepSince})
	}
	if len(errs) > 0 {
		return Physiology{}, errors.Join(errs...)
	}
	return Physiology{sleepSince: *sleepSince}, nil
}

// SleepSince returns the sleep start and whether the individual is asleep.
func (p Physiology) SleepSince() (time.Time, bool) {
	return p.sleepSince, !p.sleepSince.IsZero()
}

// IsSleeping reports whether a sleep is in progress.
func (p Physiology) IsSleeping() bool {
	return !p.sleepSince.IsZero()
}

// IsAwake reports whether no sleep is in progress.
func (p Physiology) IsAwake() bool {
	return !p.IsSleeping()
}

// SleepDuration returns the time asleep as of now, or 0 while awake.
func (p Physiology) SleepDuration(now time.Time) time.Duration {
	if p.IsAwake() {
		return 0
	}
	d := now.Sub(p.sleepSince)
	if d < 0 {
		return 0
	}
	return d
}

// MarkSleepStarted transitions Awake -> Asleep at now.
func (p Physiology) MarkSleepStarted(now time.Time) (Physiology, error) {
	if p.IsSleeping() {
		return p, &AlreadySleepingError{Since: p.sleepSince}
	}
	return Physiology{sleepSince: now}, nil
}

// MarkSleepEnded transitions Asleep -> Awake.
func (p Physiology) MarkSleepEnded() (Physiology, error) {
	if p.IsAwake() {
		return p, &NotSleepingError{}
	}
	return Physiology{}, nil
}
