package domain

import (
	"fmt"
	"time"
)

// InvalidEnergyValueError indicates an energy value or capacity outside the
// accepted range at construction time.
type InvalidEnergyValueError struct {
	Value int
}

// Error implements the error interface.
func (e *InvalidEnergyValueError) Error() string {
	return fmt.Sprintf("invalid energy value: %d", e.Value)
}

// InvalidEnergyValueRangeError indicates a current energy above the capacity.
type InvalidEnergyValueRangeError struct {
	Value int
	Max   int
}

// Error implements the error interface.
func (e *InvalidEnergyValueRangeError) Error() string {
	return fmt.Sprintf("invalid energy value range: %d must be less than or equal to %d", e.Value, e.Max)
}

// InvalidEnergyAmountError indicates a non-positive amount passed to an
// energy operation.
type InvalidEnergyAmountError struct {
	Amount int
}

// Error implements the error interface.
func (e *InvalidEnergyAmountError) Error() string {
	return fmt.Sprintf("invalid energy amount: %d", e.Amount)
}

// InsufficientEnergyError indicates a spend larger than the current energy.
type InsufficientEnergyError struct {
	Current int
	Amount  int
}

// Error implements the error interface.
func (e *InsufficientEnergyError) Error() string {
	return fmt.Sprintf("insufficient energy: current=%d amount=%d", e.Current, e.Amount)
}

// AlreadySleepingError indicates a sleep start while the individual is asleep.
type AlreadySleepingError struct {
	Since time.Time
}

// Error implements the error interface.
func (e *AlreadySleepingError) Error() string {
	return fmt.Sprintf("individual is already sleeping since %s", e.Since.UTC().Format(time.RFC3339))
}

// NotSleepingError indicates a sleep end while the individual is awake.
type NotSleepingError struct{}

// Error implements the error interface.
func (e *NotSleepingError) Error() string {
	return "cannot end sleep when individual is not sleeping"
}

// InvalidSleepTimestampError indicates an unusable sleep start timestamp.
type InvalidSleepTimestampError struct {
	Time time.Time
}

// Error implements the error interface.
func (e *InvalidSleepTimestampError) Error() string {
	return fmt.Sprintf("invalid sleep timestamp: %q", e.Time.String())
}

// SleepInFutureError indicates a sleep start timestamp after the current time.
type SleepInFutureError struct {
	Time time.Time
}

// Error implements the error interface.
func (e *SleepInFutureError) Error() string {
	return fmt.Sprintf("sleep start cannot be in the future: %s", e.Time.UTC().Format(time.RFC3339))
}

// MissingIndividualNameError indicates an empty or blank individual name.
type MissingIndividualNameError struct{}

// Error implements the error interface.
func (e *MissingIndividualNameError) Error() string {
	return "individual name is required"
}

// IndividualNotFoundError indicates that no individual with the given id
// exists in the repository.
type IndividualNotFoundError struct {
	ID IndividualID
}

// Error implements the error interface.
func (e *IndividualNotFoundError) Error() string {
	return fmt.Sprintf("individual not found: id=%q", string(e.ID))
}
