// Package domain implements the vitality core of a simulated individual.
//
// The package contains only pure Go code with standard library imports. It
// has no knowledge of storage, transport or presentation.
//
// # Value objects
//
// Energy, Physiology and Metadata are immutable. Constructors validate their
// invariants and every operation returns a new value, so a failed operation
// never leaves a half-updated object behind.
//
// # Aggregate
//
// IndividualAggregate owns an Individual and is the only way to change it.
// It couples the two state machines: energy reaching zero records a collapse
// and, unless disabled with WithAutoSleepOnCollapse(false), puts an awake
// individual to sleep. Ending a sleep regenerates energy according to a
// SleepRecoveryStrategy, by default FullRestRecovery with a seven hour rest.
//
// # Events
//
// Successful commands record Event values in emission order. Callers drain
// them with PullEvents and hand them to a publisher. Event is a closed set:
// IndividualCreated, IndividualStartedToSleep, IndividualEndedSleep,
// IndividualEnergyChanged and IndividualCollapsed.
//
// # Import Aliasing
//
// The application package of the same context is usually imported next to
// this one:
//
//	import (
//	    domain "github.com/zjrosen/vitality/internal/individual/domain"
//	    appindividual "github.com/zjrosen/vitality/internal/individual/application"
//	)
package domain
