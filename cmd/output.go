package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

// printIndividual writes a multi-line summary of one individual.
func printIndividual(w io.Writer, ind *domain.Individual, now time.Time) {
	energy := ind.Energy()
	fmt.Fprintf(w, "%s (%s)\n", ind.Name(), ind.ID())
	fmt.Fprintf(w, "  energy: %d/%d %s\n", energy.Current(), energy.Max(), energyBar(energy, 20))

	phys := ind.Physiology()
	if since, ok := phys.SleepSince(); ok {
		fmt.Fprintf(w, "  state:  asleep since %s (%s)\n",
			since.Local().Format(time.DateTime), phys.SleepDuration(now).Truncate(time.Second))
	} else {
		fmt.Fprintln(w, "  state:  awake")
	}
	if energy.IsDepleted() {
		fmt.Fprintln(w, "  collapsed")
	}
}

// printIndividuals writes one aligned row per individual.
func printIndividuals(w io.Writer, list []*domain.Individual) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No individuals. Create one with 'vitality create <name>'.")
		return
	}

	idLen, nameLen := 0, 0
	for _, ind := range list {
		idLen = max(idLen, len(ind.ID()))
		nameLen = max(nameLen, len(ind.Name()))
	}
	for _, ind := range list {
		state := "awake"
		if ind.Physiology().IsSleeping() {
			state = "asleep"
		}
		e := ind.Energy()
		fmt.Fprintf(w, "%-*s  %-*s  %4d/%-4d  %s\n", idLen, ind.ID(), nameLen, ind.Name(), e.Current(), e.Max(), state)
	}
}

// energyBar renders energy as a fixed-width gauge.
func energyBar(e domain.Energy, width int) string {
	filled := int(e.Ratio()*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// describeEvent renders an event as a single line.
func describeEvent(e domain.Event) string {
	at := e.OccurredAt().Local().Format(time.DateTime)
	switch ev := e.(type) {
	case domain.IndividualCreated:
		return fmt.Sprintf("%s %s %s name=%q energy=%d/%d", at, ev.Type(), ev.AggregateID(), ev.Name, ev.Energy, ev.MaxEnergy)
	case domain.IndividualStartedToSleep:
		return fmt.Sprintf("%s %s %s", at, ev.Type(), ev.AggregateID())
	case domain.IndividualEndedSleep:
		return fmt.Sprintf("%s %s %s slept=%s", at, ev.Type(), ev.AggregateID(), ev.Duration.Truncate(time.Second))
	case domain.IndividualEnergyChanged:
		return fmt.Sprintf("%s %s %s %d -> %d (%+d)", at, ev.Type(), ev.AggregateID(), ev.Before, ev.After, ev.Delta)
	default:
		return fmt.Sprintf("%s %s %s", at, e.Type(), e.AggregateID())
	}
}
