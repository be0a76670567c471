package telemetry

import (
	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/species"
)

// Member is one entity of a finished trial as seen by the collector.
type Member struct {
	ID         uint32
	AliveTicks int32
	Status     components.Status
	Traits     components.Traits
}

// Candidate converts a member for fittest selection.
func (m Member) Candidate() evolution.Candidate {
	return evolution.Candidate{ID: m.ID, AliveTicks: m.AliveTicks, Traits: m.Traits}
}

// TrialInfo identifies a finished trial.
type TrialInfo struct {
	Trial  int
	Ticks  int64
	Reason string
}

// Collector accumulates events over a trial and produces a TrialSummary.
type Collector struct {
	table *species.Table

	// Event counters for the current trial, by species index
	meals        []int
	eaten        []int
	starved      []int
	energyGained []float64
}

// NewCollector creates a collector for the species in table.
func NewCollector(table *species.Table) *Collector {
	n := table.Len()
	return &Collector{
		table:        table,
		meals:        make([]int, n),
		eaten:        make([]int, n),
		starved:      make([]int, n),
		energyGained: make([]float64, n),
	}
}

// Record applies an event to the trial counters.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventMeal:
		c.meals[ev.Species]++
		c.energyGained[ev.Species] += ev.Amount
		c.eaten[ev.TargetSpecies]++
	case EventStarved:
		c.starved[ev.Species]++
	}
}

// Meals returns the meals eaten by a species so far this trial.
func (c *Collector) Meals(species uint8) int {
	return c.meals[species]
}

// Flush produces the trial summary and resets counters for the next trial.
// members holds each species' entities in stable id order, indexed by
// species.
func (c *Collector) Flush(info TrialInfo, members [][]Member) TrialSummary {
	summary := TrialSummary{
		Trial:   info.Trial,
		Ticks:   info.Ticks,
		Reason:  info.Reason,
		Species: make([]SpeciesTrialStats, 0, c.table.Len()),
	}

	for _, d := range c.table.All() {
		var pop []Member
		if int(d.Index) < len(members) {
			pop = members[d.Index]
		}

		s := SpeciesTrialStats{
			Trial:        info.Trial,
			Ticks:        info.Ticks,
			Reason:       info.Reason,
			Species:      d.Name,
			Tier:         d.Tier,
			Population:   len(pop),
			Meals:        c.meals[d.Index],
			Eaten:        c.eaten[d.Index],
			Starved:      c.starved[d.Index],
			EnergyGained: c.energyGained[d.Index],
		}

		cands := make([]evolution.Candidate, len(pop))
		ticks := make([]int32, len(pop))
		traits := make([]components.Traits, len(pop))
		for i, m := range pop {
			if m.Status == components.StatusAlive {
				s.AliveAtEnd++
			}
			cands[i] = m.Candidate()
			ticks[i] = m.AliveTicks
			traits[i] = m.Traits
		}
		if fit, ok := evolution.SelectFittest(cands); ok {
			s.FittestID = fit.ID
			s.FittestAliveTicks = fit.AliveTicks
		}
		s.MedianAliveTicks = MedianAliveTicks(ticks)
		s.Traits = ComputeTraitStats(traits)
		s.flattenTraits()

		summary.Species = append(summary.Species, s)
	}

	clear(c.meals)
	clear(c.eaten)
	clear(c.starved)
	clear(c.energyGained)

	return summary
}
