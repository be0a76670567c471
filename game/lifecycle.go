package game

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/systems"
	"github.com/pthm-cable/trophic/telemetry"
)

// Trial end reasons.
const (
	ReasonExtinct = "extinct"
	ReasonTimeout = "timeout"
)

// spawnBroods creates every planned individual for the current trial.
func (g *Game) spawnBroods(broods []evolution.Brood) {
	for _, b := range broods {
		for _, traits := range b.Children {
			g.spawnEntity(b.Species, traits)
		}
	}
}

// spawnEntity creates one individual inside the spawn margin with a random
// whole-degree heading.
func (g *Game) spawnEntity(speciesIdx uint8, traits components.Traits) ecs.Entity {
	desc := g.table.Get(speciesIdx)
	margin := g.cfg.World.SpawnMargin

	id := g.nextID
	g.nextID++

	initial := desc.InitialEnergy(traits.Mass)

	pos := components.Position{
		X: margin + g.rng.Float64()*(g.width-2*margin),
		Y: margin + g.rng.Float64()*(g.height-2*margin),
	}
	motion := components.Motion{
		Heading: systems.DegToRad(float64(g.rng.Intn(360))),
		Speed:   traits.Speed,
	}
	energy := components.Energy{Value: initial, Initial: initial}
	pace := components.Pace{}
	look := components.Appearance{Color: desc.Color}
	org := components.Organism{ID: id, Species: speciesIdx, Tier: desc.Tier, Trial: g.trial}

	entity := g.entityMapper.NewEntity(&pos, &motion, &traits, &energy, &pace, &look, &org)
	g.lifetimeTracker.Record(telemetry.NewSpawnEvent(g.total, id, speciesIdx))
	return entity
}

// gather refreshes the agent list from the world, in stable id order.
// The pointers stay valid until the next structural change.
func (g *Game) gather() {
	g.agents = g.agents[:0]
	query := g.entityFilter.Query()
	for query.Next() {
		pos, motion, traits, energy, pace, look, org := query.Get()
		g.agents = append(g.agents, systems.Agent{
			Org:    org,
			Pos:    pos,
			Motion: motion,
			Traits: traits,
			Energy: energy,
			Pace:   pace,
			Look:   look,
		})
	}
	slices.SortFunc(g.agents, func(a, b systems.Agent) int {
		return cmp.Compare(a.Org.ID, b.Org.ID)
	})
}

// trialOver reports whether the current trial should end, and why.
// A world configured without consumers never ends on extinction.
func (g *Game) trialOver() (string, bool) {
	if g.consumers > 0 {
		alive := 0
		for i := range g.agents {
			a := &g.agents[i]
			if a.Org.Tier > 0 && a.Energy.Alive() {
				alive++
			}
		}
		if alive == 0 {
			return ReasonExtinct, true
		}
	}
	if limit := g.cfg.Population.MaxTrialTicks; limit > 0 && g.tick >= int64(limit) {
		return ReasonTimeout, true
	}
	return "", false
}

// members groups the current agents by species, in id order.
func (g *Game) members() [][]telemetry.Member {
	out := make([][]telemetry.Member, g.table.Len())
	for i := range g.agents {
		a := &g.agents[i]
		out[a.Org.Species] = append(out[a.Org.Species], telemetry.Member{
			ID:         a.Org.ID,
			AliveTicks: a.Energy.AliveTicks,
			Status:     a.Energy.Status,
			Traits:     *a.Traits,
		})
	}
	return out
}

// rollover ends the current trial and spawns the next generation.
func (g *Game) rollover(reason string) {
	members := g.members()

	pools := make(map[uint8][]evolution.Candidate, len(members))
	for idx, ms := range members {
		cands := make([]evolution.Candidate, len(ms))
		for i, m := range ms {
			cands[i] = m.Candidate()
		}
		pools[uint8(idx)] = cands
	}

	summary := g.collector.Flush(telemetry.TrialInfo{Trial: g.trial, Ticks: g.tick, Reason: reason}, members)
	broods := g.engine.Rollover(g.table, pools)
	g.recordTrial(summary, broods)

	for _, b := range broods {
		if !b.HasFittest {
			continue
		}
		slog.Info("fittest_selected",
			"trial", g.trial,
			"species", g.table.Get(b.Species).Name,
			"id", b.Fittest.ID,
			"alive_ticks", b.Fittest.AliveTicks,
		)
	}

	g.removeAll()
	g.lifetimeTracker.Reset()

	g.trial++
	g.tick = 0
	g.spawnBroods(broods)
	g.gather()

	if g.maxTrials > 0 && g.trial >= g.maxTrials {
		g.done = true
		slog.Info("max trials reached", "trials", g.trial, "total_ticks", g.total)
		return
	}
	slog.Info("trial_started", "trial", g.trial, "entities", len(g.agents), "toggles", g.engine.Toggles().String())
}

// removeAll destroys every entity. Entities are collected first since the
// world is locked during a query.
func (g *Game) removeAll() {
	var toRemove []ecs.Entity
	query := g.entityFilter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		g.world.RemoveEntity(e)
	}
	g.agents = g.agents[:0]
}
