package game

import (
	"github.com/pthm-cable/trophic/systems"
	"github.com/pthm-cable/trophic/telemetry"
)

// Step runs one tick: every entity senses and steers against a snapshot of
// pre-move state, then every entity moves, then each entity in id order eats
// and pays its metabolic cost. A finished trial rolls over at the end of the
// tick.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseView)
	g.gather()
	g.capture()

	g.perfCollector.StartPhase(telemetry.PhaseCheck)
	for i := range g.agents {
		g.steering.Check(i, &g.agents[i], g.view)
	}

	g.perfCollector.StartPhase(telemetry.PhaseMove)
	for i := range g.agents {
		a := &g.agents[i]
		systems.Move(a.Pos, a.Motion, g.width, g.height)
	}

	g.perfCollector.StartPhase(telemetry.PhaseFeed)
	g.feedAndMetabolize()

	g.tick++
	g.total++

	if reason, over := g.trialOver(); over {
		g.perfCollector.StartPhase(telemetry.PhaseRollover)
		g.rollover(reason)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.publish()
	g.flushPerf()

	g.perfCollector.EndTick()
}

// capture rebuilds the sensing snapshot. View index i is agent i.
func (g *Game) capture() {
	g.view.Reset()
	for i := range g.agents {
		a := &g.agents[i]
		g.view.Add(systems.Sighting{
			ID:      a.Org.ID,
			Species: a.Org.Species,
			Tier:    a.Org.Tier,
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			Speed:   a.Motion.Speed,
			Status:  a.Energy.Status,
		})
	}
}

// feedAndMetabolize interleaves eat and updateEnergy per entity. A target
// eaten earlier in the pass is already EATEN for every later eater.
func (g *Game) feedAndMetabolize() {
	for i := range g.agents {
		a := &g.agents[i]

		g.eaten = g.feeding.Eat(i, g.agents, g.eaten[:0])
		for _, j := range g.eaten {
			t := &g.agents[j]
			g.recordEvent(telemetry.NewMealEvent(g.total, a.Org.ID, a.Org.Species, t.Org.ID, t.Org.Species, t.Energy.Initial))
		}

		if g.metabolism.UpdateEnergy(a) {
			g.recordEvent(telemetry.NewStarvedEvent(g.total, a.Org.ID, a.Org.Species))
		}
		if a.Energy.Alive() {
			g.lifetimeTracker.UpdateEnergy(a.Org.ID, a.Energy.Value)
		}
	}
}
