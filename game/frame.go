package game

import (
	"github.com/pthm-cable/trophic/render"
)

// publish rebuilds the frame from the current agents and hands it to every
// sink.
func (g *Game) publish() {
	f := &g.frame
	f.Reset()
	f.Tick = g.tick
	f.Total = g.total
	f.Trial = g.trial
	f.Started = g.started
	f.Paused = g.paused
	f.Steps = g.stepsPerUpdate
	f.Width = g.width
	f.Height = g.height
	f.Toggles = g.engine.Toggles()

	for _, d := range g.table.All() {
		f.Panel.Species = append(f.Panel.Species, render.SpeciesSummary{Name: d.Name, Tier: d.Tier})
	}

	for i := range g.agents {
		a := &g.agents[i]
		s := render.Sample{
			ID:      a.Org.ID,
			Species: a.Org.Species,
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			Radius:  a.Traits.Mass,
			Color:   a.Look.Color,
			Status:  a.Energy.Status,
		}
		row := &f.Panel.Species[a.Org.Species]
		row.Total++
		if a.Energy.Alive() {
			s.Vision = a.Traits.Vision
			row.Alive++
		}
		row.Longest = max(row.Longest, a.Energy.AliveTicks)
		f.Samples = append(f.Samples, s)
	}

	g.present()
}

// present hands the current frame to every sink without rebuilding it.
func (g *Game) present() {
	for _, s := range g.sinks {
		s.Present(&g.frame)
	}
}
