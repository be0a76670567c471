package systems

import (
	"testing"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/species"
)

// fixture holds owned component storage for hand-built agents.
type fixture struct {
	cfg    *config.Config
	table  *species.Table
	agents []Agent
	view   *View
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	table, err := species.FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		cfg:   cfg,
		table: table,
		view:  NewView(cfg.Derived.WorldW, cfg.Derived.WorldH, cfg.Behavior.GridCellSize),
	}
}

// spawn adds an agent of the named species at (x, y) with founder traits and
// full energy. Returns its index.
func (f *fixture) spawn(t *testing.T, name string, x, y float64) int {
	t.Helper()
	desc, ok := f.table.Lookup(name)
	if !ok {
		t.Fatalf("unknown species %q", name)
	}
	traits := desc.Founder
	initial := desc.InitialEnergy(traits.Mass)
	f.agents = append(f.agents, Agent{
		Org:    &components.Organism{ID: uint32(len(f.agents) + 1), Species: desc.Index, Tier: desc.Tier},
		Pos:    &components.Position{X: x, Y: y},
		Motion: &components.Motion{Speed: traits.Speed},
		Traits: &traits,
		Energy: &components.Energy{Value: initial, Initial: initial},
		Pace:   &components.Pace{},
		Look:   &components.Appearance{Color: desc.Color},
	})
	return len(f.agents) - 1
}

// capture rebuilds the view from the current agent state.
func (f *fixture) capture() {
	f.view.Reset()
	for i := range f.agents {
		a := &f.agents[i]
		f.view.Add(Sighting{
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
