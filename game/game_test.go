package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/systems"
)

// countingSink records how many frames it saw.
type countingSink struct {
	frames int
	last   render.Frame
}

func (s *countingSink) Present(f *render.Frame) {
	s.frames++
	s.last = *f
}

func newTestGame(t *testing.T, opts Options, tweak func(cfg *config.Config)) *Game {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if tweak != nil {
		tweak(cfg)
	}
	opts.Config = cfg
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(g.Unload)
	return g
}

func onlyPopulation(counts map[string]int) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		cfg.Population.Counts = counts
	}
}

// bySpecies returns the agents of the named species.
func bySpecies(t *testing.T, g *Game, name string) []*systems.Agent {
	t.Helper()
	d, ok := g.table.Lookup(name)
	if !ok {
		t.Fatalf("unknown species %q", name)
	}
	var out []*systems.Agent
	for i := range g.agents {
		if g.agents[i].Org.Species == d.Index {
			out = append(out, &g.agents[i])
		}
	}
	return out
}

func TestFounderPopulation(t *testing.T) {
	sink := &countingSink{}
	g := newTestGame(t, Options{Sinks: []render.Sink{sink}}, nil)

	if sink.frames != 1 {
		t.Fatalf("expected the founder frame on construction, got %d frames", sink.frames)
	}
	want := map[string]int{"Producer": 50, "Primary": 15, "Secondary": 5, "Tertiary": 0}
	for _, row := range sink.last.Panel.Species {
		if row.Total != want[row.Name] || row.Alive != want[row.Name] {
			t.Errorf("%s: alive %d total %d, want %d", row.Name, row.Alive, row.Total, want[row.Name])
		}
		if row.Longest != 0 {
			t.Errorf("%s: longest = %d before any tick", row.Name, row.Longest)
		}
	}
	if len(sink.last.Samples) != 70 {
		t.Errorf("got %d samples, want 70", len(sink.last.Samples))
	}

	margin := g.cfg.World.SpawnMargin
	seen := make(map[uint32]bool)
	for i := range g.agents {
		a := &g.agents[i]
		if seen[a.Org.ID] {
			t.Errorf("duplicate id %d", a.Org.ID)
		}
		seen[a.Org.ID] = true
		if a.Pos.X < margin || a.Pos.X > g.width-margin || a.Pos.Y < margin || a.Pos.Y > g.height-margin {
			t.Errorf("entity %d spawned outside margin at (%v, %v)", a.Org.ID, a.Pos.X, a.Pos.Y)
		}
		deg := systems.RadToDeg(a.Motion.Heading)
		if math.Abs(deg-math.Round(deg)) > 1e-9 {
			t.Errorf("entity %d heading %v is not a whole degree", a.Org.ID, deg)
		}
		if a.Energy.Initial != a.Traits.Mass*g.cfg.Energy.PerMass {
			t.Errorf("entity %d initial energy %v", a.Org.ID, a.Energy.Initial)
		}
	}
}

func TestStartSignalGatesTicks(t *testing.T) {
	g := newTestGame(t, Options{StepsPerUpdate: 3}, nil)

	g.UpdateHeadless()
	g.Update()
	if g.Tick() != 0 || g.Started() {
		t.Fatalf("world advanced before start: tick %d", g.Tick())
	}

	g.Begin()
	if !g.Started() || !g.Frame().Started {
		t.Fatal("start signal did not register")
	}
	g.UpdateHeadless()
	if g.TotalTicks() != 3 {
		t.Errorf("TotalTicks = %d, want 3", g.TotalTicks())
	}

	if err := g.Apply(render.Command{Kind: render.CommandBegin}); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second begin: got %v, want ErrAlreadyStarted", err)
	}
}

func TestCommandsRepresentFrame(t *testing.T) {
	sink := &countingSink{}
	g := newTestGame(t, Options{Sinks: []render.Sink{sink}}, nil)

	_ = g.Apply(render.Command{Kind: render.CommandToggle, Trait: evolution.TraitVision, Enabled: false})
	if sink.frames != 2 || sink.last.Toggles.Enabled(evolution.TraitVision) {
		t.Errorf("toggle not presented: frames %d", sink.frames)
	}
	g.Begin()
	if sink.frames != 3 || !sink.last.Started {
		t.Errorf("start not presented: frames %d", sink.frames)
	}
	g.Begin()
	if sink.frames != 3 {
		t.Errorf("rejected command presented a frame")
	}
}

func TestApplyCommands(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	g.Begin()

	if err := g.Apply(render.Command{Kind: render.CommandSpeed, Steps: 11}); !errors.Is(err, ErrBadSpeed) {
		t.Errorf("speed 11: got %v", err)
	}
	if err := g.Apply(render.Command{Kind: render.CommandSpeed, Steps: 4}); err != nil {
		t.Fatal(err)
	}
	if g.StepsPerUpdate() != 4 {
		t.Errorf("StepsPerUpdate = %d, want 4", g.StepsPerUpdate())
	}

	if err := g.Apply(render.Command{Kind: render.CommandPause}); err != nil {
		t.Fatal(err)
	}
	g.UpdateHeadless()
	if g.TotalTicks() != 0 {
		t.Errorf("paused world advanced to %d", g.TotalTicks())
	}
	_ = g.Apply(render.Command{Kind: render.CommandPause})
	g.UpdateHeadless()
	if g.TotalTicks() != 4 {
		t.Errorf("TotalTicks = %d, want 4", g.TotalTicks())
	}

	if err := g.Apply(render.Command{Kind: render.CommandToggle, Trait: evolution.TraitMass, Enabled: false}); err != nil {
		t.Fatal(err)
	}
	if g.Toggles().Enabled(evolution.TraitMass) || g.Frame().Toggles.Enabled(evolution.TraitMass) {
		t.Error("mass toggle still enabled")
	}
	if err := g.Apply(render.Command{Kind: render.CommandToggle, Trait: evolution.NumTraits}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("bad trait: got %v", err)
	}
	if err := g.Apply(render.Command{Kind: render.CommandKind(99)}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("bad kind: got %v", err)
	}
}

func TestSensingSeesPreMovePositions(t *testing.T) {
	g := newTestGame(t, Options{}, func(cfg *config.Config) {
		cfg.Population.Counts = map[string]int{"Primary": 1, "Secondary": 1}
		cfg.Behavior.JitterMargin = 0
	})
	g.Begin()

	prey := bySpecies(t, g, "Primary")[0]
	hunter := bySpecies(t, g, "Secondary")[0]

	hunter.Pos.X, hunter.Pos.Y = 400, 300
	hunter.Motion.Heading = 0
	hunter.Energy.Value = 0.4 * hunter.Energy.Initial
	prey.Pos.X, prey.Pos.Y = 430, 330

	g.Step()

	// The prey flees before the hunter moves, but the hunter steers at the
	// bearing it saw at the start of the tick.
	want := math.Pi / 4 * g.cfg.Behavior.PursuitBlend
	if math.Abs(hunter.Motion.Heading-want) > 1e-9 {
		t.Errorf("hunter heading = %v, want %v", hunter.Motion.Heading, want)
	}
	if prey.Pos.X == 430 && prey.Pos.Y == 330 {
		t.Error("prey did not move")
	}
	if want := 7 * math.Pi / 4; math.Abs(prey.Motion.Heading-want) > 1e-9 {
		t.Errorf("prey heading = %v, want %v", prey.Motion.Heading, want)
	}
}

func TestPredatorCatchesPrey(t *testing.T) {
	g := newTestGame(t, Options{}, func(cfg *config.Config) {
		cfg.Population.Counts = map[string]int{"Producer": 1, "Primary": 1}
		cfg.Behavior.JitterMargin = 0
	})
	g.Begin()

	food := bySpecies(t, g, "Producer")[0]
	eater := bySpecies(t, g, "Primary")[0]
	food.Pos.X, food.Pos.Y = 205, 200
	eater.Pos.X, eater.Pos.Y = 200, 200
	eater.Motion.Heading = 0
	eater.Energy.Value = 40000

	g.Step()

	if food.Energy.Status != components.StatusEaten {
		t.Fatalf("food status = %v, want eaten", food.Energy.Status)
	}
	cost := g.metabolism.Cost(eater.Traits.Mass, eater.Motion.Speed)
	if want := 40000 + food.Energy.Initial - cost; math.Abs(eater.Energy.Value-want) > 1e-6 {
		t.Errorf("eater energy = %v, want %v", eater.Energy.Value, want)
	}
	if g.collector.Meals(eater.Org.Species) != 1 {
		t.Errorf("meal not recorded")
	}
}

func TestEatenProducerEnergyFloored(t *testing.T) {
	g := newTestGame(t, Options{}, func(cfg *config.Config) {
		cfg.Population.Counts = map[string]int{"Producer": 1, "Primary": 1}
		cfg.Behavior.JitterMargin = 0
	})
	g.Begin()

	food := bySpecies(t, g, "Producer")[0]
	eater := bySpecies(t, g, "Primary")[0]
	food.Pos.X, food.Pos.Y = 200, 200
	food.Energy.Value = -5000
	eater.Pos.X, eater.Pos.Y = 201, 200
	eater.Motion.Heading = 0
	eater.Energy.Value = 40000

	g.Step()

	if food.Energy.Status != components.StatusEaten {
		t.Fatalf("food status = %v, want eaten", food.Energy.Status)
	}
	if food.Energy.Value < 0 {
		t.Errorf("eaten producer energy = %v, want >= 0", food.Energy.Value)
	}
}

func TestInactiveEnergyNeverNegative(t *testing.T) {
	g := newTestGame(t, Options{Seed: 7}, func(cfg *config.Config) {
		cfg.Population.MaxTrialTicks = 0
	})
	g.Begin()

	// producers go negative within a tick and stay edible from then on
	for _, p := range bySpecies(t, g, "Producer") {
		p.Energy.Value = 100
	}

	inactive := 0
	for tick := 1; tick <= 500; tick++ {
		g.Step()
		for i := range g.agents {
			e := g.agents[i].Energy
			if e.Alive() {
				continue
			}
			inactive++
			if e.Value < 0 {
				t.Fatalf("tick %d: agent %d status %v energy %v, want >= 0",
					tick, g.agents[i].Org.ID, e.Status, e.Value)
			}
		}
	}
	if inactive == 0 {
		t.Fatal("no agent was eaten or starved in 500 ticks")
	}
}

func TestRolloverCopiesFittestWhenTogglesOff(t *testing.T) {
	g := newTestGame(t, Options{}, func(cfg *config.Config) {
		cfg.Population.Counts = map[string]int{"Producer": 2, "Primary": 3}
		cfg.Mutation.Enabled = config.TraitFlags{}
	})
	g.Begin()

	fittest := components.Traits{Speed: 6.5, Burst: 9, Recover: 4, Mass: 11, Vision: 120}
	var fittestID uint32
	for i, a := range bySpecies(t, g, "Primary") {
		a.Energy.Status = components.StatusStarved
		a.Energy.AliveTicks = int32(10 * i)
		if i == 1 {
			a.Energy.AliveTicks = 95
			*a.Traits = fittest
			fittestID = a.Org.ID
		}
	}
	firstNewID := g.nextID

	g.Step()

	if g.Trial() != 1 || g.Tick() != 0 {
		t.Fatalf("trial %d tick %d, want trial 1 tick 0", g.Trial(), g.Tick())
	}
	children := bySpecies(t, g, "Primary")
	if len(children) != 3 {
		t.Fatalf("got %d primaries, want 3", len(children))
	}
	for _, c := range children {
		if *c.Traits != fittest {
			t.Errorf("child %d traits = %+v, want %+v", c.Org.ID, *c.Traits, fittest)
		}
		if c.Org.ID < firstNewID || c.Org.ID == fittestID {
			t.Errorf("child reused id %d", c.Org.ID)
		}
		if !c.Energy.Alive() || c.Energy.AliveTicks != 0 || c.Org.Trial != 1 {
			t.Errorf("child %d not fresh: %+v", c.Org.ID, *c.Energy)
		}
		if c.Energy.Initial != fittest.Mass*g.cfg.Energy.PerMass {
			t.Errorf("child initial energy %v", c.Energy.Initial)
		}
	}
	if n := len(bySpecies(t, g, "Producer")); n != 2 {
		t.Errorf("got %d producers, want 2", n)
	}
	top, ok := g.hallOfFame.Top(g.table.Get(children[0].Org.Species).Index)
	if !ok || top.EntityID != fittestID || top.AliveTicks != 95 {
		t.Errorf("hall of fame top = %+v", top)
	}
}

func TestTimeoutRollover(t *testing.T) {
	g := newTestGame(t, Options{}, func(cfg *config.Config) {
		cfg.Population.MaxTrialTicks = 3
	})
	g.Begin()
	for i := 0; i < 3; i++ {
		g.Step()
	}
	if g.Trial() != 1 {
		t.Errorf("Trial = %d after timeout, want 1", g.Trial())
	}
	if g.TotalTicks() != 3 {
		t.Errorf("TotalTicks = %d, want 3", g.TotalTicks())
	}
}

func TestNoConsumersNeverRollsOver(t *testing.T) {
	g := newTestGame(t, Options{StepsPerUpdate: 10}, onlyPopulation(map[string]int{"Producer": 5}))
	g.Begin()
	for i := 0; i < 20; i++ {
		g.UpdateHeadless()
	}
	if g.Trial() != 0 || g.Tick() != 200 {
		t.Errorf("trial %d tick %d, want trial 0 tick 200", g.Trial(), g.Tick())
	}
	for _, a := range g.agents {
		if !a.Energy.Alive() || a.Energy.AliveTicks != 200 {
			t.Errorf("producer %d: %+v", a.Org.ID, *a.Energy)
		}
	}
}

func TestMaxTrialsStops(t *testing.T) {
	g := newTestGame(t, Options{MaxTrials: 1}, onlyPopulation(map[string]int{"Primary": 2}))
	g.Begin()
	for _, a := range bySpecies(t, g, "Primary") {
		a.Energy.Status = components.StatusStarved
	}
	g.Step()
	if !g.Done() {
		t.Fatal("expected Done after the trial limit")
	}
	total := g.TotalTicks()
	g.UpdateHeadless()
	if g.TotalTicks() != total {
		t.Error("finished run kept ticking")
	}
}

func TestPanelTracksStatus(t *testing.T) {
	g := newTestGame(t, Options{}, onlyPopulation(map[string]int{"Producer": 1, "Primary": 2}))
	g.Begin()
	primaries := bySpecies(t, g, "Primary")
	primaries[0].Energy.Status = components.StatusStarved
	primaries[0].Energy.AliveTicks = 40
	primaries[1].Energy.AliveTicks = 12

	g.Step()

	f := g.Frame()
	row := f.Panel.Species[primaries[0].Org.Species]
	if row.Alive != 1 || row.Total != 2 || row.Longest != 40 {
		t.Errorf("primary row = %+v", row)
	}
	for _, s := range f.Samples {
		if s.Status != components.StatusAlive && s.Vision != 0 {
			t.Errorf("dead sample %d has vision %v", s.ID, s.Vision)
		}
		if s.X < 0 || s.X >= f.Width || s.Y < 0 || s.Y >= f.Height {
			t.Errorf("sample %d off the plane at (%v, %v)", s.ID, s.X, s.Y)
		}
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() render.Frame {
		g := newTestGame(t, Options{Seed: 99, StepsPerUpdate: 10}, nil)
		g.Begin()
		for i := 0; i < 30; i++ {
			g.UpdateHeadless()
		}
		f := *g.Frame()
		f.Samples = append([]render.Sample(nil), f.Samples...)
		return f
	}
	a, b := run(), run()
	if a.Total != b.Total || a.Trial != b.Trial || len(a.Samples) != len(b.Samples) {
		t.Fatalf("runs diverged: %d/%d ticks, %d/%d trials", a.Total, b.Total, a.Trial, b.Trial)
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestRolloverWritesOutput(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, Options{OutputDir: dir}, onlyPopulation(map[string]int{"Producer": 3, "Primary": 2}))
	g.Begin()
	for _, a := range bySpecies(t, g, "Primary") {
		a.Energy.Status = components.StatusStarved
	}
	g.Step()
	g.Unload()

	for _, name := range []string{"config.yaml", "trials.csv", "hall_of_fame.json", filepath.Join("snapshots", "rollover_0000.json")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
