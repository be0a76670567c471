// Package game owns the ECS world and drives trials: the three-phase tick,
// extinction detection, and generational rollover.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
	"github.com/pthm-cable/trophic/systems"
	"github.com/pthm-cable/trophic/telemetry"
)

// Speed limits for steps per update.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)

// Errors returned by Apply.
var (
	ErrAlreadyStarted = errors.New("simulation already started")
	ErrBadSpeed       = errors.New("steps per update out of range")
	ErrUnknownCommand = errors.New("unknown command")
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	OutputDir      string // empty = no file output
	LogStats       bool   // log trial summaries and perf
	StepsPerUpdate int    // ticks per Update call
	MaxTrials      int    // stop after N completed trials (0 = unlimited)
	Width, Height  float64
	Sinks          []render.Sink

	// TrialCallback, if set, receives every trial summary at rollover.
	TrialCallback func(telemetry.TrialSummary)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	table *species.Table
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	entityMapper *ecs.Map7[
		components.Position,
		components.Motion,
		components.Traits,
		components.Energy,
		components.Pace,
		components.Appearance,
		components.Organism,
	]
	entityFilter *ecs.Filter7[
		components.Position,
		components.Motion,
		components.Traits,
		components.Energy,
		components.Pace,
		components.Appearance,
		components.Organism,
	]

	// Systems
	steering   *systems.Steering
	feeding    *systems.Feeding
	metabolism *systems.Metabolism
	engine     *evolution.Engine

	// Per-tick scratch
	view   *systems.View
	agents []systems.Agent
	eaten  []int

	// State
	tick           int64 // ticks in the current trial
	total          int64 // ticks since the run began
	trial          int
	started        bool
	paused         bool
	done           bool
	nextID         uint32
	stepsPerUpdate int
	maxTrials      int
	consumers      int // configured consumer individuals per trial

	width, height float64

	// Presentation
	frame render.Frame
	sinks []render.Sink

	// Telemetry
	logStats         bool
	trialCallback    func(telemetry.TrialSummary)
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	hallOfFame       *telemetry.HallOfFame
}

// NewGameWithOptions creates a game and spawns the founder trial. Ticks do
// not advance until a CommandBegin is applied.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	table, err := species.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building species table: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:   cfg,
		table: table,
		world: world,
		rng:   rng,
		seed:  opts.Seed,
		entityMapper: ecs.NewMap7[
			components.Position,
			components.Motion,
			components.Traits,
			components.Energy,
			components.Pace,
			components.Appearance,
			components.Organism,
		](world),
		entityFilter: ecs.NewFilter7[
			components.Position,
			components.Motion,
			components.Traits,
			components.Energy,
			components.Pace,
			components.Appearance,
			components.Organism,
		](world),
		steering:         systems.NewSteering(cfg, table, rng),
		feeding:          systems.NewFeeding(cfg, table),
		metabolism:       systems.NewMetabolism(cfg),
		engine:           evolution.NewEngine(cfg, rng),
		stepsPerUpdate:   clampSteps(opts.StepsPerUpdate),
		maxTrials:        opts.MaxTrials,
		width:            cfg.Derived.WorldW,
		height:           cfg.Derived.WorldH,
		sinks:            opts.Sinks,
		logStats:         opts.LogStats,
		trialCallback:    opts.TrialCallback,
		collector:        telemetry.NewCollector(table),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		outputManager:    om,
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		hallOfFame:       telemetry.NewHallOfFame(table, 10),
	}
	if opts.Width > 0 {
		g.width = opts.Width
	}
	if opts.Height > 0 {
		g.height = opts.Height
	}
	g.view = systems.NewView(g.width, g.height, cfg.Behavior.GridCellSize)

	for _, d := range table.All() {
		if !d.Producer() {
			g.consumers += cfg.PopulationOf(d.Name)
		}
	}

	g.spawnBroods(g.engine.Founders(table))
	g.gather()
	slog.Info("trial_started", "trial", g.trial, "entities", len(g.agents), "seed", g.seed)
	g.publish()

	return g, nil
}

func clampSteps(n int) int {
	return max(MinStepsPerUpdate, min(n, MaxStepsPerUpdate))
}

// AddSink registers a presenter. It receives the current frame immediately.
func (g *Game) AddSink(s render.Sink) {
	g.sinks = append(g.sinks, s)
	s.Present(&g.frame)
}

// Update runs stepsPerUpdate ticks if the simulation is running.
// Used in window mode, where it also records frame timing.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.UpdateHeadless()
}

// UpdateHeadless runs stepsPerUpdate ticks if the simulation is running.
func (g *Game) UpdateHeadless() {
	if !g.started || g.paused || g.done {
		return
	}
	for i := 0; i < g.stepsPerUpdate && !g.done; i++ {
		g.Step()
	}
}

// Started reports whether the start signal has fired.
func (g *Game) Started() bool {
	return g.started
}

// Paused reports whether ticking is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// Done reports whether the trial limit has been reached.
func (g *Game) Done() bool {
	return g.done
}

// Tick returns the number of ticks in the current trial.
func (g *Game) Tick() int64 {
	return g.tick
}

// TotalTicks returns the number of ticks since the run began.
func (g *Game) TotalTicks() int64 {
	return g.total
}

// Trial returns the current trial number, starting at 0.
func (g *Game) Trial() int {
	return g.trial
}

// StepsPerUpdate returns the current speed setting.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// Toggles returns the trait toggles as they stand.
func (g *Game) Toggles() evolution.Toggles {
	return g.engine.Toggles()
}

// Frame returns the most recently published frame.
func (g *Game) Frame() *render.Frame {
	return &g.frame
}

// Species returns the species table.
func (g *Game) Species() *species.Table {
	return g.table
}

// HallOfFame returns the longest-lived representatives seen so far.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// Unload flushes telemetry and closes output files.
func (g *Game) Unload() {
	if g.outputManager == nil {
		return
	}
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.outputManager = nil
}
