package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
)

// Apply executes a presenter command and re-presents the frame so sinks see
// the new control state even while ticks are gated. Toggle changes are read
// at the next rollover only.
func (g *Game) Apply(cmd render.Command) error {
	switch cmd.Kind {
	case render.CommandBegin:
		if g.started {
			return ErrAlreadyStarted
		}
		g.started = true
		g.frame.Started = true
		slog.Info("simulation_started",
			"trial", g.trial,
			"seed", g.seed,
			"width", g.width,
			"height", g.height,
			"toggles", g.engine.Toggles().String(),
		)

	case render.CommandToggle:
		if cmd.Trait >= evolution.NumTraits {
			return fmt.Errorf("%w: trait %d", ErrUnknownCommand, cmd.Trait)
		}
		g.engine.SetToggle(cmd.Trait, cmd.Enabled)
		g.frame.Toggles = g.engine.Toggles()

	case render.CommandPause:
		g.paused = !g.paused
		g.frame.Paused = g.paused

	case render.CommandSpeed:
		if cmd.Steps < MinStepsPerUpdate || cmd.Steps > MaxStepsPerUpdate {
			return fmt.Errorf("%w: %d", ErrBadSpeed, cmd.Steps)
		}
		g.stepsPerUpdate = cmd.Steps
		g.frame.Steps = cmd.Steps

	default:
		return fmt.Errorf("%w: %v", ErrUnknownCommand, cmd.Kind)
	}
	g.present()
	return nil
}

// Begin fires the start signal. Repeated calls are no-ops.
func (g *Game) Begin() {
	_ = g.Apply(render.Command{Kind: render.CommandBegin})
}
