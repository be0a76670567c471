package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/render"
)

// ControlsPanel renders the Begin button and one mutation checkbox per
// trait.
type ControlsPanel struct {
	renderer *Renderer
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel() *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer()}
}

// Draw renders the panel at x, y and appends a command for every control
// the user changed.
func (c *ControlsPanel) Draw(f *render.Frame, x, y, width int32, cmds []render.Command) []render.Command {
	r := c.renderer
	pad := r.Theme.Padding
	traits := evolution.AllTraits()

	height := pad*3 + 30 + r.Theme.LineHeight*int32(len(traits)+1)
	r.DrawPanel(x, y, width, height)

	cx := float32(x + pad)
	cy := y + pad

	label := "Begin"
	if f.Started {
		label = "Running"
	}
	if gui.Button(rl.Rectangle{X: cx, Y: float32(cy), Width: float32(width - 2*pad), Height: 30}, label) && !f.Started {
		cmds = append(cmds, render.Command{Kind: render.CommandBegin})
	}
	cy += 30 + pad

	cy = r.DrawSectionHeader(x+pad, cy, "Mutate at rollover")
	for _, t := range traits {
		was := f.Toggles.Enabled(t)
		now := gui.CheckBox(rl.Rectangle{X: cx, Y: float32(cy), Width: 14, Height: 14}, t.String(), was)
		if now != was {
			cmds = append(cmds, render.Command{Kind: render.CommandToggle, Trait: t, Enabled: now})
		}
		cy += r.Theme.LineHeight
	}

	return cmds
}
