package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
)

// HUD renders the trial header and the per-species summary panel.
type HUD struct {
	renderer *Renderer
	table    *species.Table
}

// NewHUD creates a new HUD renderer.
func NewHUD(table *species.Table) *HUD {
	return &HUD{renderer: NewRenderer(), table: table}
}

// Status returns the header status line for a frame.
func Status(f *render.Frame) string {
	switch {
	case !f.Started:
		return "Press Begin to start"
	case f.Paused:
		return "PAUSED"
	default:
		return fmt.Sprintf("Speed: %dx", f.Steps)
	}
}

// Draw renders the panel at x, y and returns the new Y position.
func (h *HUD) Draw(f *render.Frame, x, y, width int32) int32 {
	r := h.renderer
	pad := r.Theme.Padding

	height := r.Theme.LineHeight*int32(3+2*len(f.Panel.Species)) + pad*2
	r.DrawPanel(x, y, width, height)

	cx := x + pad
	cy := y + pad
	rl.DrawText(fmt.Sprintf("Trial %d  Tick %d", f.Trial, f.Tick), cx, cy, r.Theme.HeaderFontSize, rl.White)
	cy += r.Theme.LineHeight
	rl.DrawText(Status(f), cx, cy, r.Theme.FontSize, r.Theme.SectionHeader)
	cy += r.Theme.LineHeight + 4

	for _, row := range f.Panel.Species {
		if d, ok := h.table.Lookup(row.Name); ok {
			r.DrawSwatch(cx, cy, ToRL(d.Color))
		}
		rl.DrawText(row.Name, cx+16, cy, r.Theme.FontSize, r.Theme.ValueColor)
		cy += r.Theme.LineHeight
		cy = r.DrawLabelValue(cx+16, cy, "alive", fmt.Sprintf("%d/%d  longest %d", row.Alive, row.Total, row.Longest))
	}

	return y + height
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32) {
	rl.DrawText("[Space] pause  [,/.] speed  [Wheel] zoom  [RMB] pan  [R] reset view", 10, screenHeight-25, 14, rl.Gray)
}

// DrawInspector renders a tooltip describing one entity.
func (h *HUD) DrawInspector(s render.Sample, x, y int32) {
	r := h.renderer
	pad := r.Theme.Padding
	width := int32(180)
	height := r.Theme.LineHeight*4 + pad*2
	r.DrawPanel(x, y, width, height)

	name := "?"
	if int(s.Species) < h.table.Len() {
		name = h.table.Get(s.Species).Name
	}

	cy := y + pad
	rl.DrawText(fmt.Sprintf("%s #%d", name, s.ID), x+pad, cy, r.Theme.FontSize, r.Theme.SectionHeader)
	cy += r.Theme.LineHeight
	cy = r.DrawLabelValue(x+pad, cy, "status", s.Status.String())
	cy = r.DrawLabelValue(x+pad, cy, "mass", fmt.Sprintf("%.1f", s.Radius))
	r.DrawLabelValue(x+pad, cy, "vision", fmt.Sprintf("%.0f", s.Vision))
}
