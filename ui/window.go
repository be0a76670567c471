package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trophic/camera"
	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
)

// Speed bounds mirrored from the simulation's steps-per-update range.
const (
	minSteps = 1
	maxSteps = 10
)

// Window draws frames in a raylib window. It must be used from the thread
// that opened the window.
type Window struct {
	renderer *Renderer
	hud      *HUD
	controls *ControlsPanel
	cam      *camera.Camera
	frame    render.Frame
	cmds     []render.Command
}

// hoverRadius is the minimum pick distance in screen pixels.
const hoverRadius = 6

// NewWindow creates a window presenter. rl.InitWindow must already have
// been called.
func NewWindow(table *species.Table) *Window {
	return &Window{
		renderer: NewRenderer(),
		hud:      NewHUD(table),
		controls: NewControlsPanel(),
	}
}

// Present copies the frame for the next Draw.
func (w *Window) Present(f *render.Frame) {
	samples := w.frame.Samples[:0]
	rows := w.frame.Panel.Species[:0]
	w.frame = *f
	w.frame.Samples = append(samples, f.Samples...)
	w.frame.Panel.Species = append(rows, f.Panel.Species...)
}

// KeyCommands maps this frame's key presses to commands.
func KeyCommands(f *render.Frame, pressed func(key int32) bool, cmds []render.Command) []render.Command {
	if pressed(rl.KeySpace) && f.Started {
		cmds = append(cmds, render.Command{Kind: render.CommandPause})
	}
	if pressed(rl.KeyComma) && f.Steps > minSteps {
		cmds = append(cmds, render.Command{Kind: render.CommandSpeed, Steps: f.Steps - 1})
	}
	if pressed(rl.KeyPeriod) && f.Steps < maxSteps {
		cmds = append(cmds, render.Command{Kind: render.CommandSpeed, Steps: f.Steps + 1})
	}
	return cmds
}

// Draw renders the last presented frame and returns the commands the user
// issued through keys and controls.
func (w *Window) Draw() []render.Command {
	f := &w.frame
	theme := w.renderer.Theme
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())
	areaW := screenW - theme.PanelWidth

	w.cmds = KeyCommands(f, func(key int32) bool { return rl.IsKeyPressed(key) }, w.cmds[:0])
	w.updateCamera(float64(areaW), float64(screenH))

	rl.BeginDrawing()
	rl.ClearBackground(theme.Background)

	rl.BeginScissorMode(0, 0, areaW, screenH)
	w.drawEntities()
	rl.EndScissorMode()

	mouse := rl.GetMousePosition()
	if mouse.X < float32(areaW) {
		if s, ok := HoveredSample(f.Samples, w.cam, float64(mouse.X), float64(mouse.Y)); ok {
			w.hud.DrawInspector(s, int32(mouse.X)+12, int32(mouse.Y)+12)
		}
	}

	panelX := areaW
	y := w.hud.Draw(f, panelX, 0, theme.PanelWidth)
	w.cmds = w.controls.Draw(f, panelX, y+theme.Padding, theme.PanelWidth, w.cmds)
	w.hud.DrawControls(screenH)

	rl.EndDrawing()
	return w.cmds
}

// updateCamera fits the camera to the drawing area and applies mouse wheel
// zoom, right-button panning and the reset key.
func (w *Window) updateCamera(areaW, areaH float64) {
	f := &w.frame
	if w.cam == nil {
		w.cam = camera.New(areaW, areaH, f.Width, f.Height)
	}
	w.cam.Resize(areaW, areaH, f.Width, f.Height)

	if rl.IsKeyPressed(rl.KeyR) {
		w.cam.Reset()
	}

	mouse := rl.GetMousePosition()
	if float64(mouse.X) >= areaW {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.cam.ZoomAt(math.Pow(1.1, float64(wheel)), float64(mouse.X), float64(mouse.Y))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		w.cam.Pan(-float64(d.X), -float64(d.Y))
	}
}

// HoveredSample returns the sample drawn closest to the screen point, if one
// lies within its drawn radius or hoverRadius pixels.
func HoveredSample(samples []render.Sample, cam *camera.Camera, mx, my float64) (render.Sample, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range samples {
		sx, sy := cam.WorldToScreen(s.X, s.Y)
		d := math.Hypot(sx-mx, sy-my)
		if d <= max(cam.Length(s.Radius), hoverRadius) && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return render.Sample{}, false
	}
	return samples[best], true
}

// drawEntities renders every entity as a filled circle of radius mass, with
// a vision ring around living ones. Entities on the seam are drawn on both
// sides.
func (w *Window) drawEntities() {
	cam := w.cam
	vision := w.renderer.Theme.VisionColor
	for _, s := range w.frame.Samples {
		reach := max(s.Radius, s.Vision)
		if !cam.IsVisible(s.X, s.Y, reach) {
			continue
		}
		x, y := cam.WorldToScreen(s.X, s.Y)
		pts := append([]camera.Point{{X: x, Y: y}}, cam.GhostPositions(s.X, s.Y, reach)...)
		for _, p := range pts {
			if s.Status == components.StatusAlive && s.Vision > 0 {
				rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(cam.Length(s.Vision)), vision)
			}
			rl.DrawCircleV(rl.Vector2{X: float32(p.X), Y: float32(p.Y)}, float32(max(cam.Length(s.Radius), 1)), ToRL(s.Color))
		}
	}
}
