// Package camera maps the toroidal world onto a screen area with pan and zoom.
package camera

import (
	"github.com/pthm-cable/trophic/systems"
)

// Point is a screen position.
type Point struct {
	X, Y float64
}

// Camera controls the viewport into the simulation world.
// Zoom is screen pixels per world unit; the minimum zoom fits the whole
// world into the viewport.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	Zoom float64

	// Viewport dimensions (screen area)
	ViewportW, ViewportH float64

	// World dimensions (for toroidal wrapping)
	WorldW, WorldH float64

	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world, zoomed out to fit it.
func New(viewportW, viewportH, worldW, worldH float64) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.Reset()
	return c
}

func (c *Camera) fitZoom() float64 {
	if c.WorldW <= 0 || c.WorldH <= 0 || c.ViewportW <= 0 || c.ViewportH <= 0 {
		return 1
	}
	return min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// WorldToScreen converts world coordinates to screen coordinates, taking the
// shortest way around the torus from the camera center.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	return c.ViewportW/2 + dx*c.Zoom, c.ViewportH/2 + dy*c.Zoom
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	return systems.Wrap(c.X+dx, c.WorldW), systems.Wrap(c.Y+dy, c.WorldH)
}

// Length converts a world distance to screen pixels.
func (c *Camera) Length(d float64) float64 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(dx) <= halfW && abs(dy) <= halfH
}

// GhostPositions returns extra screen positions for a circle that straddles
// the seam of the torus, so it shows on both sides. At most three ghosts
// are returned (a corner).
func (c *Camera) GhostPositions(wx, wy, radius float64) []Point {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	halfW, halfH := c.WorldW/2, c.WorldH/2

	sx := c.ViewportW/2 + dx*c.Zoom
	sy := c.ViewportH/2 + dy*c.Zoom

	var gx, gy float64
	hGhost, vGhost := false, false
	switch {
	case dx > halfW-radius:
		hGhost, gx = true, c.ViewportW/2+(dx-c.WorldW)*c.Zoom
	case dx < -halfW+radius:
		hGhost, gx = true, c.ViewportW/2+(dx+c.WorldW)*c.Zoom
	}
	switch {
	case dy > halfH-radius:
		vGhost, gy = true, c.ViewportH/2+(dy-c.WorldH)*c.Zoom
	case dy < -halfH+radius:
		vGhost, gy = true, c.ViewportH/2+(dy+c.WorldH)*c.Zoom
	}

	var ghosts []Point
	if hGhost {
		ghosts = append(ghosts, Point{gx, sy})
	}
	if vGhost {
		ghosts = append(ghosts, Point{sx, gy})
	}
	if hGhost && vGhost {
		ghosts = append(ghosts, Point{gx, gy})
	}
	return ghosts
}

// Resize updates viewport and world dimensions and recalculates zoom
// constraints. The zoom is kept relative to the fit zoom.
func (c *Camera) Resize(viewportW, viewportH, worldW, worldH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH && worldW == c.WorldW && worldH == c.WorldH {
		return
	}
	rel := c.Zoom / c.MinZoom
	c.ViewportW, c.ViewportH = viewportW, viewportH
	c.WorldW, c.WorldH = worldW, worldH
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.SetZoom(c.MinZoom * rel)
	c.X = systems.Wrap(c.X, c.WorldW)
	c.Y = systems.Wrap(c.Y, c.WorldH)
}

// Pan moves the camera by the given delta in screen pixels, wrapping around
// world boundaries.
func (c *Camera) Pan(dx, dy float64) {
	c.X = systems.Wrap(c.X+dx/c.Zoom, c.WorldW)
	c.Y = systems.Wrap(c.Y+dy/c.Zoom, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = max(c.MinZoom, min(zoom, c.MaxZoom))
}

// ZoomAt multiplies the zoom by factor keeping the world point under the
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float64) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.SetZoom(c.Zoom * factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X = systems.Wrap(c.X+toroidalDelta(wx, nx, c.WorldW), c.WorldW)
	c.Y = systems.Wrap(c.Y+toroidalDelta(wy, ny, c.WorldH), c.WorldH)
}

// Reset centers the camera and zooms out to fit the world.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float64) float64 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
