package systems

import (
	"math"

	"github.com/pthm-cable/trophic/components"
)

// Move advances pos by one tick of motion and wraps it onto the plane.
// One tick is one simulated second, so speed is the displacement.
func Move(pos *components.Position, m *components.Motion, width, height float64) {
	pos.X = Wrap(pos.X+m.Speed*math.Cos(m.Heading), width)
	pos.Y = Wrap(pos.Y+m.Speed*math.Sin(m.Heading), height)
}
