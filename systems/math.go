// Package systems provides the per-tick entity behaviors: sensing, steering,
// movement, feeding, and metabolism, plus the plane geometry they share.
package systems

import (
	"math"
	"math/rand"
)

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

// DistanceMode selects how ToroidalDistance treats the plane's wrap boundary.
type DistanceMode int

const (
	DistanceDirect   DistanceMode = iota + 1 // plain Euclidean
	DistanceWrapY                            // vertical axis wraps
	DistanceWrapX                            // horizontal axis wraps
	DistanceWrapBoth                         // both axes wrap
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

// ToroidalDistance returns the distance between two points on a width x height
// plane for the given mode. Wrapped modes compare the two paths across the
// boundary on the wrapped axis and return the shorter one.
func ToroidalDistance(x1, y1, x2, y2 float64, mode DistanceMode, width, height float64) float64 {
	switch mode {
	case DistanceWrapY:
		dx := x1 - x2
		return math.Min(math.Hypot(dx, height-y1+y2), math.Hypot(dx, height+y1-y2))
	case DistanceWrapX:
		dy := y1 - y2
		return math.Min(math.Hypot(width-x1+x2, dy), math.Hypot(width+x1-x2, dy))
	case DistanceWrapBoth:
		return math.Min(
			math.Hypot(width-x1+x2, height-y1+y2),
			math.Hypot(width+x1-x2, height+y1-y2),
		)
	default:
		return Distance(x1, y1, x2, y2)
	}
}

// AngleBetween returns the bearing from (x1,y1) toward (x2,y2), measured from
// the horizontal, in [0, 2pi). A vertical line (dx == 0) yields pi/2 when the
// second point lies below in screen terms (dy > 0) and 3pi/2 otherwise.
func AngleBetween(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	if dx == 0 {
		if dy > 0 {
			return math.Pi / 2
		}
		return 3 * math.Pi / 2
	}

	a := math.Atan(math.Abs(dy) / math.Abs(dx))
	if dy < 0 {
		a = TwoPi - a
	}
	if dx < 0 {
		a = math.Pi - a
	}
	return NormalizeAngle(a)
}

// NormalizeAngle wraps an angle to [0, 2pi). Non-finite input maps to 0.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// a tiny negative plus 2pi can round up to exactly 2pi
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngleDiff returns the signed shortest rotation from a to b, in (-pi, pi].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, TwoPi)
	if d > math.Pi {
		d -= TwoPi
	} else if d <= -math.Pi {
		d += TwoPi
	}
	return d
}

// Wrap folds a coordinate back onto [0, size).
func Wrap(v, size float64) float64 {
	if v < 0 {
		v += size
	} else if v >= size {
		v -= size
	}
	if v < 0 || v >= size {
		// displacement larger than the plane
		v = math.Mod(v, size)
		if v < 0 {
			v += size
		}
		if v >= size {
			v = 0
		}
	}
	return v
}

// uniform returns a value uniformly distributed in [-margin, margin).
func uniform(rng *rand.Rand, margin float64) float64 {
	return 2*margin*rng.Float64() - margin
}

func sq(v float64) float64 {
	return v * v
}
