// Package components defines ECS components for the simulation.
package components

// Status is an entity's life status.
type Status uint8

const (
	StatusAlive   Status = iota
	StatusStarved        // ran out of energy; still edible
	StatusEaten          // consumed; inert until rollover
)

// String returns the display name for a Status.
func (s Status) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusStarved:
		return "starved"
	case StatusEaten:
		return "eaten"
	default:
		return "unknown"
	}
}

// PaceMode is the burst/recovery state of an entity.
type PaceMode uint8

const (
	PaceCruise  PaceMode = iota // base speed
	PaceBurst                   // burst multiplier, bounded by the Burst trait
	PaceRecover                 // recover multiplier, bounded by the Recover trait
)

// String returns the display name for a PaceMode.
func (m PaceMode) String() string {
	switch m {
	case PaceCruise:
		return "cruise"
	case PaceBurst:
		return "burst"
	case PaceRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// Position is a point on the toroidal plane.
type Position struct {
	X, Y float64
}

// Motion holds the dynamic heading and speed chosen each tick.
type Motion struct {
	Heading float64 // radians in [0, 2pi)
	Speed   float64 // displacement per tick
}

// Traits holds heritable attributes, fixed within a trial.
type Traits struct {
	Speed   float64 // base cruise speed
	Burst   float64 // burst duration limit, ticks
	Recover float64 // recovery duration limit, ticks
	Mass    float64 // metabolic multiplier and render radius
	Vision  float64 // sensing radius
}

// Energy tracks metabolic state and lifetime.
type Energy struct {
	Value      float64 // current energy, Joules
	Initial    float64 // mass * per-mass baseline at spawn
	AliveTicks int32   // ticks survived
	Status     Status
}

// Alive reports whether the entity is still living.
func (e *Energy) Alive() bool {
	return e.Status == StatusAlive
}

// Pace tracks the burst/recovery state machine.
type Pace struct {
	Mode         PaceMode
	BurstTicks   int32
	RecoverTicks int32
}

// Color is an RGB display color.
type Color struct {
	R, G, B uint8
}

// Appearance holds the render color, changed only by status transitions.
type Appearance struct {
	Color Color
}

// Organism bundles immutable identity.
type Organism struct {
	ID      uint32 // stable within a run, never reused
	Species uint8  // index into the species table
	Tier    int    // trophic tier copied from the species
	Trial   int    // trial the entity was spawned for
}
