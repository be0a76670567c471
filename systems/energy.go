package systems

import (
	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

// Status colors.
var (
	StarvedColor = components.Color{R: 255, G: 0, B: 0}
	EatenColor   = components.Color{R: 100, G: 100, B: 100}
)

// Metabolism implements the per-tick energy cost.
type Metabolism struct {
	motionCoeff   float64
	speedOffset   float64
	idleThreshold float64
	idleCoeff     float64
}

// NewMetabolism creates the metabolism system.
func NewMetabolism(cfg *config.Config) *Metabolism {
	m := cfg.Metabolism
	return &Metabolism{
		motionCoeff:   m.MotionCoeff,
		speedOffset:   m.SpeedOffset,
		idleThreshold: m.IdleThreshold,
		idleCoeff:     m.IdleCoeff,
	}
}

// Cost returns the energy one tick costs at the given mass and speed.
// Standing still adds a mass^2 idle penalty on top of the motion cost.
func (m *Metabolism) Cost(mass, speed float64) float64 {
	cost := m.motionCoeff * mass * sq(speed+m.speedOffset)
	if speed <= m.idleThreshold {
		cost += m.idleCoeff * mass * mass
	}
	return cost
}

// UpdateEnergy charges one tick of metabolism and resolves status.
// Returns true if the agent starved this tick.
//
// Producers (tier 0) never starve. Non-living agents keep their alive tick
// count frozen, which also excludes the tick of death.
func (m *Metabolism) UpdateEnergy(a *Agent) bool {
	e := a.Energy
	e.Value -= m.Cost(a.Traits.Mass, a.Motion.Speed)
	e.AliveTicks++

	starved := false
	if e.Value < 0 && e.Alive() && a.Org.Tier > 0 {
		e.Status = components.StatusStarved
		starved = true
	}

	switch e.Status {
	case components.StatusStarved:
		a.Look.Color = StarvedColor
	case components.StatusEaten:
		a.Look.Color = EatenColor
	default:
		return false
	}

	if e.Value < 0 {
		e.Value = 0
	}
	a.Motion.Speed = 0
	e.AliveTicks--
	return starved
}
