package systems

import (
	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/species"
)

// Feeding implements the eat phase.
type Feeding struct {
	table  *species.Table
	hunger float64
	radius float64
}

// NewFeeding creates the feeding system.
func NewFeeding(cfg *config.Config, table *species.Table) *Feeding {
	return &Feeding{
		table:  table,
		hunger: cfg.Behavior.HungerThreshold,
		radius: cfg.Energy.EatRadius,
	}
}

// Eat lets a hungry living eater consume every edible, not-yet-eaten agent
// within the eat radius, gaining each target's full initial energy.
// A target is claimed the moment it is eaten: its status flips to EATEN
// before the next eater is processed, so each target feeds exactly one eater.
// The target's energy is floored at zero on the spot, since its own
// metabolism may already have run this tick.
// The indices of consumed agents are appended to dst.
func (f *Feeding) Eat(self int, agents []Agent, dst []int) []int {
	a := &agents[self]
	e := a.Energy
	if !e.Alive() || e.Value > f.hunger*e.Initial {
		return dst
	}
	desc := f.table.Get(a.Org.Species)
	if len(desc.Diet) == 0 {
		return dst
	}

	for i := range agents {
		if i == self {
			continue
		}
		t := &agents[i]
		if !desc.Eats(t.Org.Species) || t.Energy.Status == components.StatusEaten {
			continue
		}
		if Distance(a.Pos.X, a.Pos.Y, t.Pos.X, t.Pos.Y) > f.radius {
			continue
		}
		e.Value += t.Energy.Initial
		t.Energy.Status = components.StatusEaten
		t.Energy.Value = max(t.Energy.Value, 0)
		t.Motion.Speed = 0
		dst = append(dst, i)
	}
	return dst
}
